//go:build windows

package focus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/rbright/director/internal/config"
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW          = user32.NewProc("FindWindowW")
	procEnumWindows          = user32.NewProc("EnumWindows")
	procGetWindowThreadPID   = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible      = user32.NewProc("IsWindowVisible")
	procIsIconic             = user32.NewProc("IsIconic")
	procShowWindow           = user32.NewProc("ShowWindow")
	procSetForegroundWindow  = user32.NewProc("SetForegroundWindow")
	procAllowSetForegroundWn = user32.NewProc("AllowSetForegroundWindow")
)

const (
	swRestore = 9
	asfwAny   = 0xFFFFFFFF
)

// Win32 restores and foregrounds a top-level window. With an empty Title it
// picks the first visible window owned by this process.
type Win32 struct {
	Title  string
	Logger *slog.Logger
}

func (w *Win32) BringToFront(context.Context) error {
	hwnd, err := w.find()
	if err != nil {
		return err
	}

	if iconic, _, _ := procIsIconic.Call(hwnd); iconic != 0 {
		if w.Logger != nil {
			w.Logger.Debug("restoring minimized window", "hwnd", hwnd)
		}
		procShowWindow.Call(hwnd, swRestore)
	}
	if ok, _, callErr := procSetForegroundWindow.Call(hwnd); ok == 0 {
		return fmt.Errorf("SetForegroundWindow: %w", callErr)
	}
	return nil
}

// AllowForeground lets whichever process owns the rendezvous take the
// foreground once this duplicate hands over.
func (w *Win32) AllowForeground() error {
	if ok, _, callErr := procAllowSetForegroundWn.Call(uintptr(asfwAny)); ok == 0 {
		return fmt.Errorf("AllowSetForegroundWindow: %w", callErr)
	}
	return nil
}

func (w *Win32) find() (uintptr, error) {
	if w.Title != "" {
		title, err := windows.UTF16PtrFromString(w.Title)
		if err != nil {
			return 0, err
		}
		hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(title)))
		if hwnd == 0 {
			return 0, fmt.Errorf("no window titled %q", w.Title)
		}
		return hwnd, nil
	}

	enumMu.Lock()
	defer enumMu.Unlock()
	enumSelf = windows.GetCurrentProcessId()
	enumFound = 0
	procEnumWindows.Call(enumCallback, 0)
	if enumFound == 0 {
		return 0, errors.New("no visible window owned by this process")
	}
	return enumFound, nil
}

// The runtime never frees callbacks, so EnumWindows reuses one. enumMu guards
// the state it reads and writes for the duration of a single enumeration.
var (
	enumCallback = windows.NewCallback(enumOwnedWindow)
	enumMu       sync.Mutex
	enumSelf     uint32
	enumFound    uintptr
)

func enumOwnedWindow(hwnd uintptr, _ uintptr) uintptr {
	var pid uint32
	procGetWindowThreadPID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if pid != enumSelf {
		return 1
	}
	if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
		return 1
	}
	enumFound = hwnd
	return 0
}

func (*Win32) Name() string { return config.FocusWin32 }
