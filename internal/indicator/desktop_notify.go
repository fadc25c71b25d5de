package indicator

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const (
	notificationsDest  = "org.freedesktop.Notifications"
	notificationsPath  = "/org/freedesktop/Notifications"
	notificationsIface = "org.freedesktop.Notifications"
)

// desktopNotify sends a freedesktop notification over DBus via busctl and
// returns the ID assigned by the server.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, summary string, timeoutMS int) (uint32, error) {
	out, err := runBusctl(ctx, "desktop notify",
		"Notify",
		"susssasa{sv}i",
		appName,
		strconv.FormatUint(uint64(replaceID), 10),
		"",
		summary,
		"",
		"0", // actions
		"0", // hints
		strconv.Itoa(timeoutMS),
	)
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) < 2 || fields[0] != "u" {
		return 0, fmt.Errorf("desktop notify invalid response: %q", strings.TrimSpace(string(out)))
	}

	value, parseErr := strconv.ParseUint(fields[1], 10, 32)
	if parseErr != nil {
		return 0, fmt.Errorf("desktop notify parse id %q: %w", fields[1], parseErr)
	}
	return uint32(value), nil
}

// desktopDismiss requests explicit close by notification ID.
func desktopDismiss(ctx context.Context, id uint32) error {
	_, err := runBusctl(ctx, "desktop dismiss", "CloseNotification", "u", strconv.FormatUint(uint64(id), 10))
	return err
}

func runBusctl(ctx context.Context, op string, method string, args ...string) ([]byte, error) {
	full := append([]string{"--user", "call", notificationsDest, notificationsPath, notificationsIface, method}, args...)
	out, err := exec.CommandContext(ctx, "busctl", full...).CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return nil, fmt.Errorf("%s failed: %w", op, err)
		}
		return nil, fmt.Errorf("%s failed: %w (%s)", op, err, trimmed)
	}
	return out, nil
}
