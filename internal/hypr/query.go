package hypr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Client is one mapped window as reported by `hyprctl -j clients`.
type Client struct {
	Address string `json:"address"`
	PID     int    `json:"pid"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	Mapped  bool   `json:"mapped"`
}

// ActiveWindow is the focused window as doctor reports it.
type ActiveWindow struct {
	Address string `json:"address"`
	Class   string `json:"class"`
	PID     int    `json:"pid"`
}

// QueryClients lists mapped windows.
func QueryClients(ctx context.Context) ([]Client, error) {
	output, err := runHyprctlJSON(ctx, "clients")
	if err != nil {
		return nil, err
	}

	var clients []Client
	if err := json.Unmarshal(output, &clients); err != nil {
		return nil, fmt.Errorf("decode hyprctl clients json: %w", err)
	}
	mapped := clients[:0]
	for _, c := range clients {
		if !c.Mapped {
			continue
		}
		c.Address = strings.TrimSpace(c.Address)
		c.Class = strings.TrimSpace(c.Class)
		mapped = append(mapped, c)
	}
	return mapped, nil
}

// FindClientByPID returns the first mapped window owned by pid.
func FindClientByPID(ctx context.Context, pid int) (Client, bool, error) {
	clients, err := QueryClients(ctx)
	if err != nil {
		return Client{}, false, err
	}
	for _, c := range clients {
		if c.PID == pid {
			return c, true, nil
		}
	}
	return Client{}, false, nil
}

// QueryActiveWindow fetches and validates the active-window contract from hyprctl.
func QueryActiveWindow(ctx context.Context) (ActiveWindow, error) {
	output, err := runHyprctlJSON(ctx, "activewindow")
	if err != nil {
		return ActiveWindow{}, err
	}

	var window ActiveWindow
	if err := json.Unmarshal(output, &window); err != nil {
		return ActiveWindow{}, fmt.Errorf("decode hyprctl activewindow json: %w", err)
	}
	window.Address = strings.TrimSpace(window.Address)
	window.Class = strings.TrimSpace(window.Class)
	if window.Address == "" {
		return ActiveWindow{}, fmt.Errorf("hyprctl activewindow returned empty address")
	}
	return window, nil
}

// runHyprctlJSON executes a JSON-returning hyprctl subcommand.
func runHyprctlJSON(ctx context.Context, target string) ([]byte, error) {
	return runHyprctlOutput(ctx, "-j", target)
}
