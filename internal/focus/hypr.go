package focus

import (
	"context"
	"fmt"

	"github.com/rbright/director/internal/config"
	"github.com/rbright/director/internal/hypr"
)

// Hypr focuses through `hyprctl dispatch focuswindow`. An empty Selector
// targets the mapped window owned by PID.
type Hypr struct {
	Selector string
	PID      int
}

func (h Hypr) BringToFront(ctx context.Context) error {
	if h.Selector != "" {
		return hypr.FocusWindow(ctx, h.Selector)
	}

	client, ok, err := hypr.FindClientByPID(ctx, h.PID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no mapped window for pid %d", h.PID)
	}
	return hypr.FocusWindow(ctx, hypr.AddressSelector(client.Address))
}

func (Hypr) Name() string { return config.FocusHypr }
