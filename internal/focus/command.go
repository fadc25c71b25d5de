package focus

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rbright/director/internal/config"
)

const pidPlaceholder = "{pid}"

// Command runs a user-provided argv; every "{pid}" is replaced with PID.
type Command struct {
	Argv []string
	PID  int
}

func (c Command) BringToFront(ctx context.Context) error {
	argv := c.expand()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return fmt.Errorf("focus command %q failed: %w", argv[0], err)
		}
		return fmt.Errorf("focus command %q failed: %w (%s)", argv[0], err, trimmed)
	}
	return nil
}

func (c Command) expand() []string {
	pid := strconv.Itoa(c.PID)
	argv := make([]string, len(c.Argv))
	for i, arg := range c.Argv {
		argv[i] = strings.ReplaceAll(arg, pidPlaceholder, pid)
	}
	return argv
}

func (Command) Name() string { return config.FocusCommand }
