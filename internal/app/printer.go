package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/rbright/director/internal/events"
	"github.com/rbright/director/internal/launchargs"
)

// eventPrinter writes human text on a terminal and JSON lines everywhere else.
type eventPrinter struct {
	w    io.Writer
	json bool
}

func newEventPrinter(w io.Writer) eventPrinter {
	return eventPrinter{w: w, json: !isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p eventPrinter) Print(event events.RedirectEvent) error {
	if p.json {
		return json.NewEncoder(p.w).Encode(event)
	}

	line := fmt.Sprintf("%s %-7s %s", event.ReceivedAt.Local().Format(time.TimeOnly), event.Source, event.Parsed)
	if event.Remote != "" {
		line += " from " + event.Remote
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}

func (p eventPrinter) PrintParsed(parsed launchargs.Parsed) error {
	if p.json {
		return json.NewEncoder(p.w).Encode(parsed)
	}
	_, err := fmt.Fprintln(p.w, parsed)
	return err
}
