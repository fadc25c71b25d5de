// Package events carries redirect notifications from the coordinator to the host.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/rbright/director/internal/launchargs"
)

// Source names where a redirect came from.
type Source string

const (
	SourceStartup Source = "startup"
	SourceRemote  Source = "remote"
)

// RedirectEvent is raised once per completed envelope or startup replay.
type RedirectEvent struct {
	ID         string            `json:"id"`
	Source     Source            `json:"source"`
	Raw        string            `json:"raw"`
	Parsed     launchargs.Parsed `json:"parsed"`
	Remote     string            `json:"remote,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
}

// NewRedirect stamps an event with a fresh ID and the current time.
func NewRedirect(source Source, raw string, parsed launchargs.Parsed, remote string) RedirectEvent {
	return RedirectEvent{
		ID:         uuid.NewString(),
		Source:     source,
		Raw:        raw,
		Parsed:     parsed,
		Remote:     remote,
		ReceivedAt: time.Now().UTC(),
	}
}

// DeepLink returns the routable suffix when the event carries one.
func (e RedirectEvent) DeepLink() (string, bool) {
	if e.Parsed.Kind != launchargs.KindDeepLink {
		return "", false
	}
	return e.Parsed.Value, true
}
