package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Alert carries one high-risk audit event to the notification channels.
type Alert struct {
	Action    string            `json:"action"`
	ActorID   string            `json:"actorId"`
	TargetID  string            `json:"targetUserId"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Summary renders the alert as a single line for text-based channels.
func (a Alert) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "High-risk admin action %s: actor %s, target %s at %s",
		a.Action, a.ActorID, a.TargetID, a.Timestamp.Format(time.RFC3339))
	if len(a.Details) > 0 {
		keys := make([]string, 0, len(a.Details))
		for k := range a.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+a.Details[k])
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	return b.String()
}

// Channel is one independently-configured notification target.
type Channel interface {
	Name() string
	Send(alert Alert) error
}

// Dispatcher fans an alert out to every channel. Each send runs detached in
// its own goroutine: one channel failing or stalling never affects the
// others, and nothing propagates back to the caller.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher creates a Dispatcher over the given channels.
func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// Dispatch delivers the alert to all channels, best-effort, one attempt per
// channel.
func (d *Dispatcher) Dispatch(alert Alert) {
	for _, ch := range d.channels {
		go func(c Channel) {
			if err := c.Send(alert); err != nil {
				log.Error().Err(err).Str("channel", c.Name()).Str("action", alert.Action).Msg("Failed to deliver high-risk alert")
				return
			}
			log.Info().Str("channel", c.Name()).Str("action", alert.Action).Msg("High-risk alert delivered")
		}(ch)
	}
}
