package notify

import (
	"encoding/json"

	ws "github.com/isandoval/rbac-admin-be/internal/websocket"
)

// Feed broadcasts alerts to connected admin dashboards over the websocket
// hub.
type Feed struct {
	hub *ws.Hub
}

// NewFeed creates a Feed channel over the given hub.
func NewFeed(hub *ws.Hub) *Feed {
	return &Feed{hub: hub}
}

// Name implements Channel.
func (f *Feed) Name() string { return "feed" }

// Send implements Channel.
func (f *Feed) Send(alert Alert) error {
	data, err := json.Marshal(ws.Message{Action: "high_risk_alert", Payload: alert})
	if err != nil {
		return err
	}
	f.hub.Broadcast <- data
	return nil
}
