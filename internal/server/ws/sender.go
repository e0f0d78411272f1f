package ws

import "context"

// Sender adapts the hub to the notification sender interface so scanner
// alerts fan out to connected dashboard clients alongside Telegram and
// Discord.
type Sender struct {
	hub *Hub
}

// NewSender wraps the hub as a notification channel.
func NewSender(hub *Hub) *Sender {
	return &Sender{hub: hub}
}

// Send publishes the alert on the hub's alerts channel.
func (s *Sender) Send(_ context.Context, title, message string) error {
	s.hub.Publish(ChannelAlerts, "alert", map[string]string{
		"title":   title,
		"message": message,
	})
	return nil
}

// Name identifies the channel in notifier logs.
func (s *Sender) Name() string {
	return "websocket"
}
