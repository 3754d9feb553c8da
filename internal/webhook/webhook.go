package webhook

import (
	"context"
	"time"
)

// SessionEndedPayload is posted to the configured webhook when a voice
// session stops. Delivery is best effort.
type SessionEndedPayload struct {
	SessionID  string    `json:"session_id"`
	GuildID    string    `json:"guild_id"`
	ChannelID  string    `json:"channel_id"`
	ThreadID   string    `json:"thread_id"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	StopReason string    `json:"stop_reason"`
}

type Sender interface {
	SendSessionEnded(ctx context.Context, payload SessionEndedPayload) error
}
