package repository

import "time"

type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
)

type Session struct {
	ID         string
	GuildID    string
	ChannelID  string
	ThreadID   string
	StartedAt  time.Time
	EndedAt    *time.Time
	Status     SessionStatus
	StopReason string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

type SessionMessage struct {
	ID        string
	SessionID string
	Role      MessageRole
	Content   string
	CreatedAt time.Time
}

type ToolCallRecord struct {
	ID        string
	SessionID string
	RunID     string
	CallID    string
	ToolName  string
	Arguments []byte
	Output    string
	IsError   bool
	CreatedAt time.Time
}
