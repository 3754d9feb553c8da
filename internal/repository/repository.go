package repository

import (
	"context"
	"time"
)

type CreateSessionInput struct {
	GuildID   string
	ChannelID string
	ThreadID  string
	StartedAt time.Time
}

type CompleteSessionInput struct {
	SessionID  string
	EndedAt    time.Time
	StopReason string
}

type InsertMessageInput struct {
	SessionID string
	Role      MessageRole
	Content   string
}

type InsertToolCallInput struct {
	SessionID string
	RunID     string
	CallID    string
	ToolName  string
	Arguments []byte
	Output    string
	IsError   bool
}

type SessionRepository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	UpdateSessionCompleted(ctx context.Context, input CompleteSessionInput) error
	GetRunningSessionByGuild(ctx context.Context, guildID string) (*Session, error)
}

// AuditWriter is append-only: the bot writes conversation messages and tool
// invocations for later inspection and never reads them back at runtime.
type AuditWriter interface {
	InsertMessage(ctx context.Context, input InsertMessageInput) error
	InsertToolCall(ctx context.Context, input InsertToolCallInput) error
}

type Repository interface {
	SessionRepository
	AuditWriter
}
