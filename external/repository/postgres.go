package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keghouse/barkeep/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (guild_id, channel_id, thread_id, started_at, status)
		 VALUES ($1, $2, $3, $4, 'running')
		 RETURNING id, guild_id, channel_id, thread_id, started_at, ended_at, status, stop_reason, created_at, updated_at`,
		input.GuildID, input.ChannelID, input.ThreadID, input.StartedAt)
	return scanSession(row)
}

func (r *PostgresRepository) UpdateSessionCompleted(ctx context.Context, input repository.CompleteSessionInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET status = 'completed', ended_at = $2, stop_reason = $3, updated_at = NOW() WHERE id = $1`,
		input.SessionID, input.EndedAt, input.StopReason)
	return err
}

func (r *PostgresRepository) GetRunningSessionByGuild(ctx context.Context, guildID string) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, guild_id, channel_id, thread_id, started_at, ended_at, status, stop_reason, created_at, updated_at
		 FROM sessions WHERE guild_id = $1 AND status = 'running'
		 ORDER BY started_at DESC
		 LIMIT 1`,
		guildID)
	s, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) InsertMessage(ctx context.Context, input repository.InsertMessageInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_messages (session_id, role, content)
		 VALUES ($1, $2, $3)`,
		input.SessionID, input.Role, input.Content)
	return err
}

func (r *PostgresRepository) InsertToolCall(ctx context.Context, input repository.InsertToolCallInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tool_call_records (session_id, run_id, call_id, tool_name, arguments, output, is_error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		input.SessionID, input.RunID, input.CallID, input.ToolName, input.Arguments, input.Output, input.IsError)
	return err
}

func scanSession(row pgx.Row) (*repository.Session, error) {
	var s repository.Session
	var endedAt *time.Time
	err := row.Scan(&s.ID, &s.GuildID, &s.ChannelID, &s.ThreadID, &s.StartedAt, &endedAt, &s.Status, &s.StopReason, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.EndedAt = endedAt
	return &s, nil
}
