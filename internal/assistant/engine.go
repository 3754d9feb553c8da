package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/keghouse/barkeep/internal/repository"
	"github.com/keghouse/barkeep/internal/tools"
)

// ToolDispatcher resolves and executes one batch of tool calls, producing
// exactly one result per call.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, calls []tools.Call) []tools.Result
}

type PollPolicy struct {
	Interval    time.Duration
	MaxInterval time.Duration
	Timeout     time.Duration
}

// Engine drives one submitted message through the remote run state machine:
//
//	queued -> in_progress -> completed
//	                      -> requires_action (tool rounds, back to in_progress)
//	                      -> failed
//
// One Engine belongs to one session; the session loop guarantees at most one
// run is in flight at a time.
type Engine struct {
	svc        RunService
	dispatcher ToolDispatcher
	audit      repository.AuditWriter
	poll       PollPolicy
	sessionID  string
}

func NewEngine(svc RunService, dispatcher ToolDispatcher, audit repository.AuditWriter, poll PollPolicy, sessionID string) *Engine {
	return &Engine{
		svc:        svc,
		dispatcher: dispatcher,
		audit:      audit,
		poll:       poll,
		sessionID:  sessionID,
	}
}

// Submit appends text as a new user turn, runs the thread to a terminal
// status, and returns the final assistant message. A failed run returns
// *RunFailedError; exceeding the polling budget returns ErrRunTimeout. Both
// leave the thread usable for the next submission.
func (e *Engine) Submit(ctx context.Context, threadID, text string) (string, error) {
	if err := e.svc.AppendUserMessage(ctx, threadID, text); err != nil {
		return "", fmt.Errorf("append user message: %w", err)
	}
	e.auditMessage(ctx, repository.MessageRoleUser, text)

	run, err := e.svc.StartRun(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	slog.Info("assistant run started", "session_id", e.sessionID, "run_id", run.ID)

	deadline := time.Now().Add(e.poll.Timeout)
	interval := e.poll.Interval
	for {
		switch run.Status {
		case RunStatusCompleted:
			reply, err := e.svc.LatestAssistantMessage(ctx, threadID)
			if err != nil {
				return "", fmt.Errorf("fetch assistant message: %w", err)
			}
			slog.Info("assistant run completed", "session_id", e.sessionID, "run_id", run.ID)
			e.auditMessage(ctx, repository.MessageRoleAssistant, reply)
			return reply, nil

		case RunStatusFailed:
			return "", &RunFailedError{RunID: run.ID, Code: run.ErrCode, Message: run.ErrMessage}

		case RunStatusRequiresAction:
			if err := e.resolveToolCalls(ctx, threadID, run); err != nil {
				return "", err
			}
			// Tool outputs reset the backoff; the run is actively moving.
			interval = e.poll.Interval

		case RunStatusQueued, RunStatusInProgress:
			// keep polling

		default:
			slog.Warn("unexpected run status", "session_id", e.sessionID, "run_id", run.ID, "status", run.Status)
		}

		for {
			if time.Now().After(deadline) {
				slog.Error("assistant run exceeded polling budget", "session_id", e.sessionID, "run_id", run.ID, "timeout", e.poll.Timeout)
				return "", ErrRunTimeout
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(interval):
			}
			if interval < e.poll.MaxInterval {
				interval *= 2
				if interval > e.poll.MaxInterval {
					interval = e.poll.MaxInterval
				}
			}

			// A transient poll failure must not abandon a run whose tool
			// side effects may already have executed; the deadline bounds
			// how long we keep retrying.
			next, err := e.svc.GetRun(ctx, threadID, run.ID)
			if err != nil {
				slog.Warn("run poll failed; retrying", "error", err, "session_id", e.sessionID, "run_id", run.ID)
				continue
			}
			run = next
			break
		}
	}
}

func (e *Engine) resolveToolCalls(ctx context.Context, threadID string, run Run) error {
	slog.Info("assistant run requires action", "session_id", e.sessionID, "run_id", run.ID, "tool_calls", len(run.ToolCalls))
	results := e.dispatcher.Dispatch(ctx, run.ToolCalls)
	for i, res := range results {
		e.auditToolCall(ctx, run, run.ToolCalls[i], res)
	}
	if err := e.svc.SubmitToolOutputs(ctx, threadID, run.ID, results); err != nil {
		return fmt.Errorf("submit tool outputs: %w", err)
	}
	return nil
}

func (e *Engine) auditMessage(ctx context.Context, role repository.MessageRole, content string) {
	if e.audit == nil {
		return
	}
	err := e.audit.InsertMessage(ctx, repository.InsertMessageInput{
		SessionID: e.sessionID,
		Role:      role,
		Content:   content,
	})
	if err != nil {
		slog.Error("failed to audit message", "error", err, "session_id", e.sessionID)
	}
}

func (e *Engine) auditToolCall(ctx context.Context, run Run, call tools.Call, res tools.Result) {
	if e.audit == nil {
		return
	}
	err := e.audit.InsertToolCall(ctx, repository.InsertToolCallInput{
		SessionID: e.sessionID,
		RunID:     run.ID,
		CallID:    call.ID,
		ToolName:  call.Name,
		Arguments: call.Arguments,
		Output:    res.Output,
		IsError:   res.IsError,
	})
	if err != nil {
		slog.Error("failed to audit tool call", "error", err, "session_id", e.sessionID, "call_id", call.ID)
	}
}
