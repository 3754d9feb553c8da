package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/keghouse/barkeep/internal/tools"
)

type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
)

// Run is the last-observed state of one remote request/response cycle. The
// engine holds no state beyond this snapshot; transitions are driven purely
// by polling the remote service.
type Run struct {
	ID         string
	Status     RunStatus
	ToolCalls  []tools.Call
	ErrCode    string
	ErrMessage string
}

// RunService is the boundary to the remote conversational engine
// (Assistants-style API).
type RunService interface {
	CreateThread(ctx context.Context) (string, error)
	AppendUserMessage(ctx context.Context, threadID, text string) error
	StartRun(ctx context.Context, threadID string) (Run, error)
	GetRun(ctx context.Context, threadID, runID string) (Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, results []tools.Result) error
	LatestAssistantMessage(ctx context.Context, threadID string) (string, error)
	EnsureAssistant(ctx context.Context, defs []tools.Definition) error
}

// ErrRunTimeout reports that a run did not reach a terminal status within
// the configured wall-clock budget.
var ErrRunTimeout = errors.New("assistant run timed out")

// RunFailedError carries the remote error of a run that ended in the failed
// status. It is terminal for the one submitted message only.
type RunFailedError struct {
	RunID   string
	Code    string
	Message string
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("assistant run %s failed: %s (%s)", e.RunID, e.Message, e.Code)
}
