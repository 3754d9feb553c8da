package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/keghouse/barkeep/internal/repository"
	"github.com/keghouse/barkeep/internal/tools"
)

type mockRunService struct {
	statuses       []Run
	statusIndex    int
	appended       []string
	submitted      [][]tools.Result
	finalMessage   string
	startRunErr    error
	appendErr      error
	getRunCalls    int
	getRunFailures int
	ensureCalled   bool
	latestFetched  int
}

func (m *mockRunService) CreateThread(_ context.Context) (string, error) {
	return "thread-1", nil
}

func (m *mockRunService) AppendUserMessage(_ context.Context, _ string, text string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, text)
	return nil
}

func (m *mockRunService) nextStatus() Run {
	run := m.statuses[m.statusIndex]
	if m.statusIndex < len(m.statuses)-1 {
		m.statusIndex++
	}
	return run
}

func (m *mockRunService) StartRun(_ context.Context, _ string) (Run, error) {
	if m.startRunErr != nil {
		return Run{}, m.startRunErr
	}
	return m.nextStatus(), nil
}

func (m *mockRunService) GetRun(_ context.Context, _, _ string) (Run, error) {
	m.getRunCalls++
	if m.getRunFailures > 0 {
		m.getRunFailures--
		return Run{}, errors.New("service unavailable")
	}
	return m.nextStatus(), nil
}

func (m *mockRunService) SubmitToolOutputs(_ context.Context, _, _ string, results []tools.Result) error {
	m.submitted = append(m.submitted, results)
	return nil
}

func (m *mockRunService) LatestAssistantMessage(_ context.Context, _ string) (string, error) {
	m.latestFetched++
	return m.finalMessage, nil
}

func (m *mockRunService) EnsureAssistant(_ context.Context, _ []tools.Definition) error {
	m.ensureCalled = true
	return nil
}

type mockDispatcher struct {
	dispatched [][]tools.Call
}

func (m *mockDispatcher) Dispatch(_ context.Context, calls []tools.Call) []tools.Result {
	m.dispatched = append(m.dispatched, calls)
	results := make([]tools.Result, len(calls))
	for i, call := range calls {
		results[i] = tools.Result{CallID: call.ID, Output: "ok"}
	}
	return results
}

type mockAudit struct {
	messages  []repository.InsertMessageInput
	toolCalls []repository.InsertToolCallInput
}

func (m *mockAudit) InsertMessage(_ context.Context, input repository.InsertMessageInput) error {
	m.messages = append(m.messages, input)
	return nil
}

func (m *mockAudit) InsertToolCall(_ context.Context, input repository.InsertToolCallInput) error {
	m.toolCalls = append(m.toolCalls, input)
	return nil
}

func fastPoll() PollPolicy {
	return PollPolicy{
		Interval:    time.Millisecond,
		MaxInterval: 4 * time.Millisecond,
		Timeout:     time.Second,
	}
}

func TestSubmit_CompletesWithoutToolCalls(t *testing.T) {
	svc := &mockRunService{
		statuses: []Run{
			{ID: "run-1", Status: RunStatusQueued},
			{ID: "run-1", Status: RunStatusInProgress},
			{ID: "run-1", Status: RunStatusCompleted},
		},
		finalMessage: "cheers",
	}
	dispatcher := &mockDispatcher{}
	audit := &mockAudit{}
	e := NewEngine(svc, dispatcher, audit, fastPoll(), "session-1")

	reply, err := e.Submit(context.Background(), "thread-1", "Alice: hello barkeep")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "cheers" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(svc.appended) != 1 || svc.appended[0] != "Alice: hello barkeep" {
		t.Fatalf("unexpected appended messages: %v", svc.appended)
	}
	if len(dispatcher.dispatched) != 0 {
		t.Fatal("no tool dispatch expected for a run without required actions")
	}
	if len(audit.messages) != 2 {
		t.Fatalf("expected user+assistant audit records, got %d", len(audit.messages))
	}
	if audit.messages[0].Role != repository.MessageRoleUser || audit.messages[1].Role != repository.MessageRoleAssistant {
		t.Fatalf("unexpected audit roles: %+v", audit.messages)
	}
}

func TestSubmit_SingleToolRound(t *testing.T) {
	calls := []tools.Call{
		{ID: "call-1", Name: "speak", Arguments: json.RawMessage(`{"message":"hi"}`)},
		{ID: "call-2", Name: "list_voice_channel_users", Arguments: json.RawMessage(`{}`)},
	}
	svc := &mockRunService{
		statuses: []Run{
			{ID: "run-1", Status: RunStatusQueued},
			{ID: "run-1", Status: RunStatusInProgress},
			{ID: "run-1", Status: RunStatusRequiresAction, ToolCalls: calls},
			{ID: "run-1", Status: RunStatusInProgress},
			{ID: "run-1", Status: RunStatusCompleted},
		},
		finalMessage: "done",
	}
	dispatcher := &mockDispatcher{}
	audit := &mockAudit{}
	e := NewEngine(svc, dispatcher, audit, fastPoll(), "session-1")

	reply, err := e.Submit(context.Background(), "thread-1", "Bob: hey barkeep")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "done" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(dispatcher.dispatched) != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", len(dispatcher.dispatched))
	}
	if len(svc.submitted) != 1 {
		t.Fatalf("expected exactly one tool-output submission, got %d", len(svc.submitted))
	}
	if len(svc.submitted[0]) != 2 {
		t.Fatalf("expected 2 tool outputs, got %d", len(svc.submitted[0]))
	}
	if svc.submitted[0][0].CallID != "call-1" || svc.submitted[0][1].CallID != "call-2" {
		t.Fatalf("tool outputs not keyed to their calls: %+v", svc.submitted[0])
	}
	if svc.latestFetched != 1 {
		t.Fatalf("final message must be fetched exactly once, got %d", svc.latestFetched)
	}
	if len(audit.toolCalls) != 2 {
		t.Fatalf("expected 2 tool-call audit records, got %d", len(audit.toolCalls))
	}
	if audit.toolCalls[0].CallID != "call-1" || audit.toolCalls[0].ToolName != "speak" {
		t.Fatalf("unexpected audit record: %+v", audit.toolCalls[0])
	}
}

func TestSubmit_FailedRun(t *testing.T) {
	svc := &mockRunService{
		statuses: []Run{
			{ID: "run-1", Status: RunStatusQueued},
			{ID: "run-1", Status: RunStatusFailed, ErrCode: "rate_limit_exceeded", ErrMessage: "slow down"},
		},
	}
	e := NewEngine(svc, &mockDispatcher{}, nil, fastPoll(), "session-1")

	_, err := e.Submit(context.Background(), "thread-1", "text")
	var failed *RunFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected *RunFailedError, got %v", err)
	}
	if failed.Code != "rate_limit_exceeded" || failed.Message != "slow down" {
		t.Fatalf("remote error not carried: %+v", failed)
	}
}

func TestSubmit_Timeout(t *testing.T) {
	svc := &mockRunService{
		statuses: []Run{
			{ID: "run-1", Status: RunStatusInProgress},
		},
	}
	poll := fastPoll()
	poll.Timeout = 10 * time.Millisecond
	e := NewEngine(svc, &mockDispatcher{}, nil, poll, "session-1")

	_, err := e.Submit(context.Background(), "thread-1", "text")
	if !errors.Is(err, ErrRunTimeout) {
		t.Fatalf("expected ErrRunTimeout, got %v", err)
	}
}

func TestSubmit_TransientPollErrorIsRetried(t *testing.T) {
	svc := &mockRunService{
		statuses: []Run{
			{ID: "run-1", Status: RunStatusInProgress},
			{ID: "run-1", Status: RunStatusCompleted},
		},
		getRunFailures: 1,
		finalMessage:   "still here",
	}
	e := NewEngine(svc, &mockDispatcher{}, nil, fastPoll(), "session-1")

	reply, err := e.Submit(context.Background(), "thread-1", "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "still here" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if svc.getRunCalls < 2 {
		t.Fatalf("expected the failed poll to be retried, got %d calls", svc.getRunCalls)
	}
}

func TestSubmit_PersistentPollErrorsExhaustTheBudget(t *testing.T) {
	svc := &mockRunService{
		statuses:       []Run{{ID: "run-1", Status: RunStatusInProgress}},
		getRunFailures: 1 << 30,
	}
	poll := fastPoll()
	poll.Timeout = 10 * time.Millisecond
	e := NewEngine(svc, &mockDispatcher{}, nil, poll, "session-1")

	if _, err := e.Submit(context.Background(), "thread-1", "text"); !errors.Is(err, ErrRunTimeout) {
		t.Fatalf("expected ErrRunTimeout, got %v", err)
	}
}

func TestSubmit_ContextCanceled(t *testing.T) {
	svc := &mockRunService{
		statuses: []Run{
			{ID: "run-1", Status: RunStatusInProgress},
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewEngine(svc, &mockDispatcher{}, nil, fastPoll(), "session-1")

	if _, err := e.Submit(ctx, "thread-1", "text"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSubmit_AppendErrorPropagates(t *testing.T) {
	svc := &mockRunService{appendErr: errors.New("network down")}
	e := NewEngine(svc, &mockDispatcher{}, nil, fastPoll(), "session-1")

	if _, err := e.Submit(context.Background(), "thread-1", "text"); err == nil {
		t.Fatal("expected error when append fails")
	}
}
