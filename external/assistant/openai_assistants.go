package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/keghouse/barkeep/internal/assistant"
	"github.com/keghouse/barkeep/internal/tools"
)

type OpenAIRunServiceConfig struct {
	AssistantID       string
	Temperature       float32
	InstructionPrompt string
}

// OpenAIRunService adapts the OpenAI Assistants API to the engine's run
// boundary. One assistant is shared across sessions; each session gets its
// own thread.
type OpenAIRunService struct {
	client *openai.Client
	cfg    OpenAIRunServiceConfig
}

func NewOpenAIRunService(client *openai.Client, cfg OpenAIRunServiceConfig) *OpenAIRunService {
	return &OpenAIRunService{client: client, cfg: cfg}
}

func (s *OpenAIRunService) CreateThread(ctx context.Context) (string, error) {
	thread, err := s.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

func (s *OpenAIRunService) AppendUserMessage(ctx context.Context, threadID, text string) error {
	_, err := s.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    string(openai.ThreadMessageRoleUser),
		Content: text,
	})
	if err != nil {
		return fmt.Errorf("append user message: %w", err)
	}
	return nil
}

func (s *OpenAIRunService) StartRun(ctx context.Context, threadID string) (assistant.Run, error) {
	temperature := s.cfg.Temperature
	run, err := s.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: s.cfg.AssistantID,
		Temperature: &temperature,
	})
	if err != nil {
		return assistant.Run{}, fmt.Errorf("create run: %w", err)
	}
	return s.toRun(run), nil
}

func (s *OpenAIRunService) GetRun(ctx context.Context, threadID, runID string) (assistant.Run, error) {
	run, err := s.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return assistant.Run{}, fmt.Errorf("retrieve run: %w", err)
	}
	return s.toRun(run), nil
}

func (s *OpenAIRunService) SubmitToolOutputs(ctx context.Context, threadID, runID string, results []tools.Result) error {
	outputs := make([]openai.ToolOutput, 0, len(results))
	for _, result := range results {
		outputs = append(outputs, openai.ToolOutput{
			ToolCallID: result.CallID,
			Output:     result.Output,
		})
	}
	_, err := s.client.SubmitToolOutputs(ctx, threadID, runID, openai.SubmitToolOutputsRequest{
		ToolOutputs: outputs,
	})
	if err != nil {
		return fmt.Errorf("submit tool outputs: %w", err)
	}
	return nil
}

func (s *OpenAIRunService) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	limit := 1
	order := "desc"
	list, err := s.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}
	for _, msg := range list.Messages {
		if msg.Role != string(openai.ThreadMessageRoleAssistant) {
			continue
		}
		for _, content := range msg.Content {
			if content.Text != nil {
				return content.Text.Value, nil
			}
		}
	}
	return "", nil
}

// EnsureAssistant reconciles the remote assistant's tool surface and
// instructions with what this build registers, so a redeploy with new tools
// needs no manual dashboard work.
func (s *OpenAIRunService) EnsureAssistant(ctx context.Context, defs []tools.Definition) error {
	existing, err := s.client.RetrieveAssistant(ctx, s.cfg.AssistantID)
	if err != nil {
		return fmt.Errorf("retrieve assistant: %w", err)
	}

	assistantTools := make([]openai.AssistantTool, 0, len(defs))
	for _, def := range defs {
		assistantTools = append(assistantTools, openai.AssistantTool{
			Type: openai.AssistantToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}

	req := openai.AssistantRequest{
		Model: existing.Model,
		Tools: assistantTools,
	}
	if s.cfg.InstructionPrompt != "" {
		instructions := s.cfg.InstructionPrompt
		req.Instructions = &instructions
	}
	if _, err := s.client.ModifyAssistant(ctx, s.cfg.AssistantID, req); err != nil {
		return fmt.Errorf("modify assistant: %w", err)
	}
	slog.Info("assistant tool surface reconciled", "assistant_id", s.cfg.AssistantID, "tools", len(assistantTools))
	return nil
}

func (s *OpenAIRunService) toRun(run openai.Run) assistant.Run {
	out := assistant.Run{ID: run.ID}

	switch run.Status {
	case openai.RunStatusQueued:
		out.Status = assistant.RunStatusQueued
	case openai.RunStatusInProgress:
		out.Status = assistant.RunStatusInProgress
	case openai.RunStatusRequiresAction:
		out.Status = assistant.RunStatusRequiresAction
	case openai.RunStatusCompleted:
		out.Status = assistant.RunStatusCompleted
	default:
		// failed, cancelled, and expired are all terminal failures for the
		// submitted message.
		out.Status = assistant.RunStatusFailed
		out.ErrCode = string(run.Status)
	}

	if run.LastError != nil {
		out.ErrCode = string(run.LastError.Code)
		out.ErrMessage = run.LastError.Message
	}

	if run.Status == openai.RunStatusRequiresAction &&
		run.RequiredAction != nil &&
		run.RequiredAction.SubmitToolOutputs != nil {
		for _, call := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, tools.Call{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: json.RawMessage(call.Function.Arguments),
			})
		}
	}
	return out
}
