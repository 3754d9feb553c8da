package assistant

import (
	openai "github.com/sashabaranov/go-openai"
	"github.com/samber/do/v2"

	"github.com/keghouse/barkeep/internal/assistant"
	"github.com/keghouse/barkeep/internal/config"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*openai.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return openai.NewClient(cfg.OpenAIAPIKey), nil
	})
	do.Provide(injector, func(i do.Injector) (assistant.RunService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client := do.MustInvoke[*openai.Client](i)
		return NewOpenAIRunService(client, OpenAIRunServiceConfig{
			AssistantID:       cfg.OpenAIAssistantID,
			Temperature:       cfg.OpenAIModelTemperature,
			InstructionPrompt: cfg.InstructionPrompt,
		}), nil
	})
}
