package speech

import (
	openai "github.com/sashabaranov/go-openai"
	"github.com/samber/do/v2"

	"github.com/keghouse/barkeep/internal/config"
	"github.com/keghouse/barkeep/internal/speech"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (speech.Synthesizer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client := do.MustInvoke[*openai.Client](i)
		return NewOpenAITTS(client, cfg.OpenAITTSModel, cfg.OpenAITTSVoice), nil
	})
}
