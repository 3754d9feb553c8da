package transcriber

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/samber/do/v2"

	"github.com/keghouse/barkeep/internal/audio"
	"github.com/keghouse/barkeep/internal/config"
	"github.com/keghouse/barkeep/internal/transcriber"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.SpeechToText, error) {
		c := do.MustInvoke[*config.Config](i)
		switch c.TranscribeBackend {
		case config.TranscribeBackendOpenAI:
			client := do.MustInvoke[*openai.Client](i)
			return NewWhisperRecognizer(client, c.OpenAITranscribeModel), nil
		case config.TranscribeBackendGoogle:
			return NewCloudSpeechRecognizer(context.Background(), CloudSpeechConfig{
				ProjectID:       c.GoogleCloudProjectID,
				CredentialsJSON: c.GoogleCloudCredentialsJSON,
				Location:        c.GoogleCloudSpeechLocation,
				Model:           c.GoogleCloudSpeechModel,
			})
		default:
			return nil, fmt.Errorf("unknown transcribe backend %q", c.TranscribeBackend)
		}
	})
	do.Provide(injector, func(i do.Injector) (transcriber.Transcriber, error) {
		stt := do.MustInvoke[transcriber.SpeechToText](i)
		newClassifier := do.MustInvoke[audio.FrameClassifierFactory](i)
		classifier, err := newClassifier()
		if err != nil {
			return nil, fmt.Errorf("create frame classifier: %w", err)
		}
		return transcriber.NewAdapter(audio.NewSegmenter(classifier), stt), nil
	})
}
