package transcriber

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/keghouse/barkeep/internal/transcriber"
)

// WhisperRecognizer transcribes one WAV clip per call through the OpenAI
// audio transcription endpoint.
type WhisperRecognizer struct {
	client *openai.Client
	model  string
}

func NewWhisperRecognizer(client *openai.Client, model string) transcriber.SpeechToText {
	return &WhisperRecognizer{client: client, model: model}
}

func (r *WhisperRecognizer) Recognize(ctx context.Context, wav []byte) (string, error) {
	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    r.model,
		Reader:   bytes.NewReader(wav),
		FilePath: "audio.wav",
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", fmt.Errorf("create transcription: %w", err)
	}
	return resp.Text, nil
}
