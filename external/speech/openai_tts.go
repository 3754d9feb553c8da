package speech

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/keghouse/barkeep/internal/audio"
	"github.com/keghouse/barkeep/internal/speech"
)

// The speech endpoint's pcm response format is 24kHz 16-bit mono
// little-endian samples with no container.
const (
	ttsSampleRate = 24000
	ttsChannels   = 1
)

type OpenAITTS struct {
	client *openai.Client
	model  string
	voice  string
}

func NewOpenAITTS(client *openai.Client, model, voice string) speech.Synthesizer {
	return &OpenAITTS{client: client, model: model, voice: voice}
}

func (t *OpenAITTS) Synthesize(ctx context.Context, text string) (audio.PCM, error) {
	resp, err := t.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(t.model),
		Input:          text,
		Voice:          openai.SpeechVoice(t.voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return audio.PCM{}, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	raw, err := io.ReadAll(resp)
	if err != nil {
		return audio.PCM{}, fmt.Errorf("read speech response: %w", err)
	}

	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(raw[2*i]) | int16(raw[2*i+1])<<8
	}
	return audio.PCM{Samples: samples, SampleRate: ttsSampleRate, Channels: ttsChannels}, nil
}
