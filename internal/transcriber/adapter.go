package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/keghouse/barkeep/internal/audio"
)

// Adapter gates speech-to-text behind the segmenter: silent or noise-only
// buffers are dropped before the paid recognition call.
type Adapter struct {
	segmenter *audio.Segmenter
	stt       SpeechToText
}

func NewAdapter(segmenter *audio.Segmenter, stt SpeechToText) *Adapter {
	return &Adapter{segmenter: segmenter, stt: stt}
}

func (a *Adapter) Transcribe(ctx context.Context, turn SpeakerTurn) (string, error) {
	if len(turn.PCM) == 0 {
		return "", nil
	}
	mono := audio.DownmixStereo(turn.PCM, turn.Channels)
	if !a.segmenter.HasSpeech(mono, turn.SampleRate) {
		slog.Debug("no speech detected; skipping transcription", "user_id", turn.UserID)
		return "", nil
	}

	wav := audio.EncodeWAV(mono, turn.SampleRate, 1)
	text, err := a.stt.Recognize(ctx, wav)
	if err != nil {
		return "", fmt.Errorf("recognize speech for %s: %w", turn.UserID, err)
	}
	return strings.TrimSpace(text), nil
}
