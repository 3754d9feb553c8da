package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/keghouse/barkeep/internal/audio"
	"github.com/keghouse/barkeep/internal/discord"
	"github.com/keghouse/barkeep/internal/speech"
)

const playbackSampleRate = 48000

// Speaker serializes spoken output on one voice connection: a second Speak
// blocks until the first has fully played out. Mutual exclusion only, no
// ordering guarantee between waiters.
type Speaker struct {
	mu    sync.Mutex
	synth speech.Synthesizer
	voice discord.VoiceConnection
}

func NewSpeaker(synth speech.Synthesizer, voice discord.VoiceConnection) *Speaker {
	return &Speaker{synth: synth, voice: voice}
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pcm, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	out := audio.ResampleAndWiden(pcm, playbackSampleRate)
	if len(out.Samples) == 0 {
		slog.Warn("synthesizer returned no audio", "text_len", len(text))
		return nil
	}
	if err := s.voice.Play(ctx, out); err != nil {
		return fmt.Errorf("play speech: %w", err)
	}
	return nil
}
