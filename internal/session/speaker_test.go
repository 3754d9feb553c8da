package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/keghouse/barkeep/internal/audio"
	"github.com/keghouse/barkeep/internal/discord"
	"github.com/keghouse/barkeep/internal/transcriber"
)

type fakeSynthesizer struct {
	err   error
	empty bool
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _ string) (audio.PCM, error) {
	if f.err != nil {
		return audio.PCM{}, f.err
	}
	if f.empty {
		return audio.PCM{SampleRate: 24000, Channels: 1}, nil
	}
	return audio.PCM{Samples: []int16{100, 200, 300, 400}, SampleRate: 24000, Channels: 1}, nil
}

type playbackWindow struct {
	start time.Time
	end   time.Time
}

type fakeVoiceConnection struct {
	mu        sync.Mutex
	playDelay time.Duration
	playErr   error
	playbacks []playbackWindow
	played    []audio.PCM
	connected bool
}

func (f *fakeVoiceConnection) StartCapture() (discord.Capture, error) {
	return fakeCapture{}, nil
}

func (f *fakeVoiceConnection) Play(_ context.Context, pcm audio.PCM) error {
	start := time.Now()
	time.Sleep(f.playDelay)
	f.mu.Lock()
	f.playbacks = append(f.playbacks, playbackWindow{start: start, end: time.Now()})
	f.played = append(f.played, pcm)
	f.mu.Unlock()
	return f.playErr
}

func (f *fakeVoiceConnection) Connected() bool { return f.connected }

func (f *fakeVoiceConnection) Disconnect() error { return nil }

type fakeCapture struct{}

func (fakeCapture) Stop() []transcriber.SpeakerTurn { return nil }

func TestSpeaker_ResamplesToPlaybackFormat(t *testing.T) {
	voice := &fakeVoiceConnection{}
	sp := NewSpeaker(&fakeSynthesizer{}, voice)

	if err := sp.Speak(context.Background(), "cheers"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(voice.played) != 1 {
		t.Fatalf("expected one playback, got %d", len(voice.played))
	}
	got := voice.played[0]
	if got.SampleRate != playbackSampleRate || got.Channels != 2 {
		t.Fatalf("unexpected playback format: rate=%d channels=%d", got.SampleRate, got.Channels)
	}
}

func TestSpeaker_SerializesConcurrentSpeech(t *testing.T) {
	voice := &fakeVoiceConnection{playDelay: 30 * time.Millisecond}
	sp := NewSpeaker(&fakeSynthesizer{}, voice)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sp.Speak(context.Background(), "round on the house"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(voice.playbacks) != 2 {
		t.Fatalf("expected two playbacks, got %d", len(voice.playbacks))
	}
	first, second := voice.playbacks[0], voice.playbacks[1]
	if second.start.Before(first.end) {
		t.Fatalf("playbacks overlapped: first ended %v, second started %v", first.end, second.start)
	}
}

func TestSpeaker_SkipsPlaybackWhenSynthesizerReturnsNoAudio(t *testing.T) {
	voice := &fakeVoiceConnection{}
	sp := NewSpeaker(&fakeSynthesizer{empty: true}, voice)

	if err := sp.Speak(context.Background(), "..."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(voice.played) != 0 {
		t.Fatalf("expected no playback, got %d", len(voice.played))
	}
}

func TestSpeaker_WrapsSynthesizerError(t *testing.T) {
	boom := errors.New("boom")
	sp := NewSpeaker(&fakeSynthesizer{err: boom}, &fakeVoiceConnection{})

	err := sp.Speak(context.Background(), "hello")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped synthesizer error, got %v", err)
	}
}
