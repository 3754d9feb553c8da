package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/keghouse/barkeep/internal/discord"
	"github.com/keghouse/barkeep/internal/transcriber"
)

// runSubmitter and speaker are the session loop's two downstream seams,
// satisfied by *assistant.Engine and *Speaker.
type runSubmitter interface {
	Submit(ctx context.Context, threadID, text string) (string, error)
}

type speaker interface {
	Speak(ctx context.Context, text string) error
}

type loopConfig struct {
	recordingInterval time.Duration
	pauseInterval     time.Duration
	activationPhrase  string
}

// VoiceSession is one continuous occupancy of a voice channel. Its loop
// cycles Recording -> Draining until the connection dies or the session is
// stopped; Recording and Draining never overlap, so cross-interval
// transcript order is strictly sequential.
type VoiceSession struct {
	id          string
	guildID     string
	channelID   string
	threadID    string
	cfg         loopConfig
	voice       discord.VoiceConnection
	transcriber transcriber.Transcriber
	engine      runSubmitter
	speaker     speaker
	notify      func(content string)

	buffer transcriptBuffer
	done   chan struct{}
}

func newVoiceSession(
	id, guildID, channelID, threadID string,
	cfg loopConfig,
	voice discord.VoiceConnection,
	stt transcriber.Transcriber,
	engine runSubmitter,
	sp speaker,
	notify func(content string),
) *VoiceSession {
	return &VoiceSession{
		id:          id,
		guildID:     guildID,
		channelID:   channelID,
		threadID:    threadID,
		cfg:         cfg,
		voice:       voice,
		transcriber: stt,
		engine:      engine,
		speaker:     sp,
		notify:      notify,
		done:        make(chan struct{}),
	}
}

// run is the session's only goroutine touching the transcript buffer.
// Recoverable per-iteration errors are logged and the loop continues;
// connection loss and cancellation end it.
func (s *VoiceSession) run(ctx context.Context, onConnectionLost func()) {
	defer close(s.done)
	slog.Info("voice session loop started", "session_id", s.id, "guild_id", s.guildID, "channel_id", s.channelID)

	for {
		if ctx.Err() != nil {
			slog.Info("voice session loop stopped", "session_id", s.id)
			return
		}
		if !s.voice.Connected() {
			slog.Warn("voice connection lost; ending session loop", "session_id", s.id)
			if onConnectionLost != nil {
				// The callback tears the session down and waits for this
				// goroutine to exit, so it must run elsewhere.
				go onConnectionLost()
			}
			return
		}

		capture, err := s.voice.StartCapture()
		if err != nil {
			slog.Error("failed to start capture", "error", err, "session_id", s.id)
			if !sleepFor(ctx, s.cfg.pauseInterval) {
				return
			}
			continue
		}
		if !sleepFor(ctx, s.cfg.recordingInterval) {
			capture.Stop()
			return
		}
		turns := capture.Stop()
		s.drain(ctx, turns)

		// Pause before re-entering recording so spoken output is not
		// immediately re-captured.
		if !sleepFor(ctx, s.cfg.pauseInterval) {
			return
		}
	}
}

// drain transcribes the interval's speaker buffers in capture order. When
// any utterance contains the activation phrase, everything buffered so far
// is flushed as one combined message and the buffer is cleared.
func (s *VoiceSession) drain(ctx context.Context, turns []transcriber.SpeakerTurn) {
	triggered := false
	for _, turn := range turns {
		text, err := s.transcriber.Transcribe(ctx, turn)
		if err != nil {
			slog.Warn("transcription failed; skipping speaker for this interval", "error", err, "session_id", s.id, "user_id", turn.UserID)
			continue
		}
		if text == "" {
			continue
		}
		s.buffer.append(TranscriptEntry{
			SpeakerID:   turn.UserID,
			SpeakerName: turn.DisplayName,
			CapturedAt:  turn.CapturedAt,
			Text:        text,
		})
		slog.Info("utterance buffered", "session_id", s.id, "speaker", turn.DisplayName, "buffered", s.buffer.len())
		if containsPhrase(text, s.cfg.activationPhrase) {
			triggered = true
		}
	}
	if !triggered {
		return
	}

	combined := s.buffer.flush()
	if combined == "" {
		return
	}
	slog.Info("activation phrase heard; submitting transcript", "session_id", s.id, "chars", len(combined))
	reply, err := s.engine.Submit(ctx, s.threadID, combined)
	if err != nil {
		slog.Error("assistant run did not complete", "error", err, "session_id", s.id)
		if s.notify != nil {
			s.notify(messageRunFailed)
		}
		return
	}
	if reply == "" {
		return
	}
	if err := s.speaker.Speak(ctx, reply); err != nil {
		slog.Error("failed to speak assistant reply", "error", err, "session_id", s.id)
	}
}

func (s *VoiceSession) ID() string { return s.id }

func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(phrase))
}

func sleepFor(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
