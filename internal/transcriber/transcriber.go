package transcriber

import (
	"context"
	"time"
)

// SpeakerTurn is one speaker's raw audio from one recording interval.
type SpeakerTurn struct {
	UserID      string
	DisplayName string
	PCM         []int16
	SampleRate  int
	Channels    int
	CapturedAt  time.Time
}

// Transcriber turns one speaker turn into plain text. An empty string means
// "nothing worth processing" and must not be forwarded into the transcript
// buffer.
type Transcriber interface {
	Transcribe(ctx context.Context, turn SpeakerTurn) (string, error)
}

// SpeechToText is the external service boundary: it receives a normalized
// WAV container and returns the recognized text.
type SpeechToText interface {
	Recognize(ctx context.Context, wav []byte) (string, error)
}
