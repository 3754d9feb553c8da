//go:build vad

package audio

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/keghouse/barkeep/internal/audio"
)

// vadClassifier wraps libfvad. Instances are stateful and not safe for
// concurrent use; each session gets its own via the factory.
type vadClassifier struct {
	vad *webrtcvad.VAD
}

func NewFrameClassifier(aggressiveness int) (audio.FrameClassifier, error) {
	vad, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("create vad: %w", err)
	}
	if err := vad.SetMode(aggressiveness); err != nil {
		return nil, fmt.Errorf("set vad mode %d: %w", aggressiveness, err)
	}
	return &vadClassifier{vad: vad}, nil
}

func (c *vadClassifier) IsSpeech(frame []int16, sampleRate int) (bool, error) {
	if ok := webrtcvad.ValidRateAndFrameLength(sampleRate, len(frame)); !ok {
		return false, fmt.Errorf("unsupported rate %d or frame length %d", sampleRate, len(frame))
	}
	buf := make([]byte, len(frame)*2)
	for i, sample := range frame {
		buf[2*i] = byte(sample)
		buf[2*i+1] = byte(sample >> 8)
	}
	active, err := c.vad.Process(sampleRate, buf)
	if err != nil {
		return false, fmt.Errorf("process vad frame: %w", err)
	}
	return active, nil
}
