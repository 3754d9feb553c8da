//go:build !vad

package audio

import (
	"github.com/keghouse/barkeep/internal/audio"
)

// Without the vad build tag every frame classifies as speech, so all
// captured audio is transcribed. Useful for local development without the
// libfvad toolchain.
type passthroughClassifier struct{}

func NewFrameClassifier(_ int) (audio.FrameClassifier, error) {
	return passthroughClassifier{}, nil
}

func (passthroughClassifier) IsSpeech(frame []int16, _ int) (bool, error) {
	for _, sample := range frame {
		if sample != 0 {
			return true, nil
		}
	}
	return false, nil
}
