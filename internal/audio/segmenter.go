package audio

import (
	"log/slog"
	"time"
)

const segmenterFrameDuration = 30 * time.Millisecond

// FrameClassifier decides whether a single fixed-duration mono PCM frame
// contains speech.
type FrameClassifier interface {
	IsSpeech(frame []int16, sampleRate int) (bool, error)
}

type FrameClassifierFactory func() (FrameClassifier, error)

// Segmenter gates transcription: it partitions a mono PCM buffer into 30ms
// frames and reports speech as soon as one frame classifies as speech.
// Buffers shorter than one frame never contain speech. Classifier errors are
// logged and the frame is treated as silence so a bad buffer can never take
// down the session loop.
type Segmenter struct {
	classifier FrameClassifier
}

func NewSegmenter(classifier FrameClassifier) *Segmenter {
	return &Segmenter{classifier: classifier}
}

func (s *Segmenter) HasSpeech(pcm []int16, sampleRate int) bool {
	if sampleRate <= 0 {
		slog.Warn("segmenter received invalid sample rate", "sample_rate", sampleRate)
		return false
	}
	frameSize := int(int64(sampleRate) * int64(segmenterFrameDuration) / int64(time.Second))
	if frameSize <= 0 || len(pcm) < frameSize {
		return false
	}
	for start := 0; start+frameSize <= len(pcm); start += frameSize {
		speech, err := s.classifier.IsSpeech(pcm[start:start+frameSize], sampleRate)
		if err != nil {
			slog.Warn("frame classification failed; treating frame as silence", "error", err, "offset", start)
			continue
		}
		if speech {
			return true
		}
	}
	return false
}
