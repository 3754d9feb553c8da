package speech

import (
	"context"

	"github.com/keghouse/barkeep/internal/audio"
)

// Synthesizer turns assistant text into decoded PCM ready for the playback
// pipeline.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (audio.PCM, error)
}
