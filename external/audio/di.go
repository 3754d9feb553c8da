package audio

import (
	"github.com/samber/do/v2"

	"github.com/keghouse/barkeep/internal/audio"
	"github.com/keghouse/barkeep/internal/config"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audio.FrameClassifierFactory, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return func() (audio.FrameClassifier, error) {
			return NewFrameClassifier(cfg.VADAggressiveness)
		}, nil
	})
}
