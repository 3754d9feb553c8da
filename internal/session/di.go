package session

import (
	"github.com/keghouse/barkeep/internal/assistant"
	"github.com/keghouse/barkeep/internal/config"
	"github.com/keghouse/barkeep/internal/discord"
	"github.com/keghouse/barkeep/internal/repository"
	"github.com/keghouse/barkeep/internal/speech"
	"github.com/keghouse/barkeep/internal/transcriber"
	"github.com/keghouse/barkeep/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		dc := do.MustInvoke[discord.Client](i)
		runs := do.MustInvoke[assistant.RunService](i)
		stt := do.MustInvoke[transcriber.Transcriber](i)
		synth := do.MustInvoke[speech.Synthesizer](i)
		wh := do.MustInvoke[webhook.Sender](i)
		return NewManager(cfg, repo, dc, runs, stt, synth, wh), nil
	})
}
