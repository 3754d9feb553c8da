package discord

import (
	"github.com/samber/do/v2"

	"github.com/keghouse/barkeep/internal/config"
	"github.com/keghouse/barkeep/internal/discord"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (discord.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewClient(cfg.DiscordToken), nil
	})
}
