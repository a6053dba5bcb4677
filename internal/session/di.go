package session

import (
	"github.com/foxseedlab/usterki/internal/asset"
	"github.com/foxseedlab/usterki/internal/config"
	"github.com/foxseedlab/usterki/internal/discord"
	"github.com/foxseedlab/usterki/internal/extractor"
	"github.com/foxseedlab/usterki/internal/ledger"
	"github.com/foxseedlab/usterki/internal/transcriber"
	"github.com/foxseedlab/usterki/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)
		ext := do.MustInvoke[extractor.Extractor](i)
		led := do.MustInvoke[ledger.Ledger](i)
		assets := do.MustInvoke[asset.Store](i)
		wh := do.MustInvoke[webhook.Sender](i)
		var stt transcriber.Transcriber
		if cfg.VoiceTranscriptionEnabled() {
			stt = do.MustInvoke[transcriber.Transcriber](i)
		}
		return NewManager(cfg, dc, ext, led, assets, stt, wh), nil
	})
}
