package extractor

import (
	"github.com/foxseedlab/usterki/internal/config"
	"github.com/foxseedlab/usterki/internal/extractor"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (extractor.Extractor, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewGeminiExtractor(GeminiConfig{
			APIKey: c.GeminiAPIKey,
			Model:  c.GeminiModel,
		}), nil
	})
}
