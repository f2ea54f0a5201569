package extractor

import (
	"fmt"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/config"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/port"
)

// ProviderFactory is a function that creates a DocumentExtractor from a
// provider config. The shared rate limiter is handed to every factory;
// providers without a request budget ignore it.
type ProviderFactory func(cfg *config.ExtractorProviderConfig, limiter *RateLimiter) (port.DocumentExtractor, error)

// registry of extraction provider factories, populated explicitly via
// RegisterProvider at wiring time.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates a DocumentExtractor from a provider config using
// the registered factory.
func NewExtractor(cfg *config.ExtractorProviderConfig, limiter *RateLimiter) (port.DocumentExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg, limiter)
}
