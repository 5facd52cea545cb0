package payment

import "fmt"

// NewGateway constructs the gateway selected by configuration.
func NewGateway(cfg Config) (Gateway, error) {
	switch cfg.Provider {
	case "stripe":
		return NewStripeGateway(cfg.StripeSecretKey), nil
	case "stub":
		return NewStubGateway(cfg.SiteDomain), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.Provider)
	}
}
