package payment

import (
	"fmt"
	"strings"

	"github.com/nextchamp/nextchamp/internal/platform/config"
)

// Config selects and configures the payment gateway implementation.
type Config struct {
	Provider        string `env:"NEXTCHAMP_PAYMENT_PROVIDER" envDefault:"stub"`
	StripeSecretKey string `env:"NEXTCHAMP_STRIPE_SECRET_KEY"`
	SiteDomain      string `env:"NEXTCHAMP_SITE_DOMAIN" envDefault:"http://localhost:3000"`
}

// LoadConfigFromEnv reads payment gateway configuration.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Provider = strings.TrimSpace(cfg.Provider)
	cfg.SiteDomain = strings.TrimRight(strings.TrimSpace(cfg.SiteDomain), "/")
	if cfg.Provider == "stripe" && strings.TrimSpace(cfg.StripeSecretKey) == "" {
		return Config{}, fmt.Errorf("NEXTCHAMP_STRIPE_SECRET_KEY is required for the stripe provider")
	}
	return cfg, nil
}

// SuccessURL is the post-payment redirect the client lands on before asking
// the server to reconcile the session.
func (c Config) SuccessURL() string {
	return c.SiteDomain + "/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is the redirect for abandoned checkouts.
func (c Config) CancelURL() string {
	return c.SiteDomain + "/dashboard/payment-cancelled"
}
