package payment

import (
	"errors"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
)

// SimulatedGatewayConfig contains configuration for the simulated gateway
type SimulatedGatewayConfig struct {
	// Secret signs the round-trip tokens (HS256)
	Secret string
	// CheckoutURL is the hosted page the buyer is redirected to
	CheckoutURL string
	// ReturnURL receives the buyer with the signed token
	ReturnURL string
	// TokenTTL bounds both the checkout session and the return token
	TokenTTL time.Duration
	// Issuer is written to and required on every token
	Issuer string
}

// Errors for configuration validation
var (
	ErrSimulatedMissingSecret      = errors.New("simulated gateway: missing secret")
	ErrSimulatedShortSecret        = errors.New("simulated gateway: secret must be at least 32 bytes")
	ErrSimulatedMissingCheckoutURL = errors.New("simulated gateway: missing checkout URL")
	ErrSimulatedMissingReturnURL   = errors.New("simulated gateway: missing return URL")
)

const (
	minSecretLength        = 32
	defaultSimulatedTTL    = 30 * time.Minute
	defaultSimulatedIssuer = "mercato-simulated-gateway"
)

// Validate validates the configuration and fills defaults
func (c *SimulatedGatewayConfig) Validate() error {
	if c.Secret == "" {
		return ErrSimulatedMissingSecret
	}
	if len(c.Secret) < minSecretLength {
		return ErrSimulatedShortSecret
	}
	if c.CheckoutURL == "" {
		return ErrSimulatedMissingCheckoutURL
	}
	if c.ReturnURL == "" {
		return ErrSimulatedMissingReturnURL
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = defaultSimulatedTTL
	}
	if c.Issuer == "" {
		c.Issuer = defaultSimulatedIssuer
	}
	return nil
}

// SimulatedGatewayConfigFrom builds the gateway configuration from application config
func SimulatedGatewayConfigFrom(cfg *config.Config) *SimulatedGatewayConfig {
	return &SimulatedGatewayConfig{
		Secret:      cfg.Payment.GatewaySecret,
		CheckoutURL: cfg.Payment.GatewayURL,
		ReturnURL:   cfg.App.BaseURL + "/api/v1/payments/return",
		TokenTTL:    cfg.Payment.TokenTTL,
		Issuer:      cfg.App.Name,
	}
}
