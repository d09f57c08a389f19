package shipping

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shipping"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewRegistry registers the simulated carriers and, when enabled, the carrier
// REST API. A configured API carrier replaces a simulated one with the same code.
func NewRegistry(cfg *config.Config, logger *zap.Logger) (*shipping.Registry, error) {
	registry := shipping.NewRegistry(
		NewStandardPost(cfg.App.BaseURL),
		NewExpressCourier(cfg.App.BaseURL),
	)
	if !cfg.Shipping.CarrierAPIEnabled {
		return registry, nil
	}
	carrier, err := NewHTTPCarrier(HTTPCarrierConfigFrom(cfg.Shipping))
	if err != nil {
		return nil, err
	}
	registry.Register(carrier)
	logger.Info("carrier API registered",
		zap.String("carrier", carrier.Code()),
		zap.String("base_url", carrier.config.BaseURL))
	return registry, nil
}
