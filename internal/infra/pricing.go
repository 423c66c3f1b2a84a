package infra

import (
	"github.com/shopspring/decimal"

	"github.com/khalidaziz/dukkan/internal/config"
	"github.com/khalidaziz/dukkan/pricing"
)

// NewPricingRule parses the configured summary constants. Malformed config
// panics at startup rather than mispricing orders at runtime.
func NewPricingRule(cfg config.Pricing) pricing.Rule {
	return pricing.Rule{
		FreeShippingThreshold: decimal.RequireFromString(cfg.FreeShippingThreshold),
		FlatShippingFee:       decimal.RequireFromString(cfg.FlatShippingFee),
		TaxRate:               decimal.RequireFromString(cfg.TaxRate),
	}
}
