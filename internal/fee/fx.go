package fee

import (
	"github.com/railzwaylabs/parkwise/internal/config"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	"github.com/railzwaylabs/parkwise/internal/fee/engine"
	"github.com/railzwaylabs/parkwise/internal/fee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fee.service",
	fx.Provide(PolicyFromConfig),
	fx.Provide(engine.New),
	fx.Provide(service.NewService),
)

// PolicyFromConfig builds the discount table once at startup; a bad rate
// stops the app from starting.
func PolicyFromConfig(cfg config.Config) (feedomain.DiscountPolicy, error) {
	rates := make(map[feedomain.Eligibility]float64, len(cfg.Fee.DiscountRates))
	for flag, rate := range cfg.Fee.DiscountRates {
		rates[feedomain.Eligibility(flag)] = rate
	}
	return feedomain.NewDiscountPolicy(rates, feedomain.Combination(cfg.Fee.DiscountCombination))
}
