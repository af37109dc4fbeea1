package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	"github.com/railzwaylabs/parkwise/internal/fee/engine"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Engine   *engine.Engine
	Registry prometheus.Registerer `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	engine  *engine.Engine
	metrics *metrics
}

func NewService(p ServiceParam) feedomain.Service {
	return &Service{
		log:     p.Log.Named("fee.service"),
		engine:  p.Engine,
		metrics: newMetrics(p.Registry),
	}
}

func (s *Service) Policy() feedomain.DiscountPolicy {
	return s.engine.Policy()
}

func (s *Service) ValidateSchedule(schedule feedomain.FeeSchedule) error {
	return feedomain.ValidateSchedule(schedule)
}

func (s *Service) Quote(ctx context.Context, req feedomain.QuoteRequest) (feedomain.Quote, error) {
	if err := feedomain.ValidateSchedule(req.Schedule); err != nil {
		s.metrics.evaluations.WithLabelValues("invalid_schedule").Inc()
		return feedomain.Quote{}, err
	}

	known := s.engine.Policy().Flags()
	for _, flag := range req.Eligibilities {
		if !slices.Contains(known, flag) {
			s.metrics.evaluations.WithLabelValues("unknown_eligibility").Inc()
			return feedomain.Quote{}, fmt.Errorf("%w: %q", feedomain.ErrUnknownEligibility, flag)
		}
	}

	start, end := req.Start, req.End
	if req.Location != nil {
		start, end = start.In(req.Location), end.In(req.Location)
	}

	return s.Evaluate(ctx, start, end, req.Schedule, feedomain.NewEligibilitySet(req.Eligibilities...))
}

func (s *Service) Evaluate(ctx context.Context, start, end time.Time, schedule feedomain.FeeSchedule, set feedomain.EligibilitySet) (feedomain.Quote, error) {
	quote, err := s.engine.Explain(start, end, schedule, set)
	if err != nil {
		outcome := "error"
		if errors.Is(err, feedomain.ErrInvalidInterval) {
			outcome = "invalid_interval"
		}
		s.metrics.evaluations.WithLabelValues(outcome).Inc()
		s.log.Debug("fee evaluation rejected", zap.Error(err))
		return feedomain.Quote{}, err
	}

	s.metrics.evaluations.WithLabelValues("ok").Inc()
	s.metrics.amount.WithLabelValues("original").Observe(quote.Result.Original.InexactFloat64())
	s.metrics.amount.WithLabelValues("discounted").Observe(quote.Result.Discounted.InexactFloat64())
	if quote.Result.HasDiscount {
		s.metrics.discounts.Inc()
	}

	s.log.Debug("fee evaluated",
		zap.Int64("minutes", quote.Minutes),
		zap.Int64("raw_fee", quote.RawFee),
		zap.Int64("capped_fee", quote.CappedFee),
		zap.String("discount_rate", quote.DiscountRate.String()),
		zap.Bool("tiered", quote.Tier != nil),
	)

	return quote, nil
}
