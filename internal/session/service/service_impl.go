package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/parkwise/internal/clock"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	sessiondomain "github.com/railzwaylabs/parkwise/internal/session/domain"
	vehicledomain "github.com/railzwaylabs/parkwise/internal/vehicle/domain"
	zonedomain "github.com/railzwaylabs/parkwise/internal/zone/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tracerName = "github.com/railzwaylabs/parkwise/internal/session"

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     sessiondomain.Repository
	Fee      feedomain.Service
	Zones    zonedomain.Service
	Vehicles vehicledomain.Service
	Tracer   trace.TracerProvider `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     sessiondomain.Repository
	fee      feedomain.Service
	zones    zonedomain.Service
	vehicles vehicledomain.Service
	tracer   trace.Tracer
}

func NewService(p ServiceParam) sessiondomain.Service {
	tp := p.Tracer
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("session.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		fee:      p.Fee,
		zones:    p.Zones,
		vehicles: p.Vehicles,
		tracer:   tp.Tracer(tracerName),
	}
}

func (s *Service) Start(ctx context.Context, req sessiondomain.StartRequest) (_ *sessiondomain.Response, err error) {
	ctx, span := s.tracer.Start(ctx, "session.Start")
	defer func() { finish(span, err) }()

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, sessiondomain.ErrInvalidUser
	}

	vehicle, err := s.vehicles.Get(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	// Someone else's vehicle reads as missing.
	if vehicle.UserID != userID {
		return nil, vehicledomain.ErrNotFound
	}

	zone, err := s.zones.Resolve(ctx, req.ZoneCode)
	if err != nil {
		return nil, err
	}

	startedAt := s.clock.Now(ctx)
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}
	now := time.Now().UTC()

	entity := &sessiondomain.Session{
		ID:        s.genID.Generate(),
		UserID:    userID,
		VehicleID: req.VehicleID,
		ZoneID:    zone.ID,
		ZoneCode:  zone.Code,
		StartedAt: startedAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	span.SetAttributes(
		attribute.String("session.id", entity.ID.String()),
		attribute.String("zone.code", zone.Code),
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := s.repo.FindActiveByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if active != nil {
			return sessiondomain.ErrActiveSessionExists
		}
		return s.repo.Insert(ctx, tx, entity)
	})
	if err != nil {
		// The partial unique index on active sessions catches concurrent starts.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, sessiondomain.ErrActiveSessionExists
		}
		return nil, err
	}

	s.log.Info("session started",
		zap.String("session_id", entity.ID.String()),
		zap.String("user_id", userID),
		zap.String("zone", zone.Code),
	)
	return toResponse(entity), nil
}

func (s *Service) Active(ctx context.Context, userID string) (*sessiondomain.Response, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, sessiondomain.ErrInvalidUser
	}

	entity, err := s.repo.FindActiveByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, sessiondomain.ErrNotFound
	}
	return toResponse(entity), nil
}

func (s *Service) Quote(ctx context.Context, userID string, id snowflake.ID, at *time.Time) (_ *sessiondomain.FeeResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "session.Quote")
	defer func() { finish(span, err) }()

	entity, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	end := s.clock.Now(ctx)
	if at != nil {
		end = *at
	}
	if !entity.Active() {
		end = *entity.EndedAt
	}

	return s.evaluate(ctx, entity, end)
}

func (s *Service) End(ctx context.Context, userID string, id snowflake.ID, at *time.Time) (_ *sessiondomain.FeeResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "session.End")
	defer func() { finish(span, err) }()

	entity, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !entity.Active() {
		return nil, sessiondomain.ErrAlreadyEnded
	}

	end := s.clock.Now(ctx)
	if at != nil {
		end = *at
	}

	resp, err := s.evaluate(ctx, entity, end)
	if err != nil {
		return nil, err
	}

	endedAt := end.UTC()
	ok, err := s.repo.MarkEnded(ctx, s.db, entity.ID, endedAt, resp.Quote.Result)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sessiondomain.ErrAlreadyEnded
	}
	resp.Final = true

	s.log.Info("session ended",
		zap.String("session_id", entity.ID.String()),
		zap.Int64("minutes", resp.Quote.Minutes),
		zap.String("original", resp.Quote.Result.Original.String()),
		zap.String("discounted", resp.Quote.Result.Discounted.String()),
	)
	return resp, nil
}

func (s *Service) load(ctx context.Context, userID string, id snowflake.ID) (*sessiondomain.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, sessiondomain.ErrInvalidUser
	}

	entity, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	// Other users' sessions are reported as missing.
	if entity == nil || entity.UserID != userID {
		return nil, sessiondomain.ErrNotFound
	}
	return entity, nil
}

// evaluate prices the session in its zone's time zone with the zone's
// current schedule and the vehicle's resolved eligibilities.
func (s *Service) evaluate(ctx context.Context, entity *sessiondomain.Session, end time.Time) (*sessiondomain.FeeResponse, error) {
	zone, err := s.zones.Resolve(ctx, entity.ZoneCode)
	if err != nil {
		return nil, err
	}
	schedule, err := zone.Schedule()
	if err != nil {
		return nil, err
	}
	loc, err := zone.Location()
	if err != nil {
		return nil, err
	}

	set, err := s.vehicles.Eligibilities(ctx, entity.VehicleID)
	if err != nil {
		return nil, err
	}

	quote, err := s.fee.Evaluate(ctx, entity.StartedAt.In(loc), end.In(loc), schedule, set)
	if err != nil {
		return nil, err
	}

	return &sessiondomain.FeeResponse{
		SessionID: entity.ID.String(),
		ZoneCode:  zone.Code,
		Currency:  zone.Currency,
		Final:     !entity.Active(),
		Quote:     quote,
	}, nil
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func toResponse(s *sessiondomain.Session) *sessiondomain.Response {
	resp := &sessiondomain.Response{
		ID:        s.ID.String(),
		UserID:    s.UserID,
		VehicleID: s.VehicleID.String(),
		ZoneCode:  s.ZoneCode,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
	}
	if s.OriginalFee.Valid && s.DiscountedFee.Valid {
		resp.Fee = &feedomain.FeeResult{
			Original:    s.OriginalFee.Decimal,
			Discounted:  s.DiscountedFee.Decimal,
			HasDiscount: s.HasDiscount,
		}
	}
	return resp
}
