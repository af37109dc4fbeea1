package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/railzwaylabs/parkwise/internal/config"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	zonedomain "github.com/railzwaylabs/parkwise/internal/zone/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultTimeZone = "UTC"
	defaultCurrency = "JPY"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   zonedomain.Repository
	Fee    feedomain.Service
	Config config.Config
	Redis  *redis.Client `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  zonedomain.Repository
	fee   feedomain.Service
	cache *zoneCache
}

func NewService(p ServiceParam) zonedomain.Service {
	log := p.Log.Named("zone.service")
	return &Service{
		db:    p.DB,
		log:   log,
		genID: p.GenID,
		repo:  p.Repo,
		fee:   p.Fee,
		cache: &zoneCache{
			client: p.Redis,
			ttl:    p.Config.Cache.ZoneTTL,
			log:    log,
		},
	}
}

func (s *Service) Create(ctx context.Context, req zonedomain.CreateRequest) (*zonedomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, zonedomain.ErrInvalidName
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = name
	}
	code = slug.Make(code)
	if code == "" {
		return nil, zonedomain.ErrInvalidCode
	}

	tz, err := normalizeTimeZone(req.TimeZone)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, zonedomain.ErrInvalidCurrency
	}

	if err := s.fee.ValidateSchedule(req.Schedule); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, zonedomain.ErrDuplicateCode
	}

	now := time.Now().UTC()
	entity := &zonedomain.Zone{
		ID:        s.genID.Generate(),
		Code:      code,
		Name:      name,
		TimeZone:  tz,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entity.ApplySchedule(req.Schedule); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, zonedomain.ErrDuplicateCode
		}
		return nil, err
	}

	s.log.Info("zone created", zap.String("code", code), zap.Bool("tiered", req.Schedule.HasCustomTiers()))
	return toResponse(entity)
}

func (s *Service) Update(ctx context.Context, code string, req zonedomain.UpdateRequest) (*zonedomain.Response, error) {
	code = strings.TrimSpace(code)
	entity, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, zonedomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, zonedomain.ErrInvalidName
		}
		entity.Name = name
	}
	if req.TimeZone != nil {
		tz, err := normalizeTimeZone(*req.TimeZone)
		if err != nil {
			return nil, err
		}
		entity.TimeZone = tz
	}
	if req.Schedule != nil {
		if err := s.fee.ValidateSchedule(*req.Schedule); err != nil {
			return nil, err
		}
		if err := entity.ApplySchedule(*req.Schedule); err != nil {
			return nil, err
		}
	}
	entity.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, entity.Code)

	s.log.Info("zone updated", zap.String("code", entity.Code))
	return toResponse(entity)
}

func (s *Service) Get(ctx context.Context, code string) (*zonedomain.Response, error) {
	entity, err := s.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	return toResponse(entity)
}

func (s *Service) List(ctx context.Context) ([]zonedomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]zonedomain.Response, 0, len(items))
	for i := range items {
		r, err := toResponse(&items[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

func (s *Service) Resolve(ctx context.Context, code string) (*zonedomain.Zone, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, zonedomain.ErrInvalidCode
	}

	if cached, ok := s.cache.get(ctx, code); ok {
		return cached, nil
	}

	entity, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, zonedomain.ErrNotFound
	}

	s.cache.set(ctx, entity)
	return entity, nil
}

func normalizeTimeZone(value string) (string, error) {
	tz := strings.TrimSpace(value)
	if tz == "" {
		return defaultTimeZone, nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return "", fmt.Errorf("%w: %s", zonedomain.ErrInvalidTimeZone, tz)
	}
	return tz, nil
}

func toResponse(z *zonedomain.Zone) (*zonedomain.Response, error) {
	schedule, err := z.Schedule()
	if err != nil {
		return nil, err
	}
	return &zonedomain.Response{
		ID:        z.ID.String(),
		Code:      z.Code,
		Name:      z.Name,
		TimeZone:  z.TimeZone,
		Currency:  z.Currency,
		Schedule:  schedule,
		CreatedAt: z.CreatedAt,
		UpdatedAt: z.UpdatedAt,
	}, nil
}
