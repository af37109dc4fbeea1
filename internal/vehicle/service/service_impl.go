package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	vehicledomain "github.com/railzwaylabs/parkwise/internal/vehicle/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var spaces = regexp.MustCompile(`\s+`)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     vehicledomain.Repository
	Resolver *Resolver
	Fee      feedomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     vehicledomain.Repository
	resolver *Resolver
	fee      feedomain.Service
}

func NewService(p ServiceParam) vehicledomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("vehicle.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		resolver: p.Resolver,
		fee:      p.Fee,
	}
}

func (s *Service) Register(ctx context.Context, req vehicledomain.RegisterRequest) (*vehicledomain.Response, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, vehicledomain.ErrInvalidUser
	}
	plate := normalizePlate(req.Plate)
	if plate == "" {
		return nil, vehicledomain.ErrInvalidPlate
	}

	flags, err := s.knownFlags(req.Eligibilities)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByPlate(ctx, s.db, userID, plate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, vehicledomain.ErrDuplicatePlate
	}

	rawFlags, err := json.Marshal(flags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entity := &vehicledomain.Vehicle{
		ID:            s.genID.Generate(),
		UserID:        userID,
		Plate:         plate,
		Name:          strings.TrimSpace(req.Name),
		Attributes:    datatypes.JSONMap(req.Attributes),
		Eligibilities: datatypes.JSON(rawFlags),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if entity.Attributes == nil {
		entity.Attributes = datatypes.JSONMap{}
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, vehicledomain.ErrDuplicatePlate
		}
		return nil, err
	}

	s.log.Info("vehicle registered", zap.String("vehicle_id", entity.ID.String()), zap.String("user_id", userID))
	return s.toResponse(entity)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*vehicledomain.Response, error) {
	entity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(entity)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]vehicledomain.Response, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, vehicledomain.ErrInvalidUser
	}

	items, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]vehicledomain.Response, 0, len(items))
	for i := range items {
		r, err := s.toResponse(&items[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

func (s *Service) Eligibilities(ctx context.Context, id snowflake.ID) (feedomain.EligibilitySet, error) {
	entity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolve(entity)
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*vehicledomain.Vehicle, error) {
	entity, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, vehicledomain.ErrNotFound
	}
	return entity, nil
}

func (s *Service) resolve(v *vehicledomain.Vehicle) (feedomain.EligibilitySet, error) {
	explicit, err := v.ExplicitEligibilities()
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(explicit, map[string]any(v.Attributes)), nil
}

// knownFlags drops duplicates and rejects flags that neither carry a
// discount rate nor have a rule.
func (s *Service) knownFlags(flags []feedomain.Eligibility) ([]feedomain.Eligibility, error) {
	known := append(s.fee.Policy().Flags(), s.resolver.Flags()...)

	out := make([]feedomain.Eligibility, 0, len(flags))
	for _, f := range flags {
		f = feedomain.Eligibility(strings.TrimSpace(string(f)))
		if !slices.Contains(known, f) {
			return nil, fmt.Errorf("%w: %q", feedomain.ErrUnknownEligibility, f)
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *Service) toResponse(v *vehicledomain.Vehicle) (*vehicledomain.Response, error) {
	set, err := s.resolve(v)
	if err != nil {
		return nil, err
	}
	flags := set.Active()
	slices.Sort(flags)

	return &vehicledomain.Response{
		ID:            v.ID.String(),
		UserID:        v.UserID,
		Plate:         v.Plate,
		Name:          v.Name,
		Attributes:    map[string]any(v.Attributes),
		Eligibilities: flags,
		CreatedAt:     v.CreatedAt,
	}, nil
}

func normalizePlate(plate string) string {
	return strings.ToUpper(spaces.ReplaceAllString(strings.TrimSpace(plate), " "))
}
