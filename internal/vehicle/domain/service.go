package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
)

var (
	ErrNotFound       = errors.New("vehicle_not_found")
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidPlate   = errors.New("invalid_plate")
	ErrDuplicatePlate = errors.New("duplicate_plate")
	ErrInvalidRule    = errors.New("invalid_eligibility_rule")
)

type RegisterRequest struct {
	UserID        string                  `json:"-"`
	Plate         string                  `json:"plate" binding:"required"`
	Name          string                  `json:"name"`
	Attributes    map[string]any          `json:"attributes"`
	Eligibilities []feedomain.Eligibility `json:"eligibilities"`
}

type Response struct {
	ID            string                  `json:"id"`
	UserID        string                  `json:"user_id"`
	Plate         string                  `json:"plate"`
	Name          string                  `json:"name"`
	Attributes    map[string]any          `json:"attributes"`
	Eligibilities []feedomain.Eligibility `json:"eligibilities"`
	CreatedAt     time.Time               `json:"created_at"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Response, error)
	Get(ctx context.Context, id snowflake.ID) (*Response, error)
	ListByUser(ctx context.Context, userID string) ([]Response, error)
	// Eligibilities resolves the flags that apply when billing the vehicle.
	Eligibilities(ctx context.Context, id snowflake.ID) (feedomain.EligibilitySet, error)
}
