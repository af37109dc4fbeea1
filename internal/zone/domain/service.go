package domain

import (
	"context"
	"errors"
	"time"

	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
)

var (
	ErrNotFound        = errors.New("zone_not_found")
	ErrInvalidName     = errors.New("invalid_zone_name")
	ErrInvalidCode     = errors.New("invalid_zone_code")
	ErrInvalidTimeZone = errors.New("invalid_time_zone")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrDuplicateCode   = errors.New("duplicate_zone_code")
)

type CreateRequest struct {
	Name     string                `json:"name" binding:"required"`
	Code     string                `json:"code"`
	TimeZone string                `json:"time_zone"`
	Currency string                `json:"currency"`
	Schedule feedomain.FeeSchedule `json:"schedule"`
}

type UpdateRequest struct {
	Name     *string                `json:"name"`
	TimeZone *string                `json:"time_zone"`
	Schedule *feedomain.FeeSchedule `json:"schedule"`
}

type Response struct {
	ID        string                `json:"id"`
	Code      string                `json:"code"`
	Name      string                `json:"name"`
	TimeZone  string                `json:"time_zone"`
	Currency  string                `json:"currency"`
	Schedule  feedomain.FeeSchedule `json:"schedule"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, code string, req UpdateRequest) (*Response, error)
	Get(ctx context.Context, code string) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	// Resolve returns the stored zone for billing, served from cache when possible.
	Resolve(ctx context.Context, code string) (*Zone, error)
}
