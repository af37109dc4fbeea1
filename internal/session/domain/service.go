package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
)

var (
	ErrNotFound            = errors.New("session_not_found")
	ErrInvalidUser         = errors.New("invalid_user")
	ErrActiveSessionExists = errors.New("active_session_exists")
	ErrAlreadyEnded        = errors.New("session_already_ended")
)

type StartRequest struct {
	UserID    string       `json:"-"`
	VehicleID snowflake.ID `json:"vehicle_id" binding:"required"`
	ZoneCode  string       `json:"zone_code" binding:"required"`
	// StartedAt defaults to now.
	StartedAt *time.Time `json:"started_at"`
}

type Response struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	VehicleID string               `json:"vehicle_id"`
	ZoneCode  string               `json:"zone_code"`
	StartedAt time.Time            `json:"started_at"`
	EndedAt   *time.Time           `json:"ended_at,omitempty"`
	Fee       *feedomain.FeeResult `json:"fee,omitempty"`
}

// FeeResponse is the fee of a session at a point in time. Final is true once
// the session has ended and the fee is the one that was persisted.
type FeeResponse struct {
	SessionID string          `json:"session_id"`
	ZoneCode  string          `json:"zone_code"`
	Currency  string          `json:"currency"`
	Final     bool            `json:"final"`
	Quote     feedomain.Quote `json:"quote"`
}

type Service interface {
	Start(ctx context.Context, req StartRequest) (*Response, error)
	// Active returns ErrNotFound when the user has no unended session.
	Active(ctx context.Context, userID string) (*Response, error)
	// Quote evaluates the fee owed at `at`, defaulting to now. Ended sessions
	// are evaluated at their end time.
	Quote(ctx context.Context, userID string, id snowflake.ID, at *time.Time) (*FeeResponse, error)
	End(ctx context.Context, userID string, id snowflake.ID, at *time.Time) (*FeeResponse, error)
}
