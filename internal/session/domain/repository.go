package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *Session) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Session, error)
	FindActiveByUser(ctx context.Context, db *gorm.DB, userID string) (*Session, error)
	// MarkEnded closes an active session and reports false when it was
	// already ended.
	MarkEnded(ctx context.Context, db *gorm.DB, id snowflake.ID, endedAt time.Time, fee feedomain.FeeResult) (bool, error)
}
