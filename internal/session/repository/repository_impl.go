package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	sessiondomain "github.com/railzwaylabs/parkwise/internal/session/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() sessiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *sessiondomain.Session) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*sessiondomain.Session, error) {
	return first(db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindActiveByUser(ctx context.Context, db *gorm.DB, userID string) (*sessiondomain.Session, error) {
	return first(db.WithContext(ctx).
		Where("user_id = ? AND ended_at IS NULL", userID).
		Order("started_at DESC"))
}

func (r *repo) MarkEnded(ctx context.Context, db *gorm.DB, id snowflake.ID, endedAt time.Time, fee feedomain.FeeResult) (bool, error) {
	res := db.WithContext(ctx).
		Model(&sessiondomain.Session{}).
		Where("id = ? AND ended_at IS NULL", id).
		Updates(map[string]any{
			"ended_at":       endedAt,
			"original_fee":   decimal.NewNullDecimal(fee.Original),
			"discounted_fee": decimal.NewNullDecimal(fee.Discounted),
			"has_discount":   fee.HasDiscount,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func first(query *gorm.DB) (*sessiondomain.Session, error) {
	var s sessiondomain.Session
	err := query.Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
