package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	vehicledomain "github.com/railzwaylabs/parkwise/internal/vehicle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() vehicledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, vehicle *vehicledomain.Vehicle) error {
	return db.WithContext(ctx).Create(vehicle).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*vehicledomain.Vehicle, error) {
	return first(db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindByPlate(ctx context.Context, db *gorm.DB, userID, plate string) (*vehicledomain.Vehicle, error) {
	return first(db.WithContext(ctx).Where("user_id = ? AND plate = ?", userID, plate))
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]vehicledomain.Vehicle, error) {
	var items []vehicledomain.Vehicle
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func first(query *gorm.DB) (*vehicledomain.Vehicle, error) {
	var v vehicledomain.Vehicle
	err := query.Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
