package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	zonedomain "github.com/railzwaylabs/parkwise/internal/zone/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() zonedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, zone *zonedomain.Zone) error {
	return db.WithContext(ctx).Create(zone).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, zone *zonedomain.Zone) error {
	return db.WithContext(ctx).Save(zone).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*zonedomain.Zone, error) {
	return first(db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*zonedomain.Zone, error) {
	return first(db.WithContext(ctx).Where("code = ?", code))
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]zonedomain.Zone, error) {
	var items []zonedomain.Zone
	if err := db.WithContext(ctx).Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func first(query *gorm.DB) (*zonedomain.Zone, error) {
	var z zonedomain.Zone
	err := query.Take(&z).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}
