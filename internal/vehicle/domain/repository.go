package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, vehicle *Vehicle) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vehicle, error)
	FindByPlate(ctx context.Context, db *gorm.DB, userID, plate string) (*Vehicle, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]Vehicle, error)
}
