package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Session is one parking stay. It is active while EndedAt is nil; the fee
// columns are written once, when the session ends.
type Session struct {
	ID            snowflake.ID        `gorm:"primaryKey" json:"id"`
	UserID        string              `gorm:"type:varchar(128);not null;index" json:"user_id"`
	VehicleID     snowflake.ID        `gorm:"not null;index" json:"vehicle_id"`
	ZoneID        snowflake.ID        `gorm:"not null;index" json:"zone_id"`
	ZoneCode      string              `gorm:"type:varchar(128);not null" json:"zone_code"`
	StartedAt     time.Time           `gorm:"not null" json:"started_at"`
	EndedAt       *time.Time          `json:"ended_at,omitempty"`
	OriginalFee   decimal.NullDecimal `gorm:"type:numeric(20,2)" json:"original_fee"`
	DiscountedFee decimal.NullDecimal `gorm:"type:numeric(20,2)" json:"discounted_fee"`
	HasDiscount   bool                `gorm:"not null;default:false" json:"has_discount"`
	CreatedAt     time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"not null" json:"updated_at"`
}

func (Session) TableName() string { return "sessions" }

func (s Session) Active() bool {
	return s.EndedAt == nil
}
