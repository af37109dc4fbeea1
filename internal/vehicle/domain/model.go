package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	"gorm.io/datatypes"
)

// Vehicle is a user's registered vehicle. Attributes feed the eligibility
// rules; Eligibilities holds flags granted explicitly at registration.
type Vehicle struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID        string            `gorm:"type:varchar(128);not null;uniqueIndex:ux_vehicles_user_plate,priority:1" json:"user_id"`
	Plate         string            `gorm:"type:varchar(32);not null;uniqueIndex:ux_vehicles_user_plate,priority:2" json:"plate"`
	Name          string            `gorm:"type:text" json:"name"`
	Attributes    datatypes.JSONMap `json:"attributes"`
	Eligibilities datatypes.JSON    `json:"eligibilities"`
	CreatedAt     time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null" json:"updated_at"`
}

func (Vehicle) TableName() string { return "vehicles" }

// ExplicitEligibilities decodes the flags stored on the vehicle.
func (v Vehicle) ExplicitEligibilities() ([]feedomain.Eligibility, error) {
	if len(v.Eligibilities) == 0 {
		return nil, nil
	}
	var flags []feedomain.Eligibility
	if err := json.Unmarshal(v.Eligibilities, &flags); err != nil {
		return nil, fmt.Errorf("decode eligibilities of vehicle %s: %w", v.ID, err)
	}
	return flags, nil
}
