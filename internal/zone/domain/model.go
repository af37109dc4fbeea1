package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	"gorm.io/datatypes"
)

// Zone is a parking location together with its fee schedule.
type Zone struct {
	ID                        snowflake.ID   `gorm:"primaryKey" json:"id"`
	Code                      string         `gorm:"type:varchar(128);not null;uniqueIndex" json:"code"`
	Name                      string         `gorm:"type:text;not null" json:"name"`
	TimeZone                  string         `gorm:"type:varchar(64);not null" json:"time_zone"`
	Currency                  string         `gorm:"type:varchar(8);not null" json:"currency"`
	BasicAllowanceMinutes     int64          `gorm:"not null" json:"basic_allowance_minutes"`
	BasicFee                  int64          `gorm:"not null" json:"basic_fee"`
	AdditionalIntervalMinutes int64          `gorm:"not null" json:"additional_interval_minutes"`
	AdditionalFee             int64          `gorm:"not null" json:"additional_fee"`
	DailyCapEnabled           bool           `gorm:"not null;default:false" json:"daily_cap_enabled"`
	DailyCapMaxFee            int64          `gorm:"not null;default:0" json:"daily_cap_max_fee"`
	DailyCapPolicy            string         `gorm:"type:varchar(32);not null;default:'per_session'" json:"daily_cap_policy"`
	CustomTiers               datatypes.JSON `json:"custom_tiers"`
	CreatedAt                 time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt                 time.Time      `gorm:"not null" json:"updated_at"`
}

func (Zone) TableName() string { return "zones" }

// Schedule decodes the zone's billing columns into an engine schedule.
func (z Zone) Schedule() (feedomain.FeeSchedule, error) {
	s := feedomain.FeeSchedule{
		BasicAllowanceMinutes:     z.BasicAllowanceMinutes,
		BasicFee:                  z.BasicFee,
		AdditionalIntervalMinutes: z.AdditionalIntervalMinutes,
		AdditionalFee:             z.AdditionalFee,
		DailyCap:                  feedomain.NoDailyCap(),
	}
	if z.DailyCapEnabled {
		s.DailyCap = feedomain.CapAt(z.DailyCapMaxFee, feedomain.CapPolicy(z.DailyCapPolicy))
	}
	if len(z.CustomTiers) > 0 {
		if err := json.Unmarshal(z.CustomTiers, &s.CustomTiers); err != nil {
			return feedomain.FeeSchedule{}, fmt.Errorf("decode custom tiers of zone %s: %w", z.Code, err)
		}
	}
	return s, nil
}

// Location loads the zone's IANA time zone.
func (z Zone) Location() (*time.Location, error) {
	return time.LoadLocation(z.TimeZone)
}

// ApplySchedule writes s into the zone's billing columns.
func (z *Zone) ApplySchedule(s feedomain.FeeSchedule) error {
	z.BasicAllowanceMinutes = s.BasicAllowanceMinutes
	z.BasicFee = s.BasicFee
	z.AdditionalIntervalMinutes = s.AdditionalIntervalMinutes
	z.AdditionalFee = s.AdditionalFee

	maxFee, policy, enabled := s.DailyCap.Limit()
	z.DailyCapEnabled = enabled
	z.DailyCapMaxFee = maxFee
	z.DailyCapPolicy = string(feedomain.CapPerSession)
	if enabled {
		z.DailyCapPolicy = string(policy)
	}

	z.CustomTiers = nil
	if s.HasCustomTiers() {
		raw, err := json.Marshal(s.CustomTiers)
		if err != nil {
			return err
		}
		z.CustomTiers = datatypes.JSON(raw)
	}
	return nil
}
