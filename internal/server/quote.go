package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
)

type createQuoteRequest struct {
	Start         time.Time               `json:"start"`
	End           time.Time               `json:"end"`
	ZoneCode      string                  `json:"zone_code"`
	TimeZone      string                  `json:"time_zone"`
	Schedule      *feedomain.FeeSchedule  `json:"schedule"`
	Eligibilities []feedomain.Eligibility `json:"eligibilities"`
}

type quoteResponse struct {
	ZoneCode string          `json:"zone_code,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Quote    feedomain.Quote `json:"quote"`
}

// CreateQuote prices an arbitrary interval without touching any session,
// either against a stored zone or an inline schedule.
func (s *Server) CreateQuote(c *gin.Context) {
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Start.IsZero() || req.End.IsZero() {
		AbortWithError(c, newValidationError("start", "missing_interval", "start and end are required"))
		return
	}

	zoneCode := strings.TrimSpace(req.ZoneCode)
	if (zoneCode == "") == (req.Schedule == nil) {
		AbortWithError(c, newValidationError("schedule", "schedule_source", "exactly one of zone_code or schedule is required"))
		return
	}

	ctx := c.Request.Context()
	quoteReq := feedomain.QuoteRequest{
		Start:         req.Start,
		End:           req.End,
		Eligibilities: req.Eligibilities,
	}
	resp := quoteResponse{}

	if zoneCode != "" {
		zone, err := s.zoneSvc.Resolve(ctx, zoneCode)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		schedule, err := zone.Schedule()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		loc, err := zone.Location()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		quoteReq.Schedule = schedule
		quoteReq.Location = loc
		resp.ZoneCode = zone.Code
		resp.Currency = zone.Currency
	} else {
		quoteReq.Schedule = *req.Schedule
		if tz := strings.TrimSpace(req.TimeZone); tz != "" {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				AbortWithError(c, newValidationError("time_zone", "invalid_time_zone", "unknown time zone "+tz))
				return
			}
			quoteReq.Location = loc
		}
	}

	quote, err := s.feeSvc.Quote(ctx, quoteReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	resp.Quote = quote

	respondData(c, resp)
}
