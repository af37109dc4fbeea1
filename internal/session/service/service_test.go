package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/parkwise/internal/clock"
	"github.com/railzwaylabs/parkwise/internal/config"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	"github.com/railzwaylabs/parkwise/internal/fee/engine"
	feeservice "github.com/railzwaylabs/parkwise/internal/fee/service"
	sessiondomain "github.com/railzwaylabs/parkwise/internal/session/domain"
	"github.com/railzwaylabs/parkwise/internal/session/repository"
	vehicledomain "github.com/railzwaylabs/parkwise/internal/vehicle/domain"
	zonedomain "github.com/railzwaylabs/parkwise/internal/zone/domain"
	zonerepository "github.com/railzwaylabs/parkwise/internal/zone/repository"
	zoneservice "github.com/railzwaylabs/parkwise/internal/zone/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type vehicleServiceMock struct {
	mock.Mock
}

func (m *vehicleServiceMock) Register(ctx context.Context, req vehicledomain.RegisterRequest) (*vehicledomain.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*vehicledomain.Response)
	return resp, args.Error(1)
}

func (m *vehicleServiceMock) Get(ctx context.Context, id snowflake.ID) (*vehicledomain.Response, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*vehicledomain.Response)
	return resp, args.Error(1)
}

func (m *vehicleServiceMock) ListByUser(ctx context.Context, userID string) ([]vehicledomain.Response, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).([]vehicledomain.Response)
	return resp, args.Error(1)
}

func (m *vehicleServiceMock) Eligibilities(ctx context.Context, id snowflake.ID) (feedomain.EligibilitySet, error) {
	args := m.Called(ctx, id)
	set, _ := args.Get(0).(feedomain.EligibilitySet)
	return set, args.Error(1)
}

const (
	ownerID   = "user-1"
	vehicleID = snowflake.ID(1001)
)

var sessionStart = time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC) // 23:00 in Tokyo

type fixture struct {
	svc      sessiondomain.Service
	db       *gorm.DB
	vehicles *vehicleServiceMock
	spans    *tracetest.SpanRecorder
}

func setup(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&zonedomain.Zone{}, &sessiondomain.Session{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	policy, err := feedomain.NewDiscountPolicy(map[feedomain.Eligibility]float64{
		feedomain.EligibilityCompact: 0.2,
	}, feedomain.CombineMax)
	require.NoError(t, err)
	fee := feeservice.NewService(feeservice.ServiceParam{Log: zap.NewNop(), Engine: engine.New(policy)})

	zones := zoneservice.NewService(zoneservice.ServiceParam{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   zonerepository.Provide(),
		Fee:    fee,
		Config: config.Config{},
	})
	_, err = zones.Create(context.Background(), zonedomain.CreateRequest{
		Name:     "Tokyo Lot",
		Code:     "tokyo-lot",
		TimeZone: "Asia/Tokyo",
		Schedule: feedomain.FeeSchedule{
			BasicAllowanceMinutes:     60,
			BasicFee:                  300,
			AdditionalIntervalMinutes: 30,
			AdditionalFee:             200,
			DailyCap:                  feedomain.CapAt(500, feedomain.CapPerCalendarDay),
		},
	})
	require.NoError(t, err)

	vehicles := &vehicleServiceMock{}
	vehicles.On("Get", mock.Anything, vehicleID).Return(&vehicledomain.Response{ID: vehicleID.String(), UserID: ownerID}, nil).Maybe()
	vehicles.On("Eligibilities", mock.Anything, vehicleID).Return(feedomain.NewEligibilitySet(feedomain.EligibilityCompact), nil).Maybe()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	svc := NewService(ServiceParam{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.Fixed(sessionStart),
		Repo:     repository.Provide(),
		Fee:      fee,
		Zones:    zones,
		Vehicles: vehicles,
		Tracer:   tp,
	})
	return fixture{svc: svc, db: db, vehicles: vehicles, spans: spans}
}

func (f fixture) start(t *testing.T) *sessiondomain.Response {
	t.Helper()
	resp, err := f.svc.Start(context.Background(), sessiondomain.StartRequest{
		UserID:    ownerID,
		VehicleID: vehicleID,
		ZoneCode:  "tokyo-lot",
	})
	require.NoError(t, err)
	return resp
}

func parseID(t *testing.T, id string) snowflake.ID {
	t.Helper()
	parsed, err := snowflake.ParseString(id)
	require.NoError(t, err)
	return parsed
}

func TestStartAllowsOneActiveSessionPerUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	started := f.start(t)
	assert.True(t, sessionStart.Equal(started.StartedAt))
	assert.Nil(t, started.EndedAt)

	active, err := f.svc.Active(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, started.ID, active.ID)

	_, err = f.svc.Start(ctx, sessiondomain.StartRequest{UserID: ownerID, VehicleID: vehicleID, ZoneCode: "tokyo-lot"})
	assert.ErrorIs(t, err, sessiondomain.ErrActiveSessionExists)

	_, err = f.svc.Active(ctx, "user-2")
	assert.ErrorIs(t, err, sessiondomain.ErrNotFound)
}

func TestStartRejectsForeignVehicleAndUnknownZone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, sessiondomain.StartRequest{UserID: "intruder", VehicleID: vehicleID, ZoneCode: "tokyo-lot"})
	// Someone else's vehicle reads as missing.
	assert.ErrorIs(t, err, vehicledomain.ErrNotFound)

	_, err = f.svc.Start(ctx, sessiondomain.StartRequest{UserID: ownerID, VehicleID: vehicleID, ZoneCode: "nowhere"})
	assert.ErrorIs(t, err, zonedomain.ErrNotFound)

	_, err = f.svc.Start(ctx, sessiondomain.StartRequest{VehicleID: vehicleID, ZoneCode: "tokyo-lot"})
	assert.ErrorIs(t, err, sessiondomain.ErrInvalidUser)
}

func TestQuoteUsesZoneTimeZoneForDailyCap(t *testing.T) {
	f := setup(t)
	started := f.start(t)
	id := parseID(t, started.ID)

	// 23:00 to 01:00 Tokyo time touches two calendar days there, one in UTC.
	ctx := clock.WithTime(context.Background(), sessionStart.Add(2*time.Hour))
	resp, err := f.svc.Quote(ctx, ownerID, id, nil)
	require.NoError(t, err)

	assert.False(t, resp.Final)
	assert.Equal(t, "JPY", resp.Currency)
	assert.EqualValues(t, 120, resp.Quote.Minutes)
	assert.EqualValues(t, 700, resp.Quote.RawFee)
	assert.EqualValues(t, 2, resp.Quote.DaysSpanned)
	assert.EqualValues(t, 700, resp.Quote.CappedFee)
	assert.Equal(t, "700", resp.Quote.Result.Original.String())
	assert.Equal(t, "560", resp.Quote.Result.Discounted.String())
	assert.True(t, resp.Quote.Result.HasDiscount)
	assert.Equal(t, "Asia/Tokyo", resp.Quote.Start.Location().String())

	_, err = f.svc.Quote(ctx, "user-2", id, nil)
	assert.ErrorIs(t, err, sessiondomain.ErrNotFound)

	before := sessionStart.Add(-time.Minute)
	_, err = f.svc.Quote(ctx, ownerID, id, &before)
	assert.ErrorIs(t, err, feedomain.ErrInvalidInterval)
}

func TestEndPersistsFee(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	started := f.start(t)
	id := parseID(t, started.ID)

	endAt := sessionStart.Add(45 * time.Minute)
	resp, err := f.svc.End(ctx, ownerID, id, &endAt)
	require.NoError(t, err)
	assert.True(t, resp.Final)
	assert.Equal(t, "300", resp.Quote.Result.Original.String())
	assert.Equal(t, "240", resp.Quote.Result.Discounted.String())

	var stored sessiondomain.Session
	require.NoError(t, f.db.First(&stored, "id = ?", id).Error)
	require.NotNil(t, stored.EndedAt)
	assert.True(t, endAt.Equal(*stored.EndedAt))
	require.True(t, stored.OriginalFee.Valid)
	assert.Equal(t, "300", stored.OriginalFee.Decimal.String())
	assert.Equal(t, "240", stored.DiscountedFee.Decimal.String())
	assert.True(t, stored.HasDiscount)

	_, err = f.svc.Active(ctx, ownerID)
	assert.ErrorIs(t, err, sessiondomain.ErrNotFound)

	_, err = f.svc.End(ctx, ownerID, id, nil)
	assert.ErrorIs(t, err, sessiondomain.ErrAlreadyEnded)

	// Ended sessions are always priced at their end time.
	later := endAt.Add(10 * time.Hour)
	again, err := f.svc.Quote(ctx, ownerID, id, &later)
	require.NoError(t, err)
	assert.True(t, again.Final)
	assert.EqualValues(t, 45, again.Quote.Minutes)

	// A new session may start once the previous one ended.
	f.start(t)
}

func TestEndBeforeStartKeepsSessionActive(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	started := f.start(t)

	before := sessionStart.Add(-time.Hour)
	_, err := f.svc.End(ctx, ownerID, parseID(t, started.ID), &before)
	assert.ErrorIs(t, err, feedomain.ErrInvalidInterval)

	active, err := f.svc.Active(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, started.ID, active.ID)

	f.vehicles.AssertCalled(t, "Eligibilities", mock.Anything, vehicleID)
}

func TestEndRecordsSpan(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	started := f.start(t)
	id := parseID(t, started.ID)

	endAt := sessionStart.Add(30 * time.Minute)
	_, err := f.svc.End(ctx, ownerID, id, &endAt)
	require.NoError(t, err)
	_, err = f.svc.End(ctx, ownerID, id, &endAt)
	require.ErrorIs(t, err, sessiondomain.ErrAlreadyEnded)

	var ends []sdktrace.ReadOnlySpan
	for _, span := range f.spans.Ended() {
		if span.Name() == "session.End" {
			ends = append(ends, span)
		}
	}
	require.Len(t, ends, 2)
	assert.Equal(t, codes.Unset, ends[0].Status().Code)
	assert.Equal(t, codes.Error, ends[1].Status().Code)
	assert.Equal(t, sessiondomain.ErrAlreadyEnded.Error(), ends[1].Status().Description)
}
