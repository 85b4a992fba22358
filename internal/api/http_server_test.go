package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carserve/internal/config"
	"carserve/internal/database"
	"carserve/internal/models"
	"carserve/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	db      *database.DB
	server  *HTTPServer
	service *models.Service
	slot    *models.ServiceSlot
	booking *models.Booking
}

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		Enabled: true,
		Port:    0,
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: "test-key", Extra: "test-extra", Name: "tests"},
			},
		},
		RateLimit: config.APIRateLimitConfig{RPS: 100, Burst: 100},
	}
}

func setupAPI(t *testing.T, cfg config.APIConfig) *apiFixture {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	customer := &models.Account{Email: "rider@example.com", FullName: "Rider", Phone: "+880170"}
	require.NoError(t, db.CreateCustomer(ctx, customer, &models.CustomerProfile{City: "Dhaka"}))

	dealer := &models.Account{Email: "garage@example.com", FullName: "Garage", Phone: "+880171"}
	require.NoError(t, db.CreateDealer(ctx, dealer, &models.DealerProfile{BusinessName: "Garage", BusinessType: "garage", City: "Dhaka"}))
	require.NoError(t, db.SetDealerApproved(ctx, dealer.ID, true))

	require.NoError(t, db.SeedCategories(ctx, []models.ServiceCategory{
		{Name: "Oil Change", DurationMin: 45, IsActive: true},
	}))
	category, err := db.GetCategoryByName(ctx, "Oil Change")
	require.NoError(t, err)

	svc := &models.Service{
		DealerID: dealer.ID, CategoryID: category.ID, Name: "Full Synthetic Oil Change",
		BasePrice: 250000, DurationMin: 45, AdvanceBookingHours: 2, LocationKind: "workshop",
	}
	require.NoError(t, db.CreateService(ctx, svc))

	vehicle := &models.Vehicle{OwnerID: customer.ID, Make: "Toyota", Model: "Axio", Year: 2019, LicensePlate: "DHA-1234"}
	require.NoError(t, db.CreateVehicle(ctx, vehicle))

	date := time.Now().AddDate(0, 0, 2)
	tpl := &models.SlotTemplate{
		ServiceID: svc.ID, Weekday: date.Weekday(),
		StartTime: "09:00", EndTime: "10:00", Capacity: 2,
	}
	require.NoError(t, db.CreateSlotTemplate(ctx, tpl))
	_, err = db.GenerateSlots(ctx, svc.ID, 7, time.Now())
	require.NoError(t, err)

	slots, err := db.ListSlotsByServiceDate(ctx, svc.ID, date)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	slot := slots[0]

	booking := &models.Booking{
		Number: "CS2608260042", CustomerID: customer.ID, SlotID: slot.ID,
		ServiceID: svc.ID, DealerID: dealer.ID, VehicleID: vehicle.ID,
		ServiceAmount: 250000, Total: 250000, PlatformFee: 37500, DealerAmount: 212500,
		Location: "workshop", ScheduledAt: slot.Date.Add(9 * time.Hour),
		Deadline: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, db.CreateBookingClaimingSlot(ctx, booking))

	catalog := service.NewCatalogService(db, &logger)
	bookings := service.NewBookingService(db, nil, nil, config.BookingConfig{}, config.LoyaltyConfig{}, &logger)
	server := NewHTTPServer(cfg, catalog, bookings, &logger)

	return &apiFixture{db: db, server: server, service: svc, slot: slot, booking: booking}
}

func (f *apiFixture) get(t *testing.T, path string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authed {
		req.Header.Set("x-api-key", "test-key")
		req.Header.Set("x-api-extra", "test-extra")
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthSkipsAuth(t *testing.T) {
	f := setupAPI(t, testAPIConfig())

	rec := f.get(t, "/healthz", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejectsMissingHeaders(t *testing.T) {
	f := setupAPI(t, testAPIConfig())

	rec := f.get(t, "/api/v1/categories", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsWrongExtra(t *testing.T) {
	f := setupAPI(t, testAPIConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("x-api-key", "test-key")
	req.Header.Set("x-api-extra", "guessed")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListCategories(t *testing.T) {
	f := setupAPI(t, testAPIConfig())

	rec := f.get(t, "/api/v1/categories", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []*models.ServiceCategory
	require.NoError(t, json.Unmarshal(decodeBody(t, rec)["categories"], &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "Oil Change", categories[0].Name)
}

func TestListServicesByCategory(t *testing.T) {
	f := setupAPI(t, testAPIConfig())

	rec := f.get(t, fmt.Sprintf("/api/v1/services?category_id=%d", f.service.CategoryID), true)
	require.Equal(t, http.StatusOK, rec.Code)

	var services []*models.Service
	require.NoError(t, json.Unmarshal(decodeBody(t, rec)["services"], &services))
	require.Len(t, services, 1)
	assert.Equal(t, f.service.ID, services[0].ID)

	rec = f.get(t, "/api/v1/services", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSlots(t *testing.T) {
	f := setupAPI(t, testAPIConfig())

	path := fmt.Sprintf("/api/v1/slots/%d?date=%s", f.service.ID, f.slot.Date.Format("2006-01-02"))
	rec := f.get(t, path, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var slots []*models.ServiceSlot
	require.NoError(t, json.Unmarshal(decodeBody(t, rec)["slots"], &slots))
	require.Len(t, slots, 1)
	assert.Equal(t, "09:00", slots[0].StartTime)
	// One unit was claimed by the fixture booking.
	assert.Equal(t, int64(1), slots[0].AvailableCapacity)

	rec = f.get(t, fmt.Sprintf("/api/v1/slots/%d?date=today", f.service.ID), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get(t, fmt.Sprintf("/api/v1/slots/%d", f.service.ID), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailability(t *testing.T) {
	f := setupAPI(t, testAPIConfig())

	rec := f.get(t, fmt.Sprintf("/api/v1/availability/%d?days=7", f.service.ID), true)
	require.Equal(t, http.StatusOK, rec.Code)

	var availability []*models.Availability
	require.NoError(t, json.Unmarshal(decodeBody(t, rec)["availability"], &availability))
	require.Len(t, availability, 7, "one entry per day in the window")

	slotDay := f.slot.Date.Format("2006-01-02")
	var found bool
	for _, day := range availability {
		if day.Date.Format("2006-01-02") == slotDay {
			found = true
			assert.Equal(t, int64(2), day.Total)
			assert.Equal(t, int64(1), day.Available, "fixture booking claimed one unit")
		} else {
			assert.Zero(t, day.SlotCount)
		}
	}
	assert.True(t, found)

	rec = f.get(t, fmt.Sprintf("/api/v1/availability/%d?days=31", f.service.ID), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get(t, "/api/v1/availability/abc", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingLookup(t *testing.T) {
	f := setupAPI(t, testAPIConfig())

	rec := f.get(t, "/api/v1/bookings/"+f.booking.Number, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var booking models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, f.booking.ID, booking.ID)
	assert.Equal(t, models.BookingPending, booking.Status)

	rec = f.get(t, "/api/v1/bookings/CS0000000000", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.get(t, "/api/v1/bookings/", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPerClientRateLimit(t *testing.T) {
	cfg := testAPIConfig()
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 1}
	f := setupAPI(t, cfg)

	first := f.get(t, "/api/v1/categories", true)
	require.Equal(t, http.StatusOK, first.Code)

	second := f.get(t, "/api/v1/categories", true)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
