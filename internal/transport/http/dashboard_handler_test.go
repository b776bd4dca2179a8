package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shippulse/internal/dataprocessing"
	apierrors "shippulse/internal/errors"
	"shippulse/internal/services"
	"shippulse/internal/shared/testutil"
	"shippulse/pkg/contracts/domain"
)

// stubDataService implements DataServiceInterface with canned responses.
type stubDataService struct {
	orders     []domain.Order
	kpis       *dataprocessing.KPIReport
	metrics    []dataprocessing.GroupMetric
	trend      []dataprocessing.TrendPoint
	options    *dataprocessing.FilterOptions
	path       string
	stats      *dataprocessing.PrepareStats
	err        error
	lastFilter domain.Filter
	lastColumn string
}

func (s *stubDataService) SaveUpload(_ context.Context, filename string, _ io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "/tmp/" + filename, nil
}

func (s *stubDataService) ProcessUpload(_ context.Context, _ string) (*dataprocessing.PrepareStats, error) {
	return s.stats, s.err
}

func (s *stubDataService) Orders(_ context.Context, f domain.Filter) ([]domain.Order, error) {
	s.lastFilter = f
	return s.orders, s.err
}

func (s *stubDataService) KPIs(_ context.Context, f domain.Filter) (*dataprocessing.KPIReport, error) {
	s.lastFilter = f
	return s.kpis, s.err
}

func (s *stubDataService) DelayRate(_ context.Context, f domain.Filter, column string) ([]dataprocessing.GroupMetric, error) {
	s.lastFilter, s.lastColumn = f, column
	return s.metrics, s.err
}

func (s *stubDataService) AvgDelay(_ context.Context, f domain.Filter, column string) ([]dataprocessing.GroupMetric, error) {
	s.lastFilter, s.lastColumn = f, column
	return s.metrics, s.err
}

func (s *stubDataService) Trend(_ context.Context, f domain.Filter) ([]dataprocessing.TrendPoint, error) {
	s.lastFilter = f
	return s.trend, s.err
}

func (s *stubDataService) FilterOptions(_ context.Context) (*dataprocessing.FilterOptions, error) {
	return s.options, s.err
}

func (s *stubDataService) ProcessedFilePath(_ context.Context) (string, error) {
	return s.path, s.err
}

func newDashboardHandler(t *testing.T, svc DataServiceInterface) *DashboardHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewDashboardHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
}

func TestDashboardHandler_GetKPIs(t *testing.T) {
	rate := 95.5
	svc := &stubDataService{kpis: &dataprocessing.KPIReport{TotalOrders: 10, OnTimeRatePct: &rate}}
	h := newDashboardHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/kpis?courier=FastShip&from=2024-01-01", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body dataprocessing.KPIReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 10, body.TotalOrders)
	require.NotNil(t, body.OnTimeRatePct)
	assert.Equal(t, 95.5, *body.OnTimeRatePct)

	assert.Equal(t, "FastShip", svc.lastFilter.Courier)
	require.NotNil(t, svc.lastFilter.From)
}

func TestDashboardHandler_InvalidDateParam(t *testing.T) {
	h := newDashboardHandler(t, &stubDataService{})

	req := httptest.NewRequest(http.MethodGet, "/kpis?from=01/05/2024", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestDashboardHandler_GetDelayRate(t *testing.T) {
	svc := &stubDataService{metrics: []dataprocessing.GroupMetric{
		{Group: "North", Value: 25, Orders: 4},
	}}
	h := newDashboardHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/delay-rate?by=Region", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Region", svc.lastColumn)

	var body struct {
		By      string                       `json:"by"`
		Metrics []dataprocessing.GroupMetric `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Region", body.By)
	require.Len(t, body.Metrics, 1)
	assert.Equal(t, "North", body.Metrics[0].Group)
}

func TestDashboardHandler_DelayRateDefaultsToCourier(t *testing.T) {
	svc := &stubDataService{}
	h := newDashboardHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/delay-rate", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ColumnCourier, svc.lastColumn)
}

func TestDashboardHandler_InvalidGroupColumn(t *testing.T) {
	h := newDashboardHandler(t, &stubDataService{})

	req := httptest.NewRequest(http.MethodGet, "/avg-delay?by=OrderID", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandler_NoDataset(t *testing.T) {
	h := newDashboardHandler(t, &stubDataService{err: services.ErrNoDataset})

	for _, path := range []string{"/kpis", "/delay-rate", "/avg-delay", "/trend", "/filters"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code, path)

		var problem map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, float64(http.StatusNotFound), problem["status"])
	}
}

func TestDashboardHandler_GetTrend(t *testing.T) {
	rate := 100.0
	svc := &stubDataService{trend: []dataprocessing.TrendPoint{
		{Month: "2024-01", Orders: 3, OnTimeRatePct: &rate},
	}}
	h := newDashboardHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/trend", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Months []dataprocessing.TrendPoint `json:"months"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Months, 1)
	assert.Equal(t, "2024-01", body.Months[0].Month)
}

func TestDashboardHandler_GetFilters(t *testing.T) {
	svc := &stubDataService{options: &dataprocessing.FilterOptions{
		Couriers: []string{"FastShip"},
		Regions:  []string{"North"},
	}}
	h := newDashboardHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/filters", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body dataprocessing.FilterOptions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"FastShip"}, body.Couriers)
}
