package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shippulse/internal/dataprocessing"
	apierrors "shippulse/internal/errors"
	"shippulse/internal/services"
	"shippulse/internal/shared/testutil"
	"shippulse/pkg/contracts/domain"
)

func newOrdersHandler(t *testing.T, svc DataServiceInterface) *OrdersHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewOrdersHandler(svc, logger, apierrors.NewErrorHandler(logger, false), 1<<20)
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestOrdersHandler_Upload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &stubDataService{stats: &dataprocessing.PrepareStats{Rows: 5, Warnings: 1}}
		h := newOrdersHandler(t, svc)

		body, contentType := multipartUpload(t, "file", "orders.csv", "OrderID\nO1\n")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp UploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "orders.csv", resp.Filename)
		assert.Equal(t, 5, resp.Rows)
		assert.Equal(t, 1, resp.Warnings)
	})

	t.Run("missing file field", func(t *testing.T) {
		h := newOrdersHandler(t, &stubDataService{})

		body, contentType := multipartUpload(t, "wrong", "orders.csv", "data")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		h := newOrdersHandler(t, &stubDataService{})

		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("plain"))
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported file type", func(t *testing.T) {
		h := newOrdersHandler(t, &stubDataService{err: services.ErrInvalidFileType})

		body, contentType := multipartUpload(t, "file", "orders.txt", "data")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("schema error surfaces as unprocessable entity", func(t *testing.T) {
		svc := &schemaFailService{}
		h := newOrdersHandler(t, svc)

		body, contentType := multipartUpload(t, "file", "orders.csv", "OrderID\nO1\n")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var problem map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Contains(t, problem, "missing_columns")
	})
}

// schemaFailService fails ProcessUpload with a schema error.
type schemaFailService struct {
	stubDataService
}

func (s *schemaFailService) ProcessUpload(_ context.Context, _ string) (*dataprocessing.PrepareStats, error) {
	return nil, apierrors.NewSchemaError([]string{"OrderValue", "Courier"})
}

func TestOrdersHandler_ListOrders(t *testing.T) {
	svc := &stubDataService{orders: []domain.Order{{OrderID: "O1"}, {OrderID: "O2"}}}
	h := newOrdersHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/?region=North", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "North", svc.lastFilter.Region)

	var body struct {
		Count  int            `json:"count"`
		Total  int            `json:"total"`
		Orders []domain.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Orders, 2)
}

func TestOrdersHandler_ListOrders_Limit(t *testing.T) {
	manyOrders := make([]domain.Order, 25)
	for i := range manyOrders {
		manyOrders[i] = domain.Order{OrderID: "O" + string(rune('A'+i))}
	}

	listOrders := func(t *testing.T, target string) (*httptest.ResponseRecorder, struct {
		Count  int            `json:"count"`
		Total  int            `json:"total"`
		Orders []domain.Order `json:"orders"`
	}) {
		t.Helper()
		h := newOrdersHandler(t, &stubDataService{orders: manyOrders})
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		var body struct {
			Count  int            `json:"count"`
			Total  int            `json:"total"`
			Orders []domain.Order `json:"orders"`
		}
		if rec.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		}
		return rec, body
	}

	t.Run("defaults to a 20 row preview", func(t *testing.T) {
		rec, body := listOrders(t, "/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 20, body.Count)
		assert.Equal(t, 25, body.Total)
		require.Len(t, body.Orders, 20)
		assert.Equal(t, "OA", body.Orders[0].OrderID, "preview keeps row order")
	})

	t.Run("explicit limit", func(t *testing.T) {
		rec, body := listOrders(t, "/?limit=5")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, body.Count)
		assert.Equal(t, 25, body.Total)
	})

	t.Run("limit zero returns every row", func(t *testing.T) {
		rec, body := listOrders(t, "/?limit=0")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 25, body.Count)
		require.Len(t, body.Orders, 25)
	})

	t.Run("limit above row count is a no-op", func(t *testing.T) {
		rec, body := listOrders(t, "/?limit=100")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 25, body.Count)
	})

	t.Run("rejects non-numeric limit", func(t *testing.T) {
		rec, _ := listOrders(t, "/?limit=abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects negative limit", func(t *testing.T) {
		rec, _ := listOrders(t, "/?limit=-1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOrdersHandler_Download(t *testing.T) {
	t.Run("streams processed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processed_orders.csv")
		require.NoError(t, os.WriteFile(path, []byte("OrderID\nO1\n"), 0644))

		h := newOrdersHandler(t, &stubDataService{path: path})

		req := httptest.NewRequest(http.MethodGet, "/download", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "processed_orders.csv")
		assert.Contains(t, rec.Body.String(), "O1")
	})

	t.Run("no dataset", func(t *testing.T) {
		h := newOrdersHandler(t, &stubDataService{err: services.ErrNoDataset})

		req := httptest.NewRequest(http.MethodGet, "/download", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
