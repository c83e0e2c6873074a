package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/logger"
)

type recordedCall struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeRecorder) RecordBackendCall(_ context.Context, method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{method, route, status})
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/api", SkipBrowserWarning: true}, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNew_ValidatesBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrConfigMissingBaseURL)

	_, err = New(Config{BaseURL: "/api"})
	assert.ErrorIs(t, err, ErrConfigInvalidBaseURL)

	_, err = New(Config{BaseURL: "ftp://host/api"})
	assert.ErrorIs(t, err, ErrConfigInvalidBaseURL)
}

func TestClient_SendsHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		assert.Equal(t, "/api/clients", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	})

	ctx := WithToken(context.Background(), "tok-123")
	ctx, _ = logger.WithRequestID(ctx, zap.NewNop(), "req-9")
	_, err := c.ListClients(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "true", got.Get("ngrok-skip-browser-warning"))
	assert.Equal(t, "req-9", got.Get("X-Request-ID"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	})
	_, err := c.ListPapers(context.Background())
	require.NoError(t, err)
}

func TestClient_DecodesListEnvelopes(t *testing.T) {
	bodies := map[string]string{
		"bare array":    `[{"id":"1","company_name":"Sharma Traders"}]`,
		"items wrapper": `{"items":[{"id":"1","company_name":"Sharma Traders"}],"total":1}`,
		"data wrapper":  `{"data":[{"id":"1","company_name":"Sharma Traders"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			clients, err := c.ListClients(context.Background())
			require.NoError(t, err)
			require.Len(t, clients, 1)
			assert.Equal(t, "Sharma Traders", clients[0].CompanyName)
		})
	}

	t.Run("null is empty", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`null`))
		})
		clients, err := c.ListClients(context.Background())
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("object without array", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		_, err := c.ListClients(context.Background())
		assert.Error(t, err)
	})
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"detail string", 404, `{"detail":"Order not found"}`, "NOT_FOUND", "Order not found"},
		{"validation list", 422, `{"detail":[{"loc":["body","vehicle_number"],"msg":"field required"},{"loc":["body"],"msg":"bad"}]}`, "INVALID_INPUT", "vehicle_number: field required; bad"},
		{"message field", 409, `{"message":"Duplicate QR code"}`, "ALREADY_EXISTS", "Duplicate QR code"},
		{"error field", 403, `{"error":"not allowed"}`, "FORBIDDEN", "not allowed"},
		{"unauthorized", 401, `{}`, "UNAUTHORIZED", "Request failed with status 401"},
		{"html gateway page", 502, `<html>Bad gateway</html>`, "BACKEND_UNAVAILABLE", "Request failed with status 502"},
		{"server error", 500, `{"detail":"boom"}`, "BACKEND_UNAVAILABLE", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.GetOrder(context.Background(), "42")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "/api/orders/42", apiErr.Path)

			de, ok := shared.AsDomainError(ToDomainError(err))
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, de.Code)
			assert.Equal(t, tt.wantMsg, de.Message)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = c.ListOrders(context.Background(), nil)
	require.ErrorIs(t, err, ErrBackendUnreachable)
	assert.ErrorIs(t, ToDomainError(err), shared.ErrBackendUnavailable)
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListOrders(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_PostsJSONAndRecords(t *testing.T) {
	rec := &fakeRecorder{}
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))
		w.WriteHeader(http.StatusNoContent)
	}, WithRecorder(rec))

	err := c.UpdateDispatchStatus(context.Background(), "d-1", dispatch.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, "delivered", body["status"])

	require.Len(t, rec.calls, 1)
	assert.Equal(t, recordedCall{http.MethodPut, "/api/dispatch/d-1/status", http.StatusNoContent}, rec.calls[0])
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer","user":{"id":"7","name":"Ravi"}}`))
	})

	res, err := c.Login(context.Background(), "ravi", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", res.BearerToken())
	assert.Equal(t, "ravi", res.User.Username)
	assert.Equal(t, "Ravi", res.User.DisplayName())

	_, err = c.Login(context.Background(), "ravi", "wrong")
	assert.ErrorIs(t, ToDomainError(err), shared.ErrUnauthorized)
}

func TestClient_LoginWithoutToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"7"}}`))
	})
	_, err := c.Login(context.Background(), "ravi", "secret")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestClient_BarcodeHierarchyShapes(t *testing.T) {
	for name, body := range map[string]string{
		"bare":  `[{"id":"1","barcode_id":"JR-1","roll_type":"jumbo"}]`,
		"nodes": `{"nodes":[{"id":"1","barcode_id":"JR-1","roll_type":"jumbo"}]}`,
		"items": `{"items":[{"id":"1","barcode_id":"JR-1","roll_type":"jumbo"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/barcode/JR 1/hierarchy", r.URL.Path)
				_, _ = w.Write([]byte(body))
			})
			rolls, err := c.BarcodeHierarchy(context.Background(), "JR 1")
			require.NoError(t, err)
			require.Len(t, rolls, 1)
			assert.Equal(t, "JR-1", rolls[0].BarcodeID)
		})
	}
}

func TestClient_GetBinary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	data, ct, err := c.DispatchPDF(context.Background(), "d-1")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestClient_RejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/api", MaxResponseBytes: 40}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	data, _, err := c.DispatchPDF(context.Background(), "d-1")
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.ErrorIs(t, ToDomainError(err), shared.ErrBackendUnavailable)

	// exactly at the limit is fine
	c, err = New(Config{BaseURL: srv.URL + "/api", MaxResponseBytes: 100}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	data, _, err = c.DispatchPDF(context.Background(), "d-1")
	require.NoError(t, err)
	assert.Len(t, data, 100)
}

func TestClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "o1", "status":`))
	})
	_, err := c.GetOrder(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.ErrorIs(t, ToDomainError(err), shared.ErrBackendUnavailable)
}

func TestEndpoints(t *testing.T) {
	e := NewEndpoints("https://erp.example.com/api/")
	assert.Equal(t, "https://erp.example.com/api/barcode/CR%2F01/hierarchy", e.BarcodeHierarchy("CR/01"))
	assert.Equal(t, "https://erp.example.com/api/orders?client_id=9&status=created", e.Orders(map[string]string{"status": "created", "client_id": "9", "search": ""}))
	assert.Equal(t, "https://erp.example.com/api/material-in/5", e.Challan("in", "5"))
	assert.Equal(t, "https://erp.example.com/api/dispatch/wastage-inventory-items", e.WastageItems(nil))
}
