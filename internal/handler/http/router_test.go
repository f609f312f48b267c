package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guccio85/proximasuite-sub000/internal/pkg/jwt"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/metrics"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/sse"
	"github.com/guccio85/proximasuite-sub000/internal/repository/memory"
	availabilityService "github.com/guccio85/proximasuite-sub000/internal/service/availability"
	orderService "github.com/guccio85/proximasuite-sub000/internal/service/order"
	planningService "github.com/guccio85/proximasuite-sub000/internal/service/planning"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testServer struct {
	handler    http.Handler
	hub        *sse.Hub
	adminToken string
	userToken  string
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	rec, err := metrics.NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	store := memory.NewStore()
	orderRepo := memory.NewOrderRepository(store)
	recordRepo := memory.NewRecordRepository(store)
	ruleRepo := memory.NewRecurringRuleRepository(store)
	dayRepo := memory.NewGlobalDayRepository(store)

	orders := orderService.NewOrderService(memory.NewTransactor(store), orderRepo, rec)
	avail := availabilityService.NewAvailabilityService(recordRepo, ruleRepo, dayRepo)
	plan := planningService.NewPlanningService(orderRepo, recordRepo, ruleRepo, dayRepo, rec, "Test BV")

	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	admin, _, err := jwtService.GenerateAccessToken("office", true)
	require.NoError(t, err)
	user, _, err := jwtService.GenerateAccessToken("tv-screen", false)
	require.NoError(t, err)

	hub := sse.NewHub()
	router := NewRouter(
		RouterConfig{
			Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			MetricsHandler:     rec.Handler(),
		},
		jwtService,
		NewOrderHandler(orders, hub),
		NewAvailabilityHandler(avail, hub),
		NewPlanningHandler(plan, orders, hub),
		NewEventHandler(hub),
	)

	return testServer{handler: router, hub: hub, adminToken: admin, userToken: user}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (s testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	var env envelope
	if rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rr, _ := s.do(t, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/orders", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, env := s.do(t, http.MethodGet, "/api/v1/orders", s.userToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
}

func TestRouter_OrderLifecycle(t *testing.T) {
	s := newTestServer(t)

	rr, env := s.do(t, http.MethodPost, "/api/v1/orders", s.userToken, map[string]interface{}{
		"order_number":   "2024-001",
		"client":         "Van Dijk",
		"scheduled_date": "2024-01-02",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		ID    string `json:"id"`
		Tasks []struct {
			Kind string `json:"kind"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	assert.Len(t, created.Tasks, 5)

	rr, _ = s.do(t, http.MethodPost, "/api/v1/orders", s.userToken, map[string]interface{}{
		"order_number": "2024-001",
		"client":       "Someone else",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, env = s.do(t, http.MethodPatch, "/api/v1/orders/"+created.ID+"/tasks/installation", s.userToken, map[string]interface{}{
		"budget_hours": 16,
		"crew":         []string{"Jan"},
		"start_date":   "2024-01-02",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated struct {
		ScheduledEndDate *string `json:"scheduled_end_date"`
		Tasks            []struct {
			Kind    string  `json:"kind"`
			EndDate *string `json:"end_date"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.NotNil(t, updated.Tasks[4].EndDate)
	assert.Equal(t, "installation", updated.Tasks[4].Kind)
	assert.Equal(t, "2024-01-03", *updated.Tasks[4].EndDate)

	rr, _ = s.do(t, http.MethodPatch, "/api/v1/orders/"+created.ID+"/tasks/painting", s.userToken, map[string]interface{}{
		"budget_hours": 8,
	})
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusUnprocessableEntity}, rr.Code)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/orders/"+created.ID, s.userToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = s.do(t, http.MethodDelete, "/api/v1/orders/"+created.ID, s.userToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, env = s.do(t, http.MethodGet, "/api/v1/orders/"+created.ID, s.userToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRouter_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	rr, env := s.do(t, http.MethodPost, "/api/v1/orders", s.userToken, map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, env.Error.Details, "order_number")
	assert.Contains(t, env.Error.Details, "client")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.userToken)
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestRouter_ConflictsAndAbsences(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(t, http.MethodPost, "/api/v1/orders", s.userToken, map[string]interface{}{
		"order_number":   "2024-001",
		"client":         "Van Dijk",
		"scheduled_date": "2024-01-02",
	})
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rr, _ := s.do(t, http.MethodPatch, "/api/v1/orders/"+created.ID+"/tasks/installation", s.userToken, map[string]interface{}{
		"budget_hours": 16,
		"crew":         []string{"Jan"},
		"start_date":   "2024-01-02",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = s.do(t, http.MethodPost, "/api/v1/availabilities", s.userToken, map[string]interface{}{
		"worker": "Jan",
		"date":   "2024-01-03",
		"type":   "SICK_MORNING",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr, _ = s.do(t, http.MethodPost, "/api/v1/availabilities", s.userToken, map[string]interface{}{
		"worker":  "Jan",
		"date":    "2024-01-03",
		"kind":    "sick",
		"portion": "morning",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, env = s.do(t, http.MethodGet, "/api/v1/orders/"+created.ID+"/conflicts", s.userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var conflicts struct {
		Conflicts []struct {
			Worker string `json:"worker"`
			Date   string `json:"date"`
		} `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &conflicts))
	require.Len(t, conflicts.Conflicts, 1)
	assert.Equal(t, "Jan", conflicts.Conflicts[0].Worker)
	assert.Equal(t, "2024-01-03", conflicts.Conflicts[0].Date)

	rr, env = s.do(t, http.MethodGet, "/api/v1/workers/Jan/absences?date=2024-01-03", s.userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var absences struct {
		Available bool `json:"available"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &absences))
	assert.False(t, absences.Available)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/workers/Jan/schedule?from=2024-01-01&to=2024-01-07", s.userToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/conflicts", s.userToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, env = s.do(t, http.MethodGet, "/api/v1/reports/daily-absences?date=2024-01-03", s.userToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/reports/daily-absences?date=2024-01-03&format=pdf", s.userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	rr, _ = s.do(t, http.MethodGet, "/api/v1/reports/daily-absences?date=2024-01-03&format=xlsx", s.userToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRouter_AdminOnly(t *testing.T) {
	s := newTestServer(t)

	globalDay := map[string]interface{}{"kind": "holiday"}

	rr, env := s.do(t, http.MethodPut, "/api/v1/global-days/2024-12-25", s.userToken, globalDay)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rr, _ = s.do(t, http.MethodPut, "/api/v1/global-days/2024-12-25", s.adminToken, globalDay)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, _ = s.do(t, http.MethodDelete, "/api/v1/global-days/2024-12-25", s.adminToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = s.do(t, http.MethodDelete, "/api/v1/global-days/2024-12-25", s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = s.do(t, http.MethodDelete, "/api/v1/workers/Jan", s.userToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.do(t, http.MethodDelete, "/api/v1/workers/Jan", s.adminToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_MutationsPublishEvents(t *testing.T) {
	s := newTestServer(t)
	events, cleanup := s.hub.Subscribe()
	defer cleanup()

	rr, _ := s.do(t, http.MethodPost, "/api/v1/orders", s.userToken, map[string]interface{}{
		"order_number": "2024-001",
		"client":       "Van Dijk",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, _ = s.do(t, http.MethodPost, "/api/v1/availabilities", s.userToken, map[string]interface{}{
		"worker": "Jan",
		"date":   "2024-01-03",
		"kind":   "vacation",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	require.Len(t, events, 2)
	assert.Equal(t, sse.EventOrderChanged, (<-events).Event)
	assert.Equal(t, sse.EventAvailabilityChanged, (<-events).Event)
}

func TestEventHandler_Stream(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/events?token=" + s.userToken)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewReader(resp.Body)
	readEvent := func() string {
		for {
			line, err := lines.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	assert.Equal(t, "connected", readEvent())
	s.hub.Publish(sse.Event{Event: sse.EventOrderDeleted, Data: map[string]string{"order_id": "o1"}})
	assert.Equal(t, sse.EventOrderDeleted, readEvent())
}

func TestEventHandler_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
