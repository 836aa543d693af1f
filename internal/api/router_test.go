package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crew-assignment-service/internal/adapters/cache"
	"crew-assignment-service/internal/adapters/repositories"
	"crew-assignment-service/internal/api/dto"
	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/metrics"
	"crew-assignment-service/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	require.NoError(t, store.UpsertCrew(ctx, &domain.Crew{
		ID: "crew-a", HomeBase: domain.NewGeoPoint(39.7817, -89.6501), DailyCapacityMinutes: 480, Equipment: []string{"mower"},
	}))
	require.NoError(t, store.UpsertCrew(ctx, &domain.Crew{
		ID: "crew-b", HomeBase: domain.NewGeoPoint(39.7010, -89.6440), DailyCapacityMinutes: 480,
	}))
	require.NoError(t, store.UpsertJobRequest(ctx, &domain.JobRequest{
		ID:                "job-1",
		Location:          domain.NewGeoPoint(39.7684, -89.6812),
		LaborHighMinutes:  domain.Some(90),
		CrewSizeMin:       1,
		PriceHighCents:    domain.Some[int64](15000),
		RequiredEquipment: []string{"mower"},
	}))

	estimator := services.NewTravelCostEstimator(cache.NewMemoryTravelCache(), nil, 0)
	sim := services.NewSimulator(store, store, store, estimator, domain.DefaultCostModel(), 2)
	orch := services.NewDecisionOrchestrator(store, store, store, services.ApprovalConfig{})

	srv := httptest.NewServer(NewRouter(Deps{Simulations: sim, Decisions: orch, Estimator: estimator}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, actor *domain.Actor) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	if actor != nil {
		req.Header.Set("X-Actor-ID", actor.ID)
		req.Header.Set("X-Actor-Role", string(actor.Role))
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = do(t, srv, http.MethodPost, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RegisterDefault()
	srv := newTestServer(t)

	do(t, srv, http.MethodGet, "/health", "", nil)
	resp := do(t, srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "http_requests_total")
}

func TestSimulationsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/job-requests/job-1/simulations", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	empty := decode[dto.ListSimulationsResponse](t, resp)
	assert.Empty(t, empty.Simulations)

	resp = do(t, srv, http.MethodPost, "/job-requests/job-1/simulations", `{"proposed_date":"2026-11-03"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ran := decode[dto.ListSimulationsResponse](t, resp)
	require.Len(t, ran.Simulations, 2)
	assert.Equal(t, "crew-a", ran.Simulations[0].CrewID)
	assert.Equal(t, "2026-11-03", ran.Simulations[0].ProposedDate)
	assert.Equal(t, "haversine", ran.Simulations[0].Explanation.TravelSource)
	assert.Contains(t, ran.Simulations[1].Explanation.RiskFlags, "missing_equipment:mower")

	resp = do(t, srv, http.MethodPost, "/job-requests/job-1/simulations", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/job-requests/job-missing/simulations", `{}`, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/job-requests/job-1/simulations", `{"proposed_date":"11/03/2026"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/job-requests/job-1/simulations", `{"crews":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDecisionEndpoints(t *testing.T) {
	srv := newTestServer(t)
	owner := &domain.Actor{ID: "u-owner", Role: domain.RoleOwner}
	lead := &domain.Actor{ID: "u-lead", Role: domain.RoleCrewLead}
	staff := &domain.Actor{ID: "u-staff", Role: domain.RoleStaff}

	resp := do(t, srv, http.MethodPost, "/job-requests/job-1/simulations", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sims := decode[dto.ListSimulationsResponse](t, resp)
	body := `{"simulation_id":"` + sims.Simulations[0].ID + `"}`

	resp = do(t, srv, http.MethodPost, "/job-requests/job-1/decisions", body, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/job-requests/job-1/decisions", body, &domain.Actor{ID: "x", Role: "intern"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/job-requests/job-1/decisions", body, staff)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	forbidden := decode[map[string]string](t, resp)
	assert.Equal(t, "forbidden", forbidden["code"])

	resp = do(t, srv, http.MethodPost, "/job-requests/job-1/decisions", `{}`, lead)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/job-requests/job-1/decisions", body, lead)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.DecisionResponse](t, resp)
	assert.Equal(t, "draft", created.Status)

	resp = do(t, srv, http.MethodPost, "/job-requests/job-1/decisions", body, owner)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", decode[map[string]string](t, resp)["code"])

	resp = do(t, srv, http.MethodPost, "/decisions/"+created.ID+"/approve", "", lead)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/decisions/"+created.ID+"/approve", "", owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decode[dto.DecisionResponse](t, resp)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "u-owner", approved.ApprovedBy)

	resp = do(t, srv, http.MethodPost, "/decisions/"+created.ID+"/reject", `{"reason":"late"}`, owner)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_state", decode[map[string]string](t, resp)["code"])

	resp = do(t, srv, http.MethodGet, "/decisions/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/decisions/dec_missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/job-requests/job-1/decisions", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.ListDecisionsResponse](t, resp).Decisions, 1)
}

func TestTravelEstimateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/travel-estimates",
		`{"origin":{"lat":0,"lng":0},"destination":{"lat":0,"lng":1}}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	est := decode[dto.TravelEstimateResponse](t, resp)
	assert.Equal(t, 138, est.Minutes)
	assert.Equal(t, "haversine", est.Source)

	resp = do(t, srv, http.MethodPost, "/travel-estimates",
		`{"origin":{"lat":null,"lng":0},"destination":{"lat":0,"lng":1}}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/travel-estimates",
		`{"origin":{"lat":91,"lng":0},"destination":{"lat":0,"lng":1}}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
