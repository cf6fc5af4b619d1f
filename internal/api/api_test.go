package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct{}

func (fakeAuth) Authenticate(_ context.Context, email, password string) (domain.Session, error) {
	switch {
	case email == "admin@x.io" && password == "pw":
		return domain.Session{UserID: "1", Email: email, Role: domain.RoleAdmin}, nil
	case email == "client@x.io" && password == "pw":
		return domain.Session{UserID: "2", Email: email, Role: domain.RoleClient, AssignedStores: []string{"Glyfada"}}, nil
	case email == "down@x.io":
		return domain.Session{}, errors.New("connection refused")
	}
	return domain.Session{}, service.ErrInvalidCredentials
}

type fakeLinks struct{ created []string }

func (f *fakeLinks) List(context.Context) ([]domain.Link, error) {
	return []domain.Link{{ID: "a", Name: "Actual", URL: "https://x/a.csv"}}, nil
}

func (f *fakeLinks) Create(_ context.Context, name, rawURL string) (*domain.Link, error) {
	if name == "" {
		return nil, service.ErrInvalidInput
	}
	f.created = append(f.created, name)
	return &domain.Link{ID: "new", Name: name, URL: rawURL}, nil
}

func (f *fakeLinks) Update(_ context.Context, id, name, rawURL string) (*domain.Link, error) {
	return nil, service.ErrNotFound
}

func (f *fakeLinks) Delete(context.Context, string) error { return nil }

type fakeDashboard struct{ last service.DashboardQuery }

func (f *fakeDashboard) View(_ context.Context, q service.DashboardQuery) (*service.DashboardView, error) {
	f.last = q
	return &service.DashboardView{Source: q.LinkID, Records: []domain.Record{}}, nil
}

func (f *fakeDashboard) Options(_ context.Context, s domain.Session, linkID string) (domain.Options, string, error) {
	return domain.Options{Stores: s.AssignedStores}, "", nil
}

type fakeFinancial struct {
	err  error
	last service.ComparisonQuery
}

func (f *fakeFinancial) ActualBudget(_ context.Context, q service.ComparisonQuery) (domain.Comparison, error) {
	f.last = q
	return domain.Comparison{Mode: pnl.ModeActualBudget}, f.err
}

func (f *fakeFinancial) StoreStore(_ context.Context, q service.ComparisonQuery) (domain.Comparison, error) {
	f.last = q
	return domain.Comparison{Mode: pnl.ModeStoreStore}, f.err
}

func (f *fakeFinancial) YTD(_ context.Context, q service.ComparisonQuery) (domain.YTDResult, error) {
	f.last = q
	return domain.YTDResult{}, f.err
}

type testEnv struct {
	router    *gin.Engine
	links     *fakeLinks
	dashboard *fakeDashboard
	financial *fakeFinancial
}

func newEnv() *testEnv {
	env := &testEnv{links: &fakeLinks{}, dashboard: &fakeDashboard{}, financial: &fakeFinancial{}}
	env.router = NewRouter(&Services{
		Auth:      fakeAuth{},
		Links:     env.links,
		Dashboard: env.dashboard,
		Financial: env.financial,
	}, RouterConfig{Realm: "pnl", InvalidCredentials: service.ErrInvalidCredentials})
	return env
}

func (e *testEnv) do(method, target, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != "" {
		req.SetBasicAuth(user, "pw")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := newEnv().do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuthentication(t *testing.T) {
	env := newEnv()

	rec := env.do(http.MethodGet, "/api/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="pnl"`, rec.Header().Get("WWW-Authenticate"))

	rec = env.do(http.MethodGet, "/api/v1/me", "stranger@x.io", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/me", "down@x.io", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/me", "client@x.io", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, []string{"Glyfada"}, s.AssignedStores)
}

func TestLinks_AdminOnlyWrites(t *testing.T) {
	env := newEnv()

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/links", "client@x.io", "").Code)

	rec := env.do(http.MethodPost, "/api/v1/links", "client@x.io", `{"name":"B","url":"https://x/b.csv"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.links.created)

	rec = env.do(http.MethodPost, "/api/v1/links", "admin@x.io", `{"name":"B","url":"https://x/b.csv"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"B"}, env.links.created)

	rec = env.do(http.MethodPost, "/api/v1/links", "admin@x.io", `{"url":"https://x/b.csv"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/api/v1/links/zzz", "admin@x.io", `{"name":"B","url":"https://x/b.csv"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/links", "admin@x.io", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesNotRegisteredWithoutServices(t *testing.T) {
	rec := newEnv().do(http.MethodGet, "/api/v1/users", "admin@x.io", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard_ParsesQuery(t *testing.T) {
	env := newEnv()

	rec := env.do(http.MethodGet, "/api/v1/dashboard", "client@x.io", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/dashboard?link=a&months=Jan-24,Feb-24&months=Mar-24&stores=Glyfada&year=2024&period_start=Jan-24&period_end=Jun-24&exclude_severance=true", "client@x.io", "")
	require.Equal(t, http.StatusOK, rec.Code)

	q := env.dashboard.last
	assert.Equal(t, "a", q.LinkID)
	assert.Equal(t, []string{"Jan-24", "Feb-24", "Mar-24"}, q.Criteria.Months)
	assert.Equal(t, []string{"Glyfada"}, q.Criteria.Stores)
	assert.Equal(t, 2024, q.Criteria.Year)
	assert.Equal(t, "Jun-24", q.Criteria.PeriodEnd)
	assert.True(t, q.ExcludeSeverance)
	assert.Equal(t, "client@x.io", q.Criteria.Session.Email)

	rec = env.do(http.MethodGet, "/api/v1/dashboard/kpis?link=a&year=all", "admin@x.io", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, env.dashboard.last.Criteria.Year)

	rec = env.do(http.MethodGet, "/api/v1/dashboard/records?link=a&year=twenty", "admin@x.io", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/dashboard/options?link=a", "client@x.io", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Glyfada")
}

func TestFinancial_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{service.ErrStaleSelection, http.StatusConflict},
		{pnl.ErrNoData, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrInvalidInput, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		env := newEnv()
		env.financial.err = tt.err
		rec := env.do(http.MethodGet, "/api/v1/financial/actual-budget?actual=a&budget=b&store=Glyfada&month=Jan-24", "admin@x.io", "")
		assert.Equal(t, tt.status, rec.Code, "%v", tt.err)
	}
}

func TestFinancial_ParsesQuery(t *testing.T) {
	env := newEnv()

	rec := env.do(http.MethodGet, "/api/v1/financial/store-store?link=a&store_a=Glyfada&store_b=Kifisia&month=Jan-24&fields=sales,ebitda&exclude_services=1&exclude_pepe=true", "admin@x.io", "")
	require.Equal(t, http.StatusOK, rec.Code)

	q := env.financial.last
	assert.Equal(t, "a", q.ActualLinkID)
	assert.Equal(t, "Glyfada", q.Store)
	assert.Equal(t, "Kifisia", q.StoreB)
	assert.Equal(t, []string{"sales", "ebitda"}, q.Fields)
	assert.True(t, q.Adjustment.ExcludeSalesOfServices)
	assert.False(t, q.Adjustment.ExcludeBlueExpenses)
	assert.True(t, q.Adjustment.ExcludePepeExpenses)

	rec = env.do(http.MethodGet, "/api/v1/financial/ytd?actual=a&budget=b&store=Glyfada&month=Mar-24", "admin@x.io", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b", env.financial.last.BudgetLinkID)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"https://a.gr, https://b.gr", " "})
	assert.Equal(t, []string{"https://a.gr", "https://b.gr"}, origins)
	assert.False(t, all)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
