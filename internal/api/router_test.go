package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/mf-folio-backend/internal/api"
	"github.com/ndewijer/mf-folio-backend/internal/config"
	"github.com/ndewijer/mf-folio-backend/internal/folio"
	"github.com/ndewijer/mf-folio-backend/internal/metrics"
	"github.com/ndewijer/mf-folio-backend/internal/model"
	"github.com/ndewijer/mf-folio-backend/internal/repository"
	"github.com/ndewijer/mf-folio-backend/internal/service"
	"github.com/ndewijer/mf-folio-backend/internal/testutil"
	"github.com/ndewijer/mf-folio-backend/internal/valuation"
)

type stack struct {
	server   *httptest.Server
	upstream *testutil.FolioServer
}

// newStack wires the router the way the server binary does, against a fake upstream
// and an in-memory database.
func newStack(t *testing.T) stack {
	t.Helper()

	db := testutil.SetupTestDB(t)
	upstream := testutil.NewFolioServer(t)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client := folio.NewClient(folio.Config{BaseURL: upstream.URL, Timeout: 5 * time.Second}, folio.WithMetrics(m))

	svc := api.Services{
		System:    testutil.NewTestSystemService(t, db),
		Portfolio: service.NewPortfolioService(client, valuation.New(), m, zerolog.Nop()),
		Sync:      service.NewSyncService(client, repository.NewHoldingRepository(db), 2, m, zerolog.Nop()),
	}
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}}

	srv := httptest.NewServer(api.NewRouter(svc, cfg, zerolog.Nop(), m, reg))
	t.Cleanup(srv.Close)

	return stack{server: srv, upstream: upstream}
}

func (s stack) do(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

// TestRouter tests the wired routes end to end.
//
// WHY: Route patterns, the userId middleware and the metrics endpoint only meet in the
// router; handler tests call methods directly and cannot catch a mis-mounted route.
func TestRouter(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		s := newStack(t)

		resp, _ := s.do(t, http.MethodGet, "/api/system/health", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("summary from upstream", func(t *testing.T) {
		s := newStack(t)
		s.upstream.Holdings["42"] = []model.HoldingRecord{
			testutil.NewHolding().WithPurchaseAmount("10000").WithCurrentValue("11000").Record(),
		}

		resp, body := s.do(t, http.MethodGet, "/api/portfolio/42/summary?today=2024-01-01", "")
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.Contains(t, body, `"xirrPercent":"10.00"`)
		assert.Contains(t, body, `"asOf":"2024-01-01"`)
	})

	t.Run("invalid user id is rejected before the upstream", func(t *testing.T) {
		s := newStack(t)

		resp, body := s.do(t, http.MethodGet, "/api/portfolio/bad.id/summary", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "invalid user id")
		assert.Zero(t, s.upstream.Requests())
	})

	t.Run("upstream status error is 502", func(t *testing.T) {
		s := newStack(t)
		s.upstream.Status = http.StatusInternalServerError

		resp, _ := s.do(t, http.MethodGet, "/api/portfolio/42/holdings", "")
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("post summary", func(t *testing.T) {
		s := newStack(t)

		resp, body := s.do(t, http.MethodPost, "/api/portfolio/summary",
			`{"today":"2024-01-01","records":[{"fund_name":"A","purchase_amount":"10000","current_value":"11000","bought_date":"2023-01-01","units_allocated":"5"}]}`)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.Contains(t, body, `"xirrPercent":"10.00"`)
	})

	t.Run("sync then metrics", func(t *testing.T) {
		s := newStack(t)
		s.upstream.Holdings["42"] = testutil.CreateHoldings(2)

		resp, body := s.do(t, http.MethodPost, "/api/portfolio/42/sync", "")
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.Contains(t, body, `"recordCount":2`)

		resp, body = s.do(t, http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `folio_sync_users_total{result="ok"} 1`)
		assert.Contains(t, body, `folio_http_requests_total{method="POST",route="/api/portfolio/{userId}/sync",status="200"} 1`)
	})

	t.Run("unknown route", func(t *testing.T) {
		s := newStack(t)

		resp, _ := s.do(t, http.MethodGet, "/api/nope", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
