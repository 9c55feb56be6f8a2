package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LebsNeo/mrmoney-sub000/internal/categorise"
	"github.com/LebsNeo/mrmoney-sub000/internal/dedup"
	"github.com/LebsNeo/mrmoney-sub000/internal/importer"
	"github.com/LebsNeo/mrmoney-sub000/internal/ingest"
	"github.com/LebsNeo/mrmoney-sub000/internal/matcher"
	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/ota"
	"github.com/LebsNeo/mrmoney-sub000/internal/persist"
	"github.com/LebsNeo/mrmoney-sub000/internal/store/sqlite"
)

const absaStatement = "Date,Description,Debit,Credit,Balance\n" +
	"10/01/2025,GUEST DEPOSIT,,500.00,1500.00\n" +
	"11/01/2025,SPARKLE CLEANING,120.00,,1380.00\n"

func newServer(t *testing.T, opts Options) (*httptest.Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.OpenAndMigrate(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	bank := importer.NewService(importer.DefaultRegistry(), categorise.Default(), dedup.New(store))
	svc := ingest.New(bank, ota.DefaultRegistry(), matcher.New(store, 0), persist.New(store, store))
	srv := httptest.NewServer(NewRouter(svc, opts, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, store
}

func post(t *testing.T, url, contentType string, body []byte) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, contentType, bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealthz(t *testing.T) {
	srv, _ := newServer(t, Options{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestFormats(t *testing.T) {
	srv, _ := newServer(t, Options{})
	resp, err := http.Get(srv.URL + "/api/v1/formats")
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out["dialects"], "absa")
	assert.Contains(t, out["platforms"], "airbnb")
}

func TestImportBank_ThenForce(t *testing.T) {
	srv, store := newServer(t, Options{})
	url := srv.URL + "/api/v1/imports/bank?dialect=b&property=prop-1&organisation=org-1"

	resp, out := post(t, url, "text/csv", []byte(absaStatement))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "absa", out["dialect"])
	assert.Len(t, out["transactions"], 2)
	assert.Empty(t, out["unrecognised"])
	assert.EqualValues(t, 2, out["persisted"])

	resp, out = post(t, url, "text/csv", []byte(absaStatement))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dups := out["potentialDuplicates"].([]any)
	require.Len(t, dups, 2)
	assert.EqualValues(t, 0, out["persisted"])

	body, err := json.Marshal(map[string]any{"transactions": dups})
	require.NoError(t, err)
	resp, out = post(t, srv.URL+"/api/v1/imports/bank/force?property=prop-1", "application/json", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, out["persisted"])

	n, err := store.CountTransactions(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestImportBank_DryRunAndUnknownDialect(t *testing.T) {
	srv, store := newServer(t, Options{})

	resp, out := post(t, srv.URL+"/api/v1/imports/bank?dialect=absa&property=prop-1&dry_run=true", "text/csv", []byte(absaStatement))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, out["transactions"], 2)

	resp, out = post(t, srv.URL+"/api/v1/imports/bank?dialect=monzo&property=prop-1", "text/csv", []byte(absaStatement))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, out["unrecognised"], 3)

	n, err := store.CountTransactions(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportBank_BadRequests(t *testing.T) {
	srv, _ := newServer(t, Options{MaxBodyBytes: 64})
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		errMsg string
	}{
		{"no property", "/api/v1/imports/bank?dialect=absa", absaStatement, http.StatusBadRequest, "property is required"},
		{"no dialect", "/api/v1/imports/bank?property=p", absaStatement, http.StatusBadRequest, "dialect is required"},
		{"too large", "/api/v1/imports/bank?dialect=absa&property=p", strings.Repeat("x", 100), http.StatusRequestEntityTooLarge, "exceeds 64 bytes"},
		{"no platform", "/api/v1/imports/ota", "", http.StatusBadRequest, "platform is required"},
		{"unknown platform", "/api/v1/imports/ota?platform=expedia", "a,b\n", http.StatusBadRequest, "unknown OTA platform"},
		{"bad force body", "/api/v1/imports/bank/force?property=p", `{"rows":[]}`, http.StatusBadRequest, "invalid body"},
		{"bad force flow", "/api/v1/imports/bank/force?property=p", `{"transactions":[{"amount":"1","flow":"UP"}]}`, http.StatusBadRequest, "flow INCOME or EXPENSE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, out := post(t, srv.URL+tc.path, "text/csv", []byte(tc.body))
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, out["error"], tc.errMsg)
		})
	}
}

func TestOTA_PreviewThenCommit(t *testing.T) {
	srv, store := newServer(t, Options{})
	_, err := store.CreateBooking(context.Background(), model.Booking{ID: "bk-1", PropertyID: "prop-1", ExternalRef: "4001234567"})
	require.NoError(t, err)

	data, err := os.ReadFile("../../testdata/ota/bookingcom.csv")
	require.NoError(t, err)

	resp, out := post(t, srv.URL+"/api/v1/imports/ota?platform=booking", "text/csv", data)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bookingcom", out["platform"])
	assert.EqualValues(t, 3, out["bookingCount"])
	assert.Len(t, out["payouts"], 2)
	assert.Len(t, out["warnings"], 1)

	payouts, err := store.Payouts(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Empty(t, payouts, "preview does not persist")

	resp, out = post(t, srv.URL+"/api/v1/imports/ota/commit?platform=b&property=prop-1&organisation=org-1", "text/csv", data)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pr := out["persist"].(map[string]any)
	assert.EqualValues(t, 2, pr["payoutsCreated"])
	assert.EqualValues(t, 3, pr["itemsCreated"])
	assert.EqualValues(t, 1, pr["itemsMatched"])
	assert.Len(t, pr["warnings"], 3, "missing payout row plus two unmatched bookings")

	payouts, err = store.Payouts(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Len(t, payouts, 2)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newServer(t, Options{RateLimit: 0.001, RateBurst: 2})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := newRateLimiter(0.001, 1)
	assert.True(t, rl.get("10.0.0.1").Allow())
	assert.False(t, rl.get("10.0.0.1").Allow())
	assert.True(t, rl.get("10.0.0.2").Allow())
	assert.Same(t, rl.get("10.0.0.1"), rl.get("10.0.0.1"))
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientKey(r))
	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientKey(r))
}

func TestRequestLogger_AttachesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	h := requestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"request_id"`)
}
