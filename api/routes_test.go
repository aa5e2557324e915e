package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/allowance-server/internal/bootstrap"
	"github.com/carson-networks/allowance-server/internal/config"
	"github.com/carson-networks/allowance-server/internal/handlers/v1/profile"
	"github.com/carson-networks/allowance-server/internal/handlers/v1/transaction"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Defaults()
	cfg.StorageBackend = config.BackendMemory
	logger, _ := test.NewNullLogger()

	app, err := bootstrap.New(&cfg, logger)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	rest := &Rest{
		Logger:   logger,
		Service:  app.Service,
		Job:      app.Job,
		Location: time.UTC,
	}
	server := httptest.NewServer(rest.Handler())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestStatus(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProfileAndTransactionFlow(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/v1/profile", profile.CreateProfileBody{Name: "Ada", OpeningBalance: "10"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created profile.Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp = postJSON(t, server.URL+"/v1/profile/"+created.ID+"/transaction", transaction.CreateTransactionBody{
		Direction: "withdraw",
		Amount:    "2.50",
		Note:      "Candy",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var applied transaction.CreateTransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&applied))
	assert.Equal(t, "7.50", applied.NewBalance)

	history, err := http.Get(server.URL + "/v1/profile/" + created.ID + "/transaction?q=candy")
	require.NoError(t, err)
	defer history.Body.Close()
	var list transaction.ListTransactionsResponseBody
	require.NoError(t, json.NewDecoder(history.Body).Decode(&list))
	assert.Len(t, list.Transactions, 1)

	reconcile, err := http.Get(server.URL + "/v1/profile/" + created.ID + "/reconcile")
	require.NoError(t, err)
	defer reconcile.Body.Close()
	var report profile.ReconcileResponse
	require.NoError(t, json.NewDecoder(reconcile.Body).Decode(&report))
	assert.True(t, report.Consistent)
	assert.Equal(t, "7.50", report.Ledger)
}

func TestUnknownProfileIs404(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/v1/profile/6f1c1d7e-8d7a-4d8e-9a55-0d7c5a3f2b11")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
