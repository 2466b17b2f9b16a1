package mda_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avivlevi/donormap/internal/mda"
)

const landingPage = `<!DOCTYPE html>
<html><body>
<form action="/blood-donation">
<input name="__RequestVerificationToken" value="token-123" type="hidden" />
</form>
</body></html>`

func stationRecords() string {
	records := []map[string]string{
		{
			"DateDonation": "2026-08-30T00:00:00", "FromHour": "09:00", "ToHour": "14:00",
			"Name": "Community Center", "City": "Tel Aviv", "Street": "Ibn Gabirol",
			"NumHouse": "5", "SchedulingURL": "https://example.org/1",
		},
		{
			"DateDonation": "2026-08-30T00:00:00", "FromHour": "10:00", "ToHour": "16:00",
			"Name": "Port Hall", "City": "Haifa", "Street": "HaNamal",
			"NumHouse": "3", "SchedulingURL": "https://example.org/2",
		},
	}
	raw, _ := json.Marshal(records)

	return string(raw)
}

// newStubServer mimics the schedule provider: a landing page with the
// anti-forgery token and the invoker endpoint wrapping records in a
// JSON-string Result.
func newStubServer(t *testing.T, result *string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/blood-donation", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(landingPage))
	})
	mux.HandleFunc("/umbraco/api/invoker/execute", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.Equal(t, "token-123", r.Header.Get("__RequestVerificationToken"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		header, _ := payload["RequestHeader"].(map[string]any)
		assert.Equal(t, "GetAllDetailsDonations", header["Function"])
		assert.Equal(t, "BloodBank", header["Module"])

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"Result": *result}))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestFetchStations(t *testing.T) {
	log := slog.Default()

	t.Run("success", func(t *testing.T) {
		result := stationRecords()
		srv := newStubServer(t, &result)
		client := mda.NewClientWithURLs(srv.Client(),
			srv.URL+"/umbraco/api/invoker/execute", srv.URL+"/blood-donation", log)

		stations, err := client.FetchStations(t.Context(), 0)

		require.NoError(t, err)
		require.Len(t, stations, 2)
		assert.Equal(t, "Tel Aviv", stations[0].City)
		assert.Equal(t, "Ibn Gabirol", stations[0].Street)
		assert.Equal(t, "5", stations[0].NumHouse)
		assert.Equal(t, "Community Center", stations[0].Name)
		assert.Equal(t, "2026-08-30T00:00:00", stations[0].DateDonation)
		assert.Equal(t, "09:00", stations[0].FromHour)
		assert.Equal(t, "14:00", stations[0].ToHour)
		assert.Equal(t, "https://example.org/1", stations[0].SchedulingURL)
		assert.Equal(t, "Haifa", stations[1].City)
	})

	t.Run("limit truncates the batch", func(t *testing.T) {
		result := stationRecords()
		srv := newStubServer(t, &result)
		client := mda.NewClientWithURLs(srv.Client(),
			srv.URL+"/umbraco/api/invoker/execute", srv.URL+"/blood-donation", log)

		stations, err := client.FetchStations(t.Context(), 1)

		require.NoError(t, err)
		require.Len(t, stations, 1)
		assert.Equal(t, "Tel Aviv", stations[0].City)
	})

	t.Run("empty result payload", func(t *testing.T) {
		result := ""
		srv := newStubServer(t, &result)
		client := mda.NewClientWithURLs(srv.Client(),
			srv.URL+"/umbraco/api/invoker/execute", srv.URL+"/blood-donation", log)

		stations, err := client.FetchStations(t.Context(), 0)

		require.Nil(t, stations)
		require.ErrorIs(t, err, mda.ErrMissingResult)
	})

	t.Run("result is not an array", func(t *testing.T) {
		result := `{"oops": true}`
		srv := newStubServer(t, &result)
		client := mda.NewClientWithURLs(srv.Client(),
			srv.URL+"/umbraco/api/invoker/execute", srv.URL+"/blood-donation", log)

		stations, err := client.FetchStations(t.Context(), 0)

		require.Nil(t, stations)
		require.ErrorIs(t, err, mda.ErrMissingResult)
	})

	t.Run("landing page failure aborts the fetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)
		client := mda.NewClientWithURLs(srv.Client(), srv.URL+"/api", srv.URL+"/landing", log)

		stations, err := client.FetchStations(t.Context(), 0)

		require.Nil(t, stations)
		require.ErrorContains(t, err, "landing page returned status 503")
	})

	t.Run("api failure status", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/landing", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(landingPage))
		})
		mux.HandleFunc("/api", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "backend down", http.StatusBadGateway)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)
		client := mda.NewClientWithURLs(srv.Client(), srv.URL+"/api", srv.URL+"/landing", log)

		stations, err := client.FetchStations(t.Context(), 0)

		require.Nil(t, stations)
		require.ErrorContains(t, err, "mda API returned status 502")
	})
}
