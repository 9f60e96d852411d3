package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"netrunner-rpg-backend/internal/config"
)

func TestHeartbeatPingsOnStart(t *testing.T) {
	var pings atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			pings.Add(1)
		}
	}))
	defer server.Close()

	hb := NewHeartbeat(config.HeartbeatConfig{
		Enabled:  true,
		URL:      server.URL,
		Interval: time.Hour,
		Timeout:  time.Second,
	}, testLogger())

	hb.Start()
	defer hb.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for pings.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if pings.Load() == 0 {
		t.Fatal("no ping delivered after start")
	}
}

func TestHeartbeatReportFailure(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fail" || r.Method != http.MethodPost {
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		got = body["error"]
	}))
	defer server.Close()

	hb := NewHeartbeat(config.HeartbeatConfig{
		Enabled: true,
		URL:     server.URL,
		Timeout: time.Second,
	}, testLogger())

	hb.ReportFailure("redis connection lost")

	if got != "redis connection lost" {
		t.Errorf("reported error = %q", got)
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	hb := NewHeartbeat(config.HeartbeatConfig{Enabled: false}, testLogger())

	// Start and Stop are no-ops when disabled; neither may block or panic.
	hb.Start()
	hb.Stop()
	hb.ReportFailure("ignored")
}
