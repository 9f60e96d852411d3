package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"netrunner-rpg-backend/internal/config"
)

// Heartbeat pings an external liveness endpoint on an interval and
// reports fatal errors to its failure endpoint. Failures to deliver the
// ping are logged and swallowed; the monitor never takes the bot down.
type Heartbeat struct {
	cfg    config.HeartbeatConfig
	client *http.Client
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewHeartbeat wires the liveness monitor.
func NewHeartbeat(cfg config.HeartbeatConfig, logger *slog.Logger) *Heartbeat {
	return &Heartbeat{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Start launches the ping loop. No-op when disabled or already running.
func (h *Heartbeat) Start() {
	if !h.cfg.Enabled || h.cfg.URL == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	h.stopCh = make(chan struct{})
	h.doneCh = make(chan struct{})

	go h.run()
	h.logger.Info("heartbeat monitor started", "interval", h.cfg.Interval)
}

// Stop halts the ping loop and waits for it to finish.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.stopCh)
	doneCh := h.doneCh
	h.mu.Unlock()

	<-doneCh
	h.logger.Info("heartbeat monitor stopped")
}

func (h *Heartbeat) run() {
	defer close(h.doneCh)

	h.ping()

	ticker := time.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.ping()
		case <-h.stopCh:
			return
		}
	}
}

func (h *Heartbeat) ping() {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.URL, nil)
	if err != nil {
		h.logger.Warn("building heartbeat request failed", "error", err)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("heartbeat ping failed", "error", err)
		return
	}
	resp.Body.Close()
}

// ReportFailure posts a fatal error to the monitor's failure endpoint so
// the outage shows up with its cause attached.
func (h *Heartbeat) ReportFailure(message string) {
	if !h.cfg.Enabled || h.cfg.URL == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.URL+"/fail", bytes.NewReader(payload))
	if err != nil {
		h.logger.Warn("building failure report failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("failure report failed", "error", err)
		return
	}
	resp.Body.Close()
}
