// Package api exposes the prop scanner over HTTP. All prediction payloads
// use a {"data": [...]} envelope; the data slice is always present, never
// null, so empty scans decode cleanly on the client side.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/stream"
)

// Scanner is the scan surface the handlers depend on
type Scanner interface {
	ScanAll(ctx context.Context) ([]models.PredictionRecord, error)
	ScanPlayer(ctx context.Context, playerID int64) ([]models.PredictionRecord, error)
	ScanGame(ctx context.Context, gameID int64) ([]models.PredictionRecord, error)
}

// Pinger reports data-layer health for the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// dataResponse is the envelope for every prediction payload
type dataResponse struct {
	Data []models.PredictionRecord `json:"data"`
}

// errorResponse is the envelope for every error payload
type errorResponse struct {
	Error string `json:"error"`
}

// Handler holds the handler dependencies
type Handler struct {
	scanner  Scanner
	db       Pinger
	hub      *stream.Hub
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewHandler creates the API handler set. The hub may be nil when the
// live stream is disabled; the db pinger may be nil in tests.
func NewHandler(scanner Scanner, db Pinger, hub *stream.Hub, logger *logrus.Logger) *Handler {
	return &Handler{
		scanner: scanner,
		db:      db,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ScanAll handles GET /api/wnba/prop-scanner/scan-all
func (h *Handler) ScanAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.scanner.ScanAll(r.Context())
	if err != nil {
		h.respondScanError(w, err)
		return
	}
	respondData(w, records)
}

// ScanPlayer handles GET /api/wnba/prop-scanner/player/{id}
func (h *Handler) ScanPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}

	records, err := h.scanner.ScanPlayer(r.Context(), id)
	if err != nil {
		h.respondScanError(w, err)
		return
	}
	respondData(w, records)
}

// ScanGame handles GET /api/wnba/prop-scanner/game/{id}
func (h *Handler) ScanGame(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}

	records, err := h.scanner.ScanGame(r.Context(), id)
	if err != nil {
		h.respondScanError(w, err)
		return
	}
	respondData(w, records)
}

// Live handles GET /api/wnba/prop-scanner/live and upgrades to a websocket
// fed by the broadcast hub
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusNotFound, errors.New("live stream is disabled"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		if h.logger != nil {
			h.logger.WithError(err).Warn("Websocket upgrade failed")
		}
		return
	}

	client := stream.NewClient(conn, h.hub, h.logger)
	h.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}

// Healthz handles GET /healthz: process liveness only
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// Readyz handles GET /readyz: readiness includes the data layer
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, fmt.Errorf("database unhealthy: %w", err))
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// respondScanError maps the error taxonomy onto HTTP statuses
func (h *Handler) respondScanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, models.ErrInvalidID):
		respondError(w, http.StatusUnprocessableEntity, err)
	default:
		if h.logger != nil {
			h.logger.WithError(err).Error("Scan request failed")
		}
		respondError(w, http.StatusInternalServerError, err)
	}
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidID, raw)
	}
	return id, nil
}

func respondData(w http.ResponseWriter, records []models.PredictionRecord) {
	if records == nil {
		records = []models.PredictionRecord{}
	}
	respondJSON(w, http.StatusOK, dataResponse{Data: records})
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
