package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/kickbase-collector/internal/events"
	"github.com/preston-bernstein/kickbase-collector/internal/logging"
	"github.com/preston-bernstein/kickbase-collector/internal/poller"
	"github.com/preston-bernstein/kickbase-collector/internal/snapshots"
)

// ResultReader loads the collected player artifact.
type ResultReader interface {
	Load() (snapshots.ResultSet, error)
}

// EventReader serves stored matchday summaries and their aggregates.
type EventReader interface {
	Summary(playerID string) (events.DaySummary, error)
	AggregateRange(playerID string, start, end int) (events.Aggregate, error)
	AggregateDays(playerID string, start, end int) (map[int]events.Aggregate, error)
}

// Handler serves read-only views over the collected artifacts.
type Handler struct {
	results  ResultReader
	events   EventReader
	logger   *slog.Logger
	statusFn func() poller.Status
}

// NewHandler constructs a Handler. Either reader may be nil, in which case
// the routes backed by it answer 503. statusFn reports the scheduled
// collection; nil means nothing is scheduled and /ready always succeeds.
func NewHandler(results ResultReader, events EventReader, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		results:  results,
		events:   events,
		logger:   logger,
		statusFn: statusFn,
	}
}

// PlayersResponse lists what the last collection run stored.
type PlayersResponse struct {
	Date  string   `json:"date"`
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// DaysResponse lists the matchdays stored for one player.
type DaysResponse struct {
	PlayerID string `json:"playerId"`
	Days     []int  `json:"days"`
}

// PointsResponse is a category breakdown over a matchday range.
type PointsResponse struct {
	PlayerID   string                         `json:"playerId"`
	From       int                            `json:"from"`
	To         int                            `json:"to"`
	Total      int                            `json:"total"`
	Categories []events.CategoryTotal         `json:"categories"`
	Days       map[int][]events.CategoryTotal `json:"days,omitempty"`
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether the scheduled collection is keeping up.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Players returns the artifact date, count and the stored ids.
func (h *Handler) Players(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.loadResults(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PlayersResponse{
		Date:  rs.Date,
		Count: rs.Len(),
		IDs:   rs.Keys(),
	}, h.logger)
}

// Player returns one stored player document verbatim.
func (h *Handler) Player(w http.ResponseWriter, r *http.Request) {
	id, ok := h.playerID(w, r)
	if !ok {
		return
	}
	rs, ok := h.loadResults(w, r)
	if !ok {
		return
	}
	doc, found := rs.Get(id)
	if !found {
		writeError(w, r, http.StatusNotFound, "player not found", h.logger)
		return
	}
	writeRaw(w, http.StatusOK, doc, h.logger)
}

// PlayerDays lists the matchdays with stored event documents.
func (h *Handler) PlayerDays(w http.ResponseWriter, r *http.Request) {
	id, ok := h.playerID(w, r)
	if !ok {
		return
	}
	if h.events == nil {
		writeError(w, r, http.StatusServiceUnavailable, "event store not configured", h.logger)
		return
	}
	summary, err := h.events.Summary(id)
	if err != nil {
		h.storeError(w, r, "load day summary", err)
		return
	}
	writeJSON(w, http.StatusOK, DaysResponse{PlayerID: id, Days: summary.DayNumbers()}, h.logger)
}

// PlayerPoints aggregates event points per category over ?from=&to=,
// defaulting to the full season. ?by_day=true adds a per-day breakdown.
func (h *Handler) PlayerPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := h.playerID(w, r)
	if !ok {
		return
	}
	if h.events == nil {
		writeError(w, r, http.StatusServiceUnavailable, "event store not configured", h.logger)
		return
	}

	query := r.URL.Query()
	from, err := intParam(query.Get("from"), events.FirstMatchday)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid from (expected integer)", h.logger)
		return
	}
	to, err := intParam(query.Get("to"), events.LastMatchday)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid to (expected integer)", h.logger)
		return
	}
	if from > to {
		writeError(w, r, http.StatusBadRequest, "from must not exceed to", h.logger)
		return
	}

	agg, err := h.events.AggregateRange(id, from, to)
	if err != nil {
		h.storeError(w, r, "aggregate range", err)
		return
	}
	resp := PointsResponse{
		PlayerID:   id,
		From:       from,
		To:         to,
		Categories: agg.Sorted(),
	}
	for _, v := range agg {
		resp.Total += v
	}

	if byDay, _ := strconv.ParseBool(query.Get("by_day")); byDay {
		perDay, err := h.events.AggregateDays(id, from, to)
		if err != nil {
			h.storeError(w, r, "aggregate days", err)
			return
		}
		resp.Days = make(map[int][]events.CategoryTotal, len(perDay))
		for day, a := range perDay {
			resp.Days[day] = a.Sorted()
		}
	}

	logging.Debug(loggerFromContext(r, h.logger), "served points",
		slog.String(logging.FieldPlayerID, id),
		slog.Int(logging.FieldTotal, resp.Total),
	)
	writeJSON(w, http.StatusOK, resp, h.logger)
}

func (h *Handler) playerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := snapshots.ValidatePlayerID(id); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid player id", h.logger)
		return "", false
	}
	return id, true
}

func (h *Handler) loadResults(w http.ResponseWriter, r *http.Request) (snapshots.ResultSet, bool) {
	if h.results == nil {
		writeError(w, r, http.StatusServiceUnavailable, "result store not configured", h.logger)
		return snapshots.ResultSet{}, false
	}
	rs, err := h.results.Load()
	if err != nil {
		if errors.Is(err, snapshots.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "no results collected yet", h.logger)
			return snapshots.ResultSet{}, false
		}
		h.storeError(w, r, "load results", err)
		return snapshots.ResultSet{}, false
	}
	return rs, true
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logging.Error(loggerFromContext(r, h.logger), op+" failed", err)
	if errors.Is(err, snapshots.ErrCorruptData) {
		writeError(w, r, http.StatusInternalServerError, "stored artifact unreadable", h.logger)
		return
	}
	writeError(w, r, http.StatusInternalServerError, "store unavailable", h.logger)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
