package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/drift/internal/catalog"
	"github.com/leapstack-labs/drift/internal/comparison"
	"github.com/leapstack-labs/drift/internal/extraction"
	"github.com/leapstack-labs/drift/internal/fingerprint"
	"github.com/leapstack-labs/drift/pkg/core"
)

// roundPlaces is the decimal precision of floats in API responses.
const roundPlaces = 4

// Handlers provides the HTTP handlers of the API.
type Handlers struct {
	catalog   *catalog.Store
	extractor comparison.Extractor
	engine    *comparison.Engine
	opts      core.Options
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *catalog.Store, extractor comparison.Extractor, engine *comparison.Engine, opts core.Options, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		catalog:   store,
		extractor: extractor,
		engine:    engine,
		opts:      opts,
		logger:    logger,
	}
}

// SetupRoutes configures the API routes.
func (h *Handlers) SetupRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Get("/assets", h.HandleAssets)
		r.Get("/fingerprint", h.HandleFingerprint)
		r.Post("/fingerprint", h.HandleFingerprint)
		r.Get("/compare", h.HandleCompare)
		r.Post("/compare", h.HandleCompare)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type tableSummary struct {
	Ref     string `json:"ref"`
	Table   string `json:"table"`
	Columns int    `json:"columns"`
}

type segmentSummary struct {
	Ref       string `json:"ref"`
	Name      string `json:"name"`
	Table     string `json:"table"`
	Predicate string `json:"predicate"`
}

type cardSummary struct {
	Ref   string `json:"ref"`
	Name  string `json:"name"`
	Table string `json:"table"`
}

type assetsResponse struct {
	Tables   []tableSummary   `json:"tables"`
	Segments []segmentSummary `json:"segments"`
	Cards    []cardSummary    `json:"cards"`
}

type fingerprintRequest struct {
	Asset   string        `json:"asset"`
	MaxCost *core.MaxCost `json:"max_cost,omitempty"`
}

type fingerprintResponse struct {
	Asset        string            `json:"asset"`
	Kind         string            `json:"kind"`
	Fingerprint  *core.Extraction  `json:"fingerprint"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
}

type compareRequest struct {
	A       string        `json:"a"`
	B       string        `json:"b"`
	MaxCost *core.MaxCost `json:"max_cost,omitempty"`
}

type compareResponse struct {
	A            string                 `json:"a"`
	B            string                 `json:"b"`
	Result       *core.ComparisonResult `json:"result"`
	Descriptions map[string]string      `json:"descriptions,omitempty"`
}

// HandleHealth reports server liveness.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// HandleAssets lists the assets known to the catalog.
func (h *Handlers) HandleAssets(w http.ResponseWriter, _ *http.Request) {
	tables, err := h.catalog.ListTables()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	segments, err := h.catalog.ListSegments()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	cards, err := h.catalog.ListCards()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := assetsResponse{
		Tables:   make([]tableSummary, 0, len(tables)),
		Segments: make([]segmentSummary, 0, len(segments)),
		Cards:    make([]cardSummary, 0, len(cards)),
	}
	for _, t := range tables {
		resp.Tables = append(resp.Tables, tableSummary{
			Ref:     "table:" + t.Table.String(),
			Table:   t.Table.String(),
			Columns: len(t.Columns),
		})
	}
	for _, seg := range segments {
		resp.Segments = append(resp.Segments, segmentSummary{
			Ref:       "segment:" + seg.Name,
			Name:      seg.Name,
			Table:     seg.Table.String(),
			Predicate: seg.Predicate,
		})
	}
	for _, c := range cards {
		resp.Cards = append(resp.Cards, cardSummary{
			Ref:   "card:" + c.Name,
			Name:  c.Name,
			Table: c.Table.String(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleFingerprint extracts and returns one asset's fingerprint.
func (h *Handlers) HandleFingerprint(w http.ResponseWriter, r *http.Request) {
	var req fingerprintRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	} else {
		req.Asset = r.URL.Query().Get("asset")
		req.MaxCost = maxCostFromQuery(r)
	}
	if req.Asset == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing asset parameter"))
		return
	}

	asset, err := h.catalog.ResolveAsset(req.Asset)
	if err != nil {
		writeError(w, statusForResolve(err), err)
		return
	}

	ext, err := h.extractor.Extract(r.Context(), h.options(req.MaxCost), asset)
	if err != nil {
		h.logger.Error("extraction failed", "asset", req.Asset, "error", err)
		writeError(w, statusForEngine(err), err)
		return
	}

	ext = fingerprint.RoundDecimals(ext, roundPlaces)
	writeJSON(w, http.StatusOK, fingerprintResponse{
		Asset:        req.Asset,
		Kind:         string(asset.Kind()),
		Fingerprint:  ext,
		Descriptions: fingerprint.Describe(ext),
	})
}

// HandleCompare extracts and compares two assets.
func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	} else {
		req.A = r.URL.Query().Get("a")
		req.B = r.URL.Query().Get("b")
		req.MaxCost = maxCostFromQuery(r)
	}
	if req.A == "" || req.B == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing a or b parameter"))
		return
	}

	assetA, err := h.catalog.ResolveAsset(req.A)
	if err != nil {
		writeError(w, statusForResolve(err), err)
		return
	}
	assetB, err := h.catalog.ResolveAsset(req.B)
	if err != nil {
		writeError(w, statusForResolve(err), err)
		return
	}

	result, err := h.engine.Compare(r.Context(), h.options(req.MaxCost), assetA, assetB)
	if err != nil {
		h.logger.Error("comparison failed", "a", req.A, "b", req.B, "error", err)
		writeError(w, statusForEngine(err), err)
		return
	}

	descriptions := make(map[string]string)
	for i, c := range result.Constituents {
		if c == nil {
			continue
		}
		result.Constituents[i] = fingerprint.RoundDecimals(c, roundPlaces)
		for name, title := range fingerprint.Describe(c) {
			descriptions[name] = title
		}
	}

	writeJSON(w, http.StatusOK, compareResponse{
		A:            req.A,
		B:            req.B,
		Result:       result,
		Descriptions: descriptions,
	})
}

// options merges a per-request cost override into the server defaults.
func (h *Handlers) options(mc *core.MaxCost) core.Options {
	opts := h.opts
	if mc != nil {
		if mc.Query != "" {
			opts.MaxCost.Query = mc.Query
		}
		if mc.Computation != "" {
			opts.MaxCost.Computation = mc.Computation
		}
	}
	return opts
}

// maxCostFromQuery reads cost overrides from URL query parameters.
func maxCostFromQuery(r *http.Request) *core.MaxCost {
	q := r.URL.Query().Get("max_cost_query")
	c := r.URL.Query().Get("max_cost_computation")
	if q == "" && c == "" {
		return nil
	}
	return &core.MaxCost{
		Query:       core.CostLevel(q),
		Computation: core.CostLevel(c),
	}
}

// statusForResolve maps asset resolution failures to HTTP statuses.
func statusForResolve(err error) int {
	var notFound *catalog.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// statusForEngine maps extraction and comparison failures to HTTP statuses.
func statusForEngine(err error) int {
	var noCounterpart *comparison.NoCounterpartError
	switch {
	case errors.Is(err, extraction.ErrNoRelatedPair),
		errors.Is(err, comparison.ErrShapeMismatch),
		errors.As(err, &noCounterpart):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
