package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/quake-catalog-service/internal/catalog"
	"github.com/couchcryptid/quake-catalog-service/internal/domain"
)

// Catalog is the accessor surface the API serves.
type Catalog interface {
	LookupEvent(ctx context.Context, id string) catalog.Result
	FetchWindow(ctx context.Context, ref domain.EventRecord, w domain.Window, region domain.Region) (catalog.Result, error)
}

// Query defaults for the aftershocks route.
const (
	defaultMaxDays  = 7
	defaultMinDepth = -10
	defaultMaxDepth = 100
	defaultRadiusKm = 200
)

type apiHandler struct {
	catalog  Catalog
	upstream *upstreamReadiness
	logger   *slog.Logger
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type aftershocksResponse struct {
	Mainshock domain.EventRecord   `json:"mainshock"`
	Region    string               `json:"region"`
	Records   []domain.EventRecord `json:"records"`
	Stats     domain.DecodeStats   `json:"stats"`
}

func (h *apiHandler) handleEvent(w http.ResponseWriter, r *http.Request) {
	ms, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (h *apiHandler) handleAftershocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := parseWindow(q)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	regionOf, err := parseRegion(q)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ms, ok := h.lookup(w, r)
	if !ok {
		return
	}

	region := regionOf(ms)
	res, err := h.catalog.FetchWindow(r.Context(), ms, window, region)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.upstream.observe(res.Failure)
	if res.Failure != nil {
		h.writeError(w, r, http.StatusBadGateway, "upstream catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, aftershocksResponse{
		Mainshock: ms,
		Region:    region.String(),
		Records:   res.Records,
		Stats:     res.Stats,
	})
}

// lookup resolves the {id} path value. On false a response has been written.
func (h *apiHandler) lookup(w http.ResponseWriter, r *http.Request) (domain.EventRecord, bool) {
	id := r.PathValue("id")
	res := h.catalog.LookupEvent(r.Context(), id)

	switch {
	case errors.Is(res.Failure, catalog.ErrInvalidArgument):
		h.writeError(w, r, http.StatusBadRequest, res.Failure.Error())
		return domain.EventRecord{}, false
	case res.Failure != nil:
		h.upstream.observe(res.Failure)
		h.writeError(w, r, http.StatusBadGateway, "upstream catalog unavailable")
		return domain.EventRecord{}, false
	}
	h.upstream.observe(nil)

	if len(res.Records) == 0 {
		h.writeError(w, r, http.StatusNotFound, fmt.Sprintf("event %s not found", id))
		return domain.EventRecord{}, false
	}
	return res.Records[0], true
}

func parseWindow(q url.Values) (domain.Window, error) {
	w := domain.Window{MaxDays: defaultMaxDays, MinDepthKm: defaultMinDepth, MaxDepthKm: defaultMaxDepth}
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"min_days", &w.MinDays},
		{"max_days", &w.MaxDays},
		{"min_depth", &w.MinDepthKm},
		{"max_depth", &w.MaxDepthKm},
	} {
		if err := parseFloatParam(q, p.name, p.dst); err != nil {
			return domain.Window{}, err
		}
	}
	if err := w.Validate(); err != nil {
		return domain.Window{}, err
	}
	return w, nil
}

var rectParams = []string{"min_lat", "max_lat", "min_lon", "max_lon"}

// parseRegion returns a constructor so circle regions can be centered on the
// mainshock once it is known.
func parseRegion(q url.Values) (func(domain.EventRecord) domain.Region, error) {
	present := 0
	for _, name := range rectParams {
		if q.Has(name) {
			present++
		}
	}

	if present == 0 {
		radius := float64(defaultRadiusKm)
		if err := parseFloatParam(q, "radius_km", &radius); err != nil {
			return nil, err
		}
		if radius <= 0 {
			return nil, errors.New("radius_km must be positive")
		}
		return func(ms domain.EventRecord) domain.Region {
			return domain.CircleAround(ms, radius)
		}, nil
	}

	if present != len(rectParams) {
		return nil, errors.New("rectangle requires min_lat, max_lat, min_lon, and max_lon")
	}
	if q.Has("radius_km") {
		return nil, errors.New("radius_km cannot be combined with a rectangle")
	}
	var rect domain.Rect
	for i, dst := range []*float64{&rect.MinLat, &rect.MaxLat, &rect.MinLon, &rect.MaxLon} {
		if err := parseFloatParam(q, rectParams[i], dst); err != nil {
			return nil, err
		}
	}
	if rect.MinLat > rect.MaxLat || rect.MinLon > rect.MaxLon {
		return nil, errors.New("rectangle minimum exceeds maximum")
	}
	return func(domain.EventRecord) domain.Region { return rect }, nil
}

// parseFloatParam overwrites *dst when name is present.
func parseFloatParam(q url.Values, name string, dst *float64) error {
	if !q.Has(name) {
		return nil
	}
	v, err := strconv.ParseFloat(q.Get(name), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid %s: %q", name, q.Get(name))
	}
	*dst = v
	return nil
}

func (h *apiHandler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	id := requestIDFrom(r.Context())
	if status >= http.StatusInternalServerError {
		h.logger.Warn("api request failed", "path", r.URL.Path, "status", status, "request_id", id)
	}
	writeJSON(w, status, errorResponse{Error: message, RequestID: id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
