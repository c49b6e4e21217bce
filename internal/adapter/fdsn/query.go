package fdsn

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-catalog-service/internal/domain"
)

// isoMillis renders instants as ISO-8601 UTC with millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// EventQuery builds a single-event lookup URL.
func EventQuery(baseURL, eventID string) (string, error) {
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return withParams(baseURL, url.Values{"eventid": {eventID}})
}

// WindowQuery builds a catalog query bounded by time, depth, and region.
// No limit parameter is sent; the full result set is expected in one response.
func WindowQuery(baseURL string, start, end time.Time, minDepthKm, maxDepthKm float64, region domain.Region) (string, error) {
	params := url.Values{
		"starttime": {start.UTC().Format(isoMillis)},
		"endtime":   {end.UTC().Format(isoMillis)},
		"mindepth":  {formatDecimal(minDepthKm)},
		"maxdepth":  {formatDecimal(maxDepthKm)},
	}

	switch r := region.(type) {
	case domain.Circle:
		addCircle(params, r)
	case *domain.Circle:
		if r == nil {
			return "", ErrInvalidRegion
		}
		addCircle(params, *r)
	case domain.Rect:
		addRect(params, r)
	case *domain.Rect:
		if r == nil {
			return "", ErrInvalidRegion
		}
		addRect(params, *r)
	default:
		return "", fmt.Errorf("%w: %T", ErrInvalidRegion, region)
	}

	return withParams(baseURL, params)
}

func addCircle(params url.Values, c domain.Circle) {
	params.Set("latitude", formatDecimal(c.Lat))
	params.Set("longitude", formatDecimal(c.Lon))
	params.Set("maxradius", formatDecimal(c.RadiusDeg))
}

func addRect(params url.Values, r domain.Rect) {
	params.Set("minlatitude", formatDecimal(r.MinLat))
	params.Set("maxlatitude", formatDecimal(r.MaxLat))
	params.Set("minlongitude", formatDecimal(r.MinLon))
	params.Set("maxlongitude", formatDecimal(r.MaxLon))
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

// withParams merges params into any query already present on baseURL.
func withParams(baseURL string, params url.Values) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
