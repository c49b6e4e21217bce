package fdsn

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-catalog-service/internal/domain"
	"golang.org/x/net/html/charset"
)

// DepthUnit is the unit of origin depth values in the service's documents.
type DepthUnit int

const (
	// DepthMeters is the QuakeML 1.2 convention and the GeoNet default.
	DepthMeters DepthUnit = iota
	DepthKilometers
)

// ParseDepthUnit accepts "m" or "km".
func ParseDepthUnit(s string) (DepthUnit, error) {
	switch s {
	case "m":
		return DepthMeters, nil
	case "km":
		return DepthKilometers, nil
	default:
		return 0, fmt.Errorf("unknown depth unit %q", s)
	}
}

// Kilometers converts a raw depth value to kilometers.
func (u DepthUnit) Kilometers(v float64) float64 {
	if u == DepthMeters {
		return v / 1000
	}
	return v
}

// Minimal QuakeML shapes. Only the elements needed to build an EventRecord
// are mapped; values stay as text so a bad number drops one event instead of
// failing the whole document.
type quakeEvent struct {
	PublicID             string           `xml:"publicID,attr"`
	PreferredOriginID    string           `xml:"preferredOriginID"`
	PreferredMagnitudeID string           `xml:"preferredMagnitudeID"`
	Origins              []quakeOrigin    `xml:"origin"`
	Magnitudes           []quakeMagnitude `xml:"magnitude"`
}

type quakeOrigin struct {
	PublicID  string   `xml:"publicID,attr"`
	Time      quantity `xml:"time"`
	Latitude  quantity `xml:"latitude"`
	Longitude quantity `xml:"longitude"`
	Depth     quantity `xml:"depth"`
}

type quakeMagnitude struct {
	PublicID string   `xml:"publicID,attr"`
	Mag      quantity `xml:"mag"`
}

type quantity struct {
	Value string `xml:"value"`
}

// Decoder turns QuakeML documents into event records.
// It implements catalog.Decoder.
type Decoder struct {
	depthUnit DepthUnit
	logger    *slog.Logger
}

// NewDecoder creates a Decoder that reads depths in the given unit.
func NewDecoder(depthUnit DepthUnit, logger *slog.Logger) *Decoder {
	return &Decoder{depthUnit: depthUnit, logger: logger}
}

// Decode streams r and returns one record per usable <event> element, in
// document order. Events without a usable origin or magnitude are dropped and
// counted in the stats. A document that is not well-formed XML fails as a
// whole with ErrDocument. An empty stream is an empty catalog.
func (d *Decoder) Decode(r io.Reader) ([]domain.EventRecord, domain.DecodeStats, error) {
	var stats domain.DecodeStats
	records := []domain.EventRecord{}

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	depth, roots := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("%w: %w", ErrDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return nil, stats, fmt.Errorf("%w: multiple root elements", ErrDocument)
				}
			}
			if t.Name.Local != "event" {
				depth++
				continue
			}

			var ev quakeEvent
			if err := dec.DecodeElement(&ev, &t); err != nil {
				return nil, stats, fmt.Errorf("%w: event %d: %w", ErrDocument, stats.Attempted+1, err)
			}
			stats.Attempted++

			rec, reason, ok := d.toRecord(ev)
			if !ok {
				stats.Drop(reason)
				d.logger.Debug("dropping event", "public_id", ev.PublicID, "reason", reason)
				continue
			}
			stats.Decoded++
			records = append(records, rec)

		case xml.EndElement:
			depth--

		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, stats, fmt.Errorf("%w: text outside root element", ErrDocument)
			}
		}
	}

	return records, stats, nil
}

// toRecord resolves the preferred origin and magnitude of ev and converts
// them into a record. The reason is set when ok is false.
func (d *Decoder) toRecord(ev quakeEvent) (domain.EventRecord, domain.DropReason, bool) {
	origin, ok := domain.PickPreferred(ev.Origins, strings.TrimSpace(ev.PreferredOriginID),
		func(o quakeOrigin) string { return strings.TrimSpace(o.PublicID) })
	if !ok {
		return domain.EventRecord{}, domain.DropNoOrigin, false
	}
	magnitude, ok := domain.PickPreferred(ev.Magnitudes, strings.TrimSpace(ev.PreferredMagnitudeID),
		func(m quakeMagnitude) string { return strings.TrimSpace(m.PublicID) })
	if !ok {
		return domain.EventRecord{}, domain.DropNoMagnitude, false
	}

	originTime, err := parseTime(origin.Time.Value)
	if err != nil {
		return domain.EventRecord{}, domain.DropBadTime, false
	}
	lat, err := parseNumber(origin.Latitude.Value)
	if err != nil {
		return domain.EventRecord{}, domain.DropBadLatitude, false
	}
	lon, err := parseNumber(origin.Longitude.Value)
	if err != nil {
		return domain.EventRecord{}, domain.DropBadLongitude, false
	}
	depth, err := parseNumber(origin.Depth.Value)
	if err != nil {
		return domain.EventRecord{}, domain.DropBadDepth, false
	}
	mag, err := parseNumber(magnitude.Mag.Value)
	if err != nil {
		return domain.EventRecord{}, domain.DropBadMagnitude, false
	}

	return domain.EventRecord{
		ID:         domain.CanonicalID(strings.TrimSpace(ev.PublicID)),
		OriginTime: originTime,
		Hypocenter: domain.Hypocenter{
			Lat:     lat,
			Lon:     lon,
			DepthKm: d.depthUnit.Kilometers(depth),
		},
		Magnitude: mag,
	}, "", true
}

// parseTime reads an ISO-8601 instant and truncates it to milliseconds.
// Values without a zone designator are taken as UTC.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		var errLocal error
		t, errLocal = time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
		if errLocal != nil {
			return time.Time{}, err
		}
	}
	return time.UnixMilli(t.UnixMilli()).UTC(), nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
