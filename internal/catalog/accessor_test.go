package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/quake-catalog-service/internal/adapter/fdsn"
	"github.com/couchcryptid/quake-catalog-service/internal/domain"
	"github.com/couchcryptid/quake-catalog-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://fdsn.example.test/fdsnws/event/1/query"

// --- mocks ---

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

type mockFetcher struct {
	doc  string
	err  error
	urls []string
	body *trackingBody
}

func (m *mockFetcher) Fetch(_ context.Context, rawURL string) (io.ReadCloser, error) {
	m.urls = append(m.urls, rawURL)
	if m.err != nil {
		return nil, m.err
	}
	m.body = &trackingBody{Reader: strings.NewReader(m.doc)}
	return m.body, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAccessor(f Fetcher) *Accessor {
	a := New(testBaseURL, f, fdsn.NewDecoder(fdsn.DepthMeters, discardLogger()), discardLogger(), observability.NewMetricsForTesting())
	a.clock = clockwork.NewFakeClock()
	return a
}

// --- fixtures ---

var mainshockTime = time.Date(2016, time.November, 13, 11, 2, 56, 346_000_000, time.UTC)

var mainshock = domain.EventRecord{
	ID:         "2016p858000",
	OriginTime: mainshockTime,
	Hypocenter: domain.Hypocenter{Lat: -42.6925, Lon: 173.0219, DepthKm: 15.1},
	Magnitude:  7.8,
}

func quakeEvent(publicID, when, mag string) string {
	return `<event publicID="` + publicID + `">` +
		`<origin publicID="o"><time><value>` + when + `</value></time>` +
		`<latitude><value>-42.5</value></latitude><longitude><value>173.5</value></longitude>` +
		`<depth><value>12000</value></depth></origin>` +
		`<magnitude publicID="m"><mag><value>` + mag + `</value></mag></magnitude></event>`
}

func quakeML(events ...string) string {
	return `<?xml version="1.0"?><q:quakeml xmlns="http://quakeml.org/xmlns/bed/1.2" xmlns:q="http://quakeml.org/xmlns/quakeml/1.2"><eventParameters>` +
		strings.Join(events, "") + `</eventParameters></q:quakeml>`
}

func ids(records []domain.EventRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// --- FetchEvent ---

func TestFetchEvent_ReturnsFirstRecord(t *testing.T) {
	f := &mockFetcher{doc: quakeML(
		quakeEvent("smi:nz.org.geonet/Event/2016p858000", "2016-11-13T11:02:56.346Z", "7.8"),
		quakeEvent("smi:nz.org.geonet/Event/other", "2016-11-13T11:03:00Z", "5.0"),
	)}
	a := newTestAccessor(f)

	rec, ok := a.FetchEvent(context.Background(), "2016p858000")
	require.True(t, ok)
	assert.Equal(t, "2016p858000", rec.ID)
	assert.Equal(t, mainshockTime, rec.OriginTime)
	assert.InDelta(t, 12.0, rec.Hypocenter.DepthKm, 1e-9)

	require.Len(t, f.urls, 1)
	assert.Equal(t, testBaseURL+"?eventid=2016p858000", f.urls[0])
	assert.True(t, f.body.closed)
}

func TestFetchEvent_Absent(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *mockFetcher
		outcome string
	}{
		{"empty catalog", &mockFetcher{doc: quakeML()}, outcomeEmpty},
		{"network failure", &mockFetcher{err: fdsn.ErrFetch}, outcomeFetchError},
		{"document failure", &mockFetcher{doc: "<html><body>oops"}, outcomeDocumentError},
		{"all events dropped", &mockFetcher{doc: quakeML(quakeEvent("x", "yesterday", "3"))}, outcomeEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAccessor(tt.fetcher)
			rec, ok := a.FetchEvent(context.Background(), "2016p858000")
			assert.False(t, ok)
			assert.True(t, rec.IsZero())
			assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.FetchRequests.WithLabelValues(opEvent, tt.outcome)))
			if tt.fetcher.body != nil {
				assert.True(t, tt.fetcher.body.closed, "body must be closed")
			}
		})
	}
}

func TestFetchEvent_EmptyID(t *testing.T) {
	f := &mockFetcher{doc: quakeML()}
	a := newTestAccessor(f)

	_, ok := a.FetchEvent(context.Background(), "")
	assert.False(t, ok)
	assert.Empty(t, f.urls, "no request for an empty id")

	res := a.LookupEvent(context.Background(), "")
	require.ErrorIs(t, res.Failure, ErrInvalidArgument)
}

func TestLookupEvent_ExposesFailure(t *testing.T) {
	a := newTestAccessor(&mockFetcher{err: errors.Join(fdsn.ErrFetch, errors.New("connection refused"))})
	res := a.LookupEvent(context.Background(), "2016p858000")
	require.ErrorIs(t, res.Failure, fdsn.ErrFetch)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
}

// --- FetchWindow ---

func TestFetchWindow_ExcludesMainshockAndSorts(t *testing.T) {
	f := &mockFetcher{doc: quakeML(
		quakeEvent("smi:nz.org.geonet/Event/c", "2016-11-13T13:00:00Z", "4.0"),
		quakeEvent("smi:nz.org.geonet/Event/2016p858000", "2016-11-13T11:02:56.346Z", "7.8"),
		quakeEvent("smi:nz.org.geonet/Event/a", "2016-11-13T11:10:00Z", "5.1"),
		quakeEvent("smi:nz.org.geonet/Event/tie1", "2016-11-13T12:00:00Z", "3.0"),
		quakeEvent("smi:nz.org.geonet/Event/tie2", "2016-11-13T12:00:00Z", "3.1"),
	)}
	a := newTestAccessor(f)

	res, err := a.FetchWindow(context.Background(), mainshock,
		domain.Window{MinDays: 0, MaxDays: 7, MinDepthKm: -10, MaxDepthKm: 100},
		domain.CircleAround(mainshock, 200))
	require.NoError(t, err)
	require.NoError(t, res.Failure)

	assert.Equal(t, []string{"a", "tie1", "tie2", "c"}, ids(res.Records))
	assert.Equal(t, 5, res.Stats.Decoded)
	assert.True(t, f.body.closed)

	require.Len(t, f.urls, 1)
	u, err := url.Parse(f.urls[0])
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "2016-11-13T11:02:56.346Z", q.Get("starttime"))
	assert.Equal(t, "2016-11-20T11:02:56.346Z", q.Get("endtime"))
	assert.Equal(t, "-42.69250", q.Get("latitude"))
	assert.Equal(t, "173.02190", q.Get("longitude"))
	assert.Equal(t, "1.79864", q.Get("maxradius"), "200 km expressed in degrees")
	assert.Equal(t, "-10.00000", q.Get("mindepth"))
	assert.Equal(t, "100.00000", q.Get("maxdepth"))
}

func TestFetchWindow_DegradesToEmpty(t *testing.T) {
	truncated := strings.TrimSuffix(quakeML(quakeEvent("a", "2016-11-13T12:00:00Z", "3")), "</eventParameters></q:quakeml>")

	tests := []struct {
		name    string
		fetcher *mockFetcher
		target  error
	}{
		{"network failure", &mockFetcher{err: errors.Join(fdsn.ErrFetch, errors.New("dial tcp: refused"))}, fdsn.ErrFetch},
		{"document failure", &mockFetcher{doc: truncated}, fdsn.ErrDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAccessor(tt.fetcher)
			res, err := a.FetchWindow(context.Background(), mainshock, domain.Window{MaxDays: 7, MaxDepthKm: 100}, domain.Rect{MinLat: -44, MaxLat: -41, MinLon: 172, MaxLon: 175})
			require.NoError(t, err, "runtime failures are not returned as errors")
			assert.NotNil(t, res.Records)
			assert.Empty(t, res.Records)
			require.ErrorIs(t, res.Failure, tt.target)
			if tt.fetcher.body != nil {
				assert.True(t, tt.fetcher.body.closed, "body must be closed on decode failure")
			}
		})
	}
}

func TestFetchWindow_InvalidArguments(t *testing.T) {
	f := &mockFetcher{doc: quakeML()}
	a := newTestAccessor(f)
	ctx := context.Background()
	w := domain.Window{MaxDays: 7, MaxDepthKm: 100}
	region := domain.CircleAround(mainshock, 100)

	_, err := a.FetchWindow(ctx, domain.EventRecord{}, w, region)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = a.FetchWindow(ctx, domain.EventRecord{ID: "x"}, w, region)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = a.FetchWindow(ctx, mainshock, w, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.ErrorIs(t, err, fdsn.ErrInvalidRegion)

	_, err = a.FetchWindow(ctx, mainshock, domain.Window{MinDays: 3, MaxDays: 1}, region)
	require.ErrorIs(t, err, ErrInvalidArgument)

	assert.Empty(t, f.urls, "invalid arguments never reach the network")
}

func TestFetchWindow_RecordsDecodeMetrics(t *testing.T) {
	f := &mockFetcher{doc: quakeML(
		quakeEvent("a", "2016-11-13T12:00:00Z", "3"),
		quakeEvent("b", "2016-11-13T12:00:00Z", "not-a-mag"),
		`<event publicID="c"></event>`,
	)}
	a := newTestAccessor(f)

	res, err := a.FetchWindow(context.Background(), mainshock, domain.Window{MaxDays: 1, MaxDepthKm: 10}, domain.Circle{RadiusDeg: 1})
	require.NoError(t, err)

	assert.Len(t, res.Records, 1)
	assert.Equal(t, 3, res.Stats.Attempted)
	assert.Equal(t, 2, res.Stats.DroppedTotal())
	assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.EventsDecoded))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.EventsDropped.WithLabelValues(string(domain.DropBadMagnitude))))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.EventsDropped.WithLabelValues(string(domain.DropNoOrigin))))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.FetchRequests.WithLabelValues(opWindow, outcomeSuccess)))
}

// --- end to end through the HTTP client ---

func TestAccessor_WithFDSNClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		if r.URL.Query().Has("eventid") {
			_, _ = io.WriteString(w, quakeML(quakeEvent("smi:nz.org.geonet/Event/2016p858000", "2016-11-13T11:02:56.346Z", "7.8")))
			return
		}
		if r.URL.Query().Get("maxradius") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, quakeML(
			quakeEvent("smi:nz.org.geonet/Event/2016p858051", "2016-11-13T11:30:14.120Z", "4.1"),
			quakeEvent("smi:nz.org.geonet/Event/2016p858000", "2016-11-13T11:02:56.346Z", "7.8"),
			quakeEvent("smi:nz.org.geonet/Event/2016p858010", "2016-11-13T11:08:00Z", "5.5"),
		))
	}))
	defer srv.Close()

	client := fdsn.NewClient(5*time.Second, discardLogger())
	decoder := fdsn.NewDecoder(fdsn.DepthMeters, discardLogger())
	a := New(srv.URL, client, decoder, discardLogger(), observability.NewMetricsForTesting())
	ctx := context.Background()

	ms, ok := a.FetchEvent(ctx, "2016p858000")
	require.True(t, ok)

	res, err := a.FetchWindow(ctx, ms, domain.Window{MaxDays: 7, MinDepthKm: -10, MaxDepthKm: 100}, domain.CircleAround(ms, 200))
	require.NoError(t, err)
	require.NoError(t, res.Failure)
	assert.Equal(t, []string{"2016p858010", "2016p858051"}, ids(res.Records))

	res, err = a.FetchWindow(ctx, ms, domain.Window{MaxDays: 7, MaxDepthKm: 100}, domain.Rect{MinLat: -44, MaxLat: -41, MinLon: 172, MaxLon: 175})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	require.ErrorIs(t, res.Failure, fdsn.ErrFetch)
}
