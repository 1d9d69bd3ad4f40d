package wallpaper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dixieflatline76/BingWall/pkg/provider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordCycles(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	cfg := testConfig(t, 2)
	fetcher := newFakeFetcher()
	fetcher.bodies[testImageURL] = testJPEG(t)
	s := NewScheduler(staticConfig(cfg), fixedProvider(&fakeProvider{img: testImage()}), fetcher, &recordingSetter{}).WithMetrics(m)

	s.RunCycle(context.Background())
	s.RunCycle(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("downloaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("already_present")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Downloads))
	assert.Equal(t, 7200.0, testutil.ToFloat64(m.NextCycleDelay))
}

func TestMetricsRecordMetadataFailure(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	s := NewScheduler(staticConfig(testConfig(t, 1)), fixedProvider(&fakeProvider{err: provider.ErrMetadataUnavailable}), newFakeFetcher(), &recordingSetter{}).WithMetrics(m)
	s.RunCycle(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MetadataFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("nothing_to_do")))
	assert.Equal(t, 60.0, testutil.ToFloat64(m.NextCycleDelay))
}

func TestMetricsCountFetchedBytes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("12345"))
	}))
	defer ts.Close()

	m := NewMetrics(prometheus.NewRegistry())
	f := NewHTTPFetcher(ts.Client()).WithMetrics(m)
	f.Fetch(context.Background(), ts.URL, nil, false)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.DownloadBytes))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeOutcome(CycleOutcome{Kind: Downloaded})
		m.metadataFailure()
	})
}
