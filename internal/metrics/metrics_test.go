package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	Resolutions.WithLabelValues("ok").Inc()
	Downloads.WithLabelValues("downloaded").Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"zippy_resolutions_total", "zippy_downloads_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("/metrics missing %s", name)
		}
	}
}

func TestResolutions_Counts(t *testing.T) {
	before := testutil.ToFloat64(Resolutions.WithLabelValues("fetch_failed"))
	Resolutions.WithLabelValues("fetch_failed").Inc()
	Resolutions.WithLabelValues("fetch_failed").Inc()

	if got := testutil.ToFloat64(Resolutions.WithLabelValues("fetch_failed")); got != before+2 {
		t.Errorf("fetch_failed = %v, want %v", got, before+2)
	}
}

func TestCollectors_Lint(t *testing.T) {
	ResolutionDuration.WithLabelValues("total").Observe(0.5)
	DownloadedBytes.Add(1024)

	collectors := map[string]prometheus.Collector{
		"zippy_resolutions_total":           Resolutions,
		"zippy_resolution_duration_seconds": ResolutionDuration,
		"zippy_downloads_total":             Downloads,
		"zippy_downloaded_bytes_total":      DownloadedBytes,
	}
	for name, c := range collectors {
		problems, err := testutil.CollectAndLint(c)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		for _, p := range problems {
			t.Errorf("%s: %s", p.Metric, p.Text)
		}
	}
}
