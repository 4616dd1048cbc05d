package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	careauth "github.com/careloop/careauth"
)

type fakeSource struct {
	snapshot careauth.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) Metrics() careauth.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64              { return f.dropped }

func TestRenderExposesCountersAndHistograms(t *testing.T) {
	src := &fakeSource{
		snapshot: careauth.MetricsSnapshot{
			Counters: map[careauth.MetricID]uint64{
				careauth.MetricLoginSuccess:   3,
				careauth.MetricRefreshFailure: 1,
			},
			Histograms: map[careauth.MetricID][]uint64{
				careauth.MetricLoginLatency: {2, 1, 0, 0, 0, 0, 0, 1},
			},
		},
		dropped: 4,
	}

	out := NewFromSource(src).Render()

	for _, want := range []string{
		"careauth_login_success_total 3",
		"careauth_refresh_failure_total 1",
		"careauth_logout_total 0",
		"careauth_audit_dropped_total 4",
		`careauth_login_latency_seconds_bucket{le="0.005"} 2`,
		`careauth_login_latency_seconds_bucket{le="0.01"} 3`,
		`careauth_login_latency_seconds_bucket{le="+Inf"} 4`,
		"careauth_login_latency_seconds_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
	if !strings.Contains(out, "# TYPE careauth_login_latency_seconds histogram") {
		t.Error("histogram TYPE line missing")
	}
}

func TestHandlerServesTextExposition(t *testing.T) {
	src := &fakeSource{snapshot: careauth.MetricsSnapshot{
		Counters:   map[careauth.MetricID]uint64{careauth.MetricLogout: 1},
		Histograms: map[careauth.MetricID][]uint64{},
	}}

	rec := httptest.NewRecorder()
	NewFromSource(src).Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "careauth_logout_total 1") {
		t.Fatal("handler body missing counter")
	}
}
