package careauth

import (
	"testing"
	"time"

	"github.com/careloop/careauth/tokenstore"
)

func TestMetricsCountLifecycle(t *testing.T) {
	backend, ts := newTestBackend(t)
	store := tokenstore.NewMemoryStore()
	// An expired-access pair drives the restore path through the rotation
	// fallback, so refresh counts twice below.
	at, rt := backend.IssueExpiredPair(testAdminEmail)
	seedStore(t, store, at, rt)
	mgr := newTestManager(t, ts.URL, store)

	if err := mgr.Restore(t.Context()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, err := mgr.Login(t.Context(), testAdminEmail, "wrong"); err == nil {
		t.Fatal("bad login succeeded")
	}
	if _, err := mgr.Login(t.Context(), testAdminEmail, testAdminPass); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := mgr.Reauthorize(t.Context()); err != nil {
		t.Fatalf("Reauthorize: %v", err)
	}
	if err := mgr.Logout(t.Context()); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	snap := mgr.Metrics()
	want := map[MetricID]uint64{
		MetricRestoreSuccess: 1,
		MetricLoginFailure:   1,
		MetricLoginSuccess:   1,
		MetricRefreshSuccess: 2, // one inside Restore, one via Reauthorize
		MetricLogout:         1,
	}
	for id, n := range want {
		if got := snap.Counters[id]; got != n {
			t.Errorf("%s = %d, want %d", id, got, n)
		}
	}

	for _, id := range []MetricID{MetricLoginLatency, MetricRestoreLatency, MetricRefreshLatency} {
		var total uint64
		for _, b := range snap.Histograms[id] {
			total += b
		}
		if total == 0 {
			t.Errorf("%s histogram recorded no samples", id)
		}
	}
}

func TestMetricsDisabledSnapshotsEmpty(t *testing.T) {
	mgr, err := New().
		WithBaseURL("https://api.careloop.dev").
		WithMetricsEnabled(false).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer mgr.Close()

	mgr.metrics.inc(MetricLoginSuccess) // nil receiver, must not panic
	snap := mgr.Metrics()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("disabled metrics produced data: %+v", snap)
	}
}

func TestObserveIgnoresCounterIDs(t *testing.T) {
	m := newMetrics()
	m.observe(MetricLoginSuccess, time.Millisecond)
	m.observe(MetricRefreshLatency, time.Millisecond)

	snap := m.snapshot()
	if _, ok := snap.Histograms[MetricLoginSuccess]; ok {
		t.Fatal("counter ID grew a histogram")
	}
	if got := snap.Counters[MetricLoginSuccess]; got != 0 {
		t.Fatalf("observe bumped a counter to %d", got)
	}
	var total uint64
	for _, n := range snap.Histograms[MetricRefreshLatency] {
		total += n
	}
	if total != 1 {
		t.Fatalf("refresh latency observations = %d, want 1", total)
	}
	if len(snap.Histograms) != len(latencyIDs) {
		t.Fatalf("snapshot holds %d histograms, want %d", len(snap.Histograms), len(latencyIDs))
	}
}

func TestBucketIndexBounds(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{time.Millisecond, 0},
		{8 * time.Millisecond, 1},
		{400 * time.Millisecond, 6},
		{5 * time.Second, 7},
	}
	for _, tc := range tests {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Errorf("bucketIndex(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}
