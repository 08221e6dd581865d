package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err    error
	called bool
}

func (m *mockPinger) Ping(_ context.Context) error {
	m.called = true
	return m.err
}

type mockChecker struct {
	err    error
	called bool
}

func (m *mockChecker) HealthCheck(_ context.Context) error {
	m.called = true
	return m.err
}

func TestLive_NeverTouchesDependencies(t *testing.T) {
	db := &mockPinger{err: errors.New("db down")}
	index := &mockChecker{err: errors.New("index down")}
	embed := &mockChecker{err: errors.New("provider down")}
	svc := New(db, index, embed)

	report := svc.Live()
	if report.Status != Healthy {
		t.Errorf("liveness must stay ok while providers are down, got %s", report.Status)
	}
	if db.called || index.called || embed.called {
		t.Error("liveness must not call any dependency")
	}
}

func TestReady_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{}, &mockChecker{})

	report := svc.Ready(context.Background())
	if report.Status != Healthy {
		t.Fatalf("expected ok, got %s", report.Status)
	}
	for _, name := range []string{"database", "index", "embedding"} {
		if report.Checks[name] != CheckOK {
			t.Errorf("check %s: expected ok, got %s", name, report.Checks[name])
		}
	}
}

func TestReady_DegradedOnAnyFailure(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{err: errors.New("503")}, &mockChecker{})

	report := svc.Ready(context.Background())
	if report.Status != Degraded {
		t.Fatalf("expected degraded, got %s", report.Status)
	}
	if report.Checks["index"] != CheckError {
		t.Errorf("expected index error, got %s", report.Checks["index"])
	}
	if report.Checks["database"] != CheckOK {
		t.Errorf("expected database ok, got %s", report.Checks["database"])
	}
}

func TestReady_OptionalCheckersSkipped(t *testing.T) {
	svc := New(&mockPinger{}, nil, nil)

	report := svc.Ready(context.Background())
	if report.Status != Healthy {
		t.Fatalf("expected ok, got %s", report.Status)
	}
	if _, ok := report.Checks["index"]; ok {
		t.Error("nil index checker must not produce a check")
	}
	if _, ok := report.Checks["embedding"]; ok {
		t.Error("nil embedding checker must not produce a check")
	}
}
