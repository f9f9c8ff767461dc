package sessions

import (
	"testing"
	"time"

	"github.com/hytera-adk/hylink-adk/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Ports: []config.PortConfig{
			{Service: "rcp-ts1", Address: "127.0.0.1:0"},
			{Service: "rtp-ts1", Address: "127.0.0.1:0", RTP: true},
		},
		Session: config.SessionConfig{
			HeartbeatInterval: 50 * time.Millisecond,
			HeartbeatTimeout:  500 * time.Millisecond,
			AckTimeout:        100 * time.Millisecond,
			ReaperInterval:    "*/1 * * * *",
		},
		Blocklist: config.BlocklistConfig{Enabled: true, RadioIDs: []uint32{42}},
		Web:       config.WebConfig{Enabled: false},
	}
}

func TestNewBuildsOneSessionPerPort(t *testing.T) {
	m, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Session("rcp-ts1") == nil {
		t.Error("expected rcp-ts1 session")
	}
	if m.Session("rtp-ts1") == nil {
		t.Error("expected rtp-ts1 session")
	}
	if m.Session("nope") != nil {
		t.Error("expected nil for unconfigured service")
	}
}

func TestBlocklistSeededFromConfig(t *testing.T) {
	m, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Blocklist().IsBlocked(42) {
		t.Error("expected radio 42 to be seeded as blocked")
	}
}

func TestSnapshotReportsDisconnectedBeforeStart(t *testing.T) {
	m, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	snap := m.Snapshot()
	for service, connected := range snap {
		if connected {
			t.Errorf("service %s reported connected before Start", service)
		}
	}
}

func TestInvalidReaperScheduleRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Session.ReaperInterval = "not a schedule"
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected error for invalid reaper schedule")
	}
}
