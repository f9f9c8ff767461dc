package web

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/hytera-adk/hylink-adk/pkg/config"
	"github.com/hytera-adk/hylink-adk/pkg/hyt"
	"github.com/hytera-adk/hylink-adk/pkg/sessions"
)

func testConfig() *config.Config {
	return &config.Config{
		Ports: []config.PortConfig{
			{Service: "rcp-ts1", Address: "127.0.0.1:0"},
		},
		Session: config.SessionConfig{
			HeartbeatInterval: 50 * time.Millisecond,
			HeartbeatTimeout:  500 * time.Millisecond,
			AckTimeout:        100 * time.Millisecond,
			ReaperInterval:    "*/1 * * * *",
		},
		Web: config.WebConfig{Enabled: false},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mgr, err := sessions.New(testConfig(), nil)
	if err != nil {
		t.Fatalf("sessions.New: %v", err)
	}
	return NewServer(testConfig(), nil, mgr, "test", "2026-07-29")
}

func TestRecordEventAppendsToLog(t *testing.T) {
	s := newTestServer(t)
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 4000}
	var msg hyt.Message = &hyt.Heartbeat{Seq: 7}

	s.recordEvent(sessions.Event{
		Service: "rcp-ts1",
		From:    addr,
		At:      time.Now(),
		HYT:     &msg,
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.eventLog) != 1 {
		t.Fatalf("expected 1 logged event, got %d", len(s.eventLog))
	}
	if s.eventLog[0].Kind != "hyt" {
		t.Errorf("expected kind hyt, got %s", s.eventLog[0].Kind)
	}
	if s.eventLog[0].Summary != "heartbeat seq=7" {
		t.Errorf("unexpected summary: %s", s.eventLog[0].Summary)
	}
}

func TestRecordEventTrimsToMaxLog(t *testing.T) {
	s := newTestServer(t)
	var msg hyt.Message = &hyt.Heartbeat{Seq: 1}

	for i := 0; i < maxEventLog+10; i++ {
		s.recordEvent(sessions.Event{Service: "rcp-ts1", At: time.Now(), HYT: &msg})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.eventLog) != maxEventLog {
		t.Errorf("expected log capped at %d, got %d", maxEventLog, len(s.eventLog))
	}
}

func TestDisabledServerStartReturnsImmediately(t *testing.T) {
	s := newTestServer(t)
	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error for disabled server, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start did not return promptly for a disabled server")
	}
}
