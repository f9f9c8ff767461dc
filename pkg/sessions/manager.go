// Package sessions owns the set of port sessions the host runs, wires
// radio-ID blocklisting into the registration flow, fans out decoded
// events to subscribers, and runs a cron-scheduled reaper that clears
// ack callbacks left behind by radios that never replied.
package sessions

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hytera-adk/hylink-adk/pkg/blocklist"
	"github.com/hytera-adk/hylink-adk/pkg/config"
	"github.com/hytera-adk/hylink-adk/pkg/hyt"
	"github.com/hytera-adk/hylink-adk/pkg/logger"
	"github.com/hytera-adk/hylink-adk/pkg/portmap"
	"github.com/hytera-adk/hylink-adk/pkg/rtp"
	"github.com/hytera-adk/hylink-adk/pkg/session"
	"github.com/hytera-adk/hylink-adk/pkg/txctrl"
)

// Event is a single decoded inbound item, fanned out to subscribers of
// Manager.Events for the monitoring dashboard and any other consumer.
type Event struct {
	Service string
	From    *net.UDPAddr
	At      time.Time

	HYT *hyt.Message // non-nil for TxCtrl ports
	RTP *rtp.Packet  // non-nil for voice ports
}

// Manager owns one *session.Session per configured port.
type Manager struct {
	logger    *logger.Logger
	blocklist *blocklist.Blocklist
	cron      *cron.Cron

	mu       sync.RWMutex
	sessions map[string]*session.Session

	ackTimeout time.Duration
	events     chan Event
}

// New builds a Manager from cfg, creating (but not starting) one session
// per configured port.
func New(cfg *config.Config, log *logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.Default()
	}

	bl := blocklist.New()
	if cfg.Blocklist.Enabled {
		bl.SetBlocked(cfg.Blocklist.RadioIDs)
	}

	m := &Manager{
		logger:     log.WithComponent("sessions"),
		blocklist:  bl,
		cron:       cron.New(),
		sessions:   make(map[string]*session.Session),
		ackTimeout: cfg.Session.AckTimeout,
		events:     make(chan Event, 256),
	}

	for _, p := range cfg.Ports {
		s, err := session.New(session.Config{
			LocalAddr:         p.Address,
			Service:           p.Service,
			HeartbeatInterval: cfg.Session.HeartbeatInterval,
			HeartbeatTimeout:  cfg.Session.HeartbeatTimeout,
			RTP:               p.RTP,
			Logger:            log,
		})
		if err != nil {
			return nil, fmt.Errorf("sessions: new session for %s: %w", p.Service, err)
		}
		m.wireSession(p.Service, s)
		m.sessions[p.Service] = s
	}

	if _, err := m.cron.AddFunc(cfg.Session.ReaperInterval, m.reapStaleAcks); err != nil {
		return nil, fmt.Errorf("sessions: invalid reaper schedule: %w", err)
	}

	return m, nil
}

func (m *Manager) wireSession(service string, s *session.Session) {
	s.SetMessageCallback(func(msg hyt.Message, from *net.UDPAddr) {
		if fr, ok := msg.(*hyt.FromRadio); ok && fr.Header.HasRadioID && m.blocklist.IsBlocked(fr.Header.RadioID) {
			m.logger.Warn("dropping frame from blocked radio",
				logger.String("service", service),
				logger.RadioID(fr.Header.RadioID))
			return
		}
		m.publish(Event{Service: service, From: from, At: time.Now(), HYT: &msg})
	})
	s.SetRtpCallback(func(pkt *rtp.Packet, from *net.UDPAddr) {
		m.publish(Event{Service: service, From: from, At: time.Now(), RTP: pkt})
	})
}

func (m *Manager) publish(e Event) {
	select {
	case m.events <- e:
	default:
		m.logger.Warn("event channel full, dropping event", logger.String("service", e.Service))
	}
}

// Events returns the channel event subscribers (the dashboard) read
// from. There is a single shared channel; callers that need independent
// streams should fan it out themselves.
func (m *Manager) Events() <-chan Event { return m.events }

// Start binds every configured port session and starts the reaper cron.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for service, s := range m.sessions {
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("sessions: start %s: %w", service, err)
		}
	}
	m.cron.Start()
	return nil
}

// Stop stops the reaper cron and every port session.
func (m *Manager) Stop() error {
	stopCtx := m.cron.Stop()
	<-stopCtx.Done()

	m.mu.RLock()
	defer m.mu.RUnlock()
	var firstErr error
	for service, s := range m.sessions {
		if err := s.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("sessions: stop %s: %w", service, err)
		}
	}
	return firstErr
}

// Session returns the named session, or nil if no such service is
// configured.
func (m *Manager) Session(service string) *session.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[service]
}

// Blocklist exposes the shared blocklist for runtime administration.
func (m *Manager) Blocklist() *blocklist.Blocklist { return m.blocklist }

// Snapshot reports which configured services are currently connected,
// for the dashboard's status view.
func (m *Manager) Snapshot() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.sessions))
	for service, s := range m.sessions {
		out[service] = s.IsConnected()
	}
	return out
}

// reapStaleAcks is the cron-scheduled pass addressing the leaked-ack-
// callback condition described in the design notes: a radio can drop a
// single reliable reply without dropping the session (heartbeats keep
// the watchdog happy), which otherwise leaves the waiting WaitAck call
// blocked until its own per-call timeout. This sweeps every session for
// callbacks older than the configured ack timeout.
func (m *Manager) reapStaleAcks() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for service, s := range m.sessions {
		n := s.ReapStaleAcks(m.ackTimeout)
		if n > 0 {
			m.logger.Warn("reaped stale ack callbacks", logger.String("service", service), logger.Int("count", n))
		}
		total += n
	}
	if total > 0 {
		m.logger.Info("reaper pass complete", logger.Int("reaped", total))
	}
}

// Send is a convenience helper for sending a TxCtrl message on a named
// service's session.
func (m *Manager) Send(service string, msg txctrl.Message, reliable bool) (uint16, error) {
	s := m.Session(service)
	if s == nil {
		return 0, fmt.Errorf("sessions: unknown service %q", service)
	}
	return s.Send(msg, reliable)
}

// SendAsync is a convenience helper for sending a TxCtrl message on a
// named service's session with a one-shot ack callback; see
// session.Session.SendAsync.
func (m *Manager) SendAsync(service string, msg txctrl.Message, reliable bool, onAck func(hyt.Message)) (uint16, error) {
	s := m.Session(service)
	if s == nil {
		return 0, fmt.Errorf("sessions: unknown service %q", service)
	}
	return s.SendAsync(msg, reliable, onAck)
}

// DefaultPort returns the factory-default UDP port for svc, for callers
// building a PortConfig programmatically.
func DefaultPort(svc portmap.Service) int {
	return portmap.Default[svc]
}
