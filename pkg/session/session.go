// Package session implements the per-port UDP session engine: the
// SYN/SYN-ACK handshake, heartbeat watchdog, outbound sequence generator,
// ack matching, and async dispatch of inbound HYT frames to callbacks.
package session

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/hytera-adk/hylink-adk/pkg/hyt"
	"github.com/hytera-adk/hylink-adk/pkg/hyterr"
	"github.com/hytera-adk/hylink-adk/pkg/logger"
	"github.com/hytera-adk/hylink-adk/pkg/rtp"
	"github.com/hytera-adk/hylink-adk/pkg/txctrl"
)

// State is the session's connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Default timing, per the ADK repeater programming template.
const (
	HeartbeatInterval = 2 * time.Second
	HeartbeatTimeout  = 30 * time.Second
)

// Config configures one port session.
type Config struct {
	// LocalAddr is the UDP address to bind for this service (":30009" etc).
	LocalAddr string
	// Service names the session for logging (e.g. "rcp-ts1").
	Service string

	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration

	HYT    hyt.Config
	RTP    bool // true for RTP voice ports, which bypass HYT framing entirely
	Logger *logger.Logger
}

// MessageHandler receives a decoded HYT message and the radio's source
// address, for TxCtrl traffic (ToRadio/FromRadio).
type MessageHandler func(msg hyt.Message, from *net.UDPAddr)

// RTPHandler receives a decoded RTP packet for voice ports.
type RTPHandler func(pkt *rtp.Packet, from *net.UDPAddr)

type pendingAck struct {
	done         chan hyt.Message
	registeredAt time.Time
}

// pendingCallback is a one-shot ack handler registered by SendAsync,
// invoked exactly once when the matching Ack arrives (or with a nil
// message if it is reaped as stale first).
type pendingCallback struct {
	fn           func(hyt.Message)
	registeredAt time.Time
}

// Session owns one UDP socket and the HYT sequence/ack/heartbeat state
// for a single repeater port.
type Session struct {
	config Config
	logger *logger.Logger

	conn *net.UDPConn

	mu       sync.RWMutex
	state    State
	remote   *net.UDPAddr
	lastSeen time.Time
	nextSeq  uint16

	ackMu     sync.Mutex
	pending   map[uint16]*pendingAck
	callbacks map[uint16]*pendingCallback

	onMessage MessageHandler
	onRTP     RTPHandler

	stopCh chan struct{}
	doneWG sync.WaitGroup
}

// New creates a session for config.LocalAddr. The UDP socket is not
// bound and no network goroutines run until Start is called.
func New(cfg Config) (*Session, error) {
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = HeartbeatInterval
	}
	if cfg.HeartbeatTimeout == 0 {
		cfg.HeartbeatTimeout = HeartbeatTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	return &Session{
		config:    cfg,
		logger:    log.WithPort(cfg.Service, 0),
		pending:   make(map[uint16]*pendingAck),
		callbacks: make(map[uint16]*pendingCallback),
		stopCh:    make(chan struct{}),
	}, nil
}

// SetMessageCallback installs the handler invoked for decoded HYT
// messages on a TxCtrl port. Must be called before Start.
func (s *Session) SetMessageCallback(h MessageHandler) { s.onMessage = h }

// SetRtpCallback installs the handler invoked for decoded RTP packets on
// a voice port. Must be called before Start.
func (s *Session) SetRtpCallback(h RTPHandler) { s.onRTP = h }

// Start opens the UDP socket and launches the receive and watchdog
// goroutines.
func (s *Session) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", s.config.LocalAddr)
	if err != nil {
		return fmt.Errorf("session: resolve %s: %w", s.config.LocalAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("session: bind %s: %w", s.config.LocalAddr, hyterr.ErrBindFailure)
	}
	s.conn = conn
	s.logger.Info("session listening", logger.String("local", conn.LocalAddr().String()))

	s.doneWG.Add(2)
	go s.receiveLoop(ctx)
	go s.watchdogLoop(ctx)

	return nil
}

// Stop closes the socket and unblocks any goroutines started by Start.
func (s *Session) Stop() error {
	close(s.stopCh)
	var err error
	if s.conn != nil {
		err = s.conn.Close()
	}
	s.doneWG.Wait()
	s.failAllPending(hyterr.ErrClosed)
	return err
}

// IsConnected reports whether a Syn handshake has completed and the
// watchdog has not since timed out.
func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateConnected
}

// nextSequence returns the next outbound sequence ID, wrapping mod 2^16.
func (s *Session) nextSequence() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.nextSeq
	s.nextSeq++
	return seq
}

// resetSequence restarts the outbound sequence generator, as required on
// receipt of a fresh Syn (spec.md §5).
func (s *Session) resetSequence() {
	s.mu.Lock()
	s.nextSeq = 0
	s.mu.Unlock()
}

func (s *Session) setRemote(addr *net.UDPAddr) {
	s.mu.Lock()
	s.remote = addr
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	changed := s.state != st
	s.state = st
	s.mu.Unlock()
	if changed {
		s.logger.Info("session state change", logger.String("state", st.String()))
	}
}

// Send transmits a TxCtrl message as a ToRadio frame and returns the
// sequence ID assigned, for callers that want to correlate a later ack
// themselves rather than calling WaitAck.
func (s *Session) Send(msg txctrl.Message, reliable bool) (uint16, error) {
	if msg == nil {
		return 0, hyterr.ErrNilMessage
	}
	s.mu.RLock()
	remote := s.remote
	s.mu.RUnlock()
	if remote == nil {
		return 0, hyterr.ErrSendWhileDisconnected
	}

	seq := s.nextSequence()
	frame := &hyt.ToRadio{Seq: seq, TxCtrl: msg, Reliable: reliable}
	data, err := hyt.Encode(frame)
	if err != nil {
		return 0, err
	}
	if _, err := s.conn.WriteToUDP(data, remote); err != nil {
		return 0, fmt.Errorf("session: write: %w", err)
	}
	return seq, nil
}

// SendAsync transmits msg as a ToRadio frame and registers onAck to be
// invoked exactly once with the matching Ack, without blocking the caller
// (the callback-based ack-matching mode of spec.md §4.4.5, coexisting
// with WaitAck's blocking mode). On a matching Ack, onAck fires from the
// receive goroutine; it must not block or call back into Session
// synchronously. If the ack never arrives, onAck is invoked once with a
// nil message when ReapStaleAcks sweeps the registration, when the
// watchdog marks the session disconnected, or when Stop runs; until one
// of those happens the registration stays in place.
func (s *Session) SendAsync(msg txctrl.Message, reliable bool, onAck func(hyt.Message)) (uint16, error) {
	s.mu.RLock()
	remote := s.remote
	s.mu.RUnlock()
	if remote == nil {
		return 0, hyterr.ErrSendWhileDisconnected
	}

	seq := s.nextSequence()
	frame := &hyt.ToRadio{Seq: seq, TxCtrl: msg, Reliable: reliable}
	data, err := hyt.Encode(frame)
	if err != nil {
		return 0, err
	}

	if onAck != nil {
		s.ackMu.Lock()
		s.callbacks[seq] = &pendingCallback{fn: onAck, registeredAt: time.Now()}
		s.ackMu.Unlock()
	}

	if _, err := s.conn.WriteToUDP(data, remote); err != nil {
		if onAck != nil {
			s.ackMu.Lock()
			delete(s.callbacks, seq)
			s.ackMu.Unlock()
		}
		return 0, fmt.Errorf("session: write: %w", err)
	}
	return seq, nil
}

// WaitAck sends msg and blocks until the matching ack arrives, ctx is
// done, or the session's HeartbeatTimeout elapses. Config has no separate
// ack-timeout setting; ReapStaleAcks, the watchdog, or Stop can end the
// wait earlier with ErrAckTimeout.
func (s *Session) WaitAck(ctx context.Context, msg txctrl.Message) (hyt.Message, error) {
	s.ackMu.Lock()
	seq, err := s.sendTracked(msg)
	if err != nil {
		s.ackMu.Unlock()
		return nil, err
	}
	wait := &pendingAck{done: make(chan hyt.Message, 1), registeredAt: time.Now()}
	s.pending[seq] = wait
	s.ackMu.Unlock()

	defer func() {
		s.ackMu.Lock()
		delete(s.pending, seq)
		s.ackMu.Unlock()
	}()

	select {
	case reply := <-wait.done:
		if reply == nil {
			return nil, hyterr.ErrAckTimeout
		}
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.config.HeartbeatTimeout):
		return nil, hyterr.ErrAckTimeout
	}
}

func (s *Session) sendTracked(msg txctrl.Message) (uint16, error) {
	s.mu.RLock()
	remote := s.remote
	s.mu.RUnlock()
	if remote == nil {
		return 0, hyterr.ErrSendWhileDisconnected
	}
	seq := s.nextSequence()
	frame := &hyt.ToRadio{Seq: seq, TxCtrl: msg, Reliable: true}
	data, err := hyt.Encode(frame)
	if err != nil {
		return 0, err
	}
	if _, err := s.conn.WriteToUDP(data, remote); err != nil {
		return 0, fmt.Errorf("session: write: %w", err)
	}
	return seq, nil
}

// failAllPending wakes every blocked WaitAck call with a nil reply, which
// WaitAck translates to ErrAckTimeout, and fires every registered
// SendAsync callback with a nil message; err is accepted for call-site
// clarity but the wire-level reason is always a lost/absent ack.
func (s *Session) failAllPending(err error) {
	s.ackMu.Lock()
	var callbacks []*pendingCallback
	for seq, p := range s.pending {
		select {
		case p.done <- nil:
		default:
		}
		delete(s.pending, seq)
	}
	for seq, cb := range s.callbacks {
		callbacks = append(callbacks, cb)
		delete(s.callbacks, seq)
	}
	s.ackMu.Unlock()

	for _, cb := range callbacks {
		cb.fn(nil)
	}
}

// ReapStaleAcks wakes (with a nil/timeout reply) any WaitAck call whose
// registration is older than maxAge, and fires any SendAsync callback
// registered longer than maxAge ago with a nil message, addressing the
// leaked-callback condition where a radio drops an individual reliable
// message without dropping the whole session: the watchdog never trips
// because heartbeats keep arriving, so nothing else would ever free
// these. It returns the total number of registrations it reaped.
func (s *Session) ReapStaleAcks(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.ackMu.Lock()
	var expiredCallbacks []*pendingCallback
	reaped := 0
	for seq, p := range s.pending {
		if p.registeredAt.After(cutoff) {
			continue
		}
		select {
		case p.done <- nil:
		default:
		}
		delete(s.pending, seq)
		reaped++
	}
	for seq, cb := range s.callbacks {
		if cb.registeredAt.After(cutoff) {
			continue
		}
		expiredCallbacks = append(expiredCallbacks, cb)
		delete(s.callbacks, seq)
		reaped++
	}
	s.ackMu.Unlock()

	for _, cb := range expiredCallbacks {
		cb.fn(nil)
	}
	return reaped
}

// deliverAck matches an inbound Ack frame against a registered SendAsync
// callback or a waiting WaitAck call, per spec.md §4.4.5's two coexisting
// ack-matching modes. A callback match, if present, takes priority and
// fires at most once; otherwise the ack wakes the corresponding blocking
// waiter, if any.
func (s *Session) deliverAck(seq uint16, msg hyt.Message) {
	s.ackMu.Lock()
	cb, hasCB := s.callbacks[seq]
	if hasCB {
		delete(s.callbacks, seq)
	}
	p, hasWait := s.pending[seq]
	s.ackMu.Unlock()

	if hasCB {
		cb.fn(msg)
		return
	}
	if !hasWait {
		return
	}
	select {
	case p.done <- msg:
	default:
	}
}

func (s *Session) receiveLoop(ctx context.Context) {
	defer s.doneWG.Done()
	buf := make([]byte, 2048)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
			s.logger.Debug("set read deadline failed", logger.Error(err))
		}
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-s.stopCh:
				return
			default:
			}
			s.logger.Warn("read failed", logger.Error(err))
			continue
		}

		if s.config.RTP {
			s.handleRTPDatagram(buf[:n], addr)
			continue
		}
		s.handleHYTDatagram(buf[:n], addr)
	}
}

func (s *Session) handleRTPDatagram(data []byte, addr *net.UDPAddr) {
	pkt, err := rtp.Decode(data)
	if err != nil {
		s.logger.Debug("rtp decode failed", logger.Error(err))
		return
	}
	s.touch()
	if s.onRTP != nil {
		s.onRTP(pkt, addr)
	}
}

func (s *Session) handleHYTDatagram(data []byte, addr *net.UDPAddr) {
	msg, err := hyt.Decode(data, s.config.HYT)
	if err != nil {
		s.logger.Debug("hyt decode failed", logger.Error(err))
		return
	}
	s.touch()

	switch m := msg.(type) {
	case *hyt.Syn:
		s.logger.Info("syn received",
			logger.Uint16("seq", m.Seq),
			logger.Uint32("radio_id", m.Header.RadioID))
		s.setRemote(addr)
		s.resetSequence()
		s.setState(StateConnected)
		ack, _ := hyt.Encode(&hyt.SynAck{Seq: m.Seq})
		if _, err := s.conn.WriteToUDP(ack, addr); err != nil {
			s.logger.Warn("synack send failed", logger.Error(err))
		}
	case *hyt.Heartbeat:
		s.touch()
		reply, _ := hyt.Encode(&hyt.Heartbeat{Seq: m.Seq})
		if _, err := s.conn.WriteToUDP(reply, addr); err != nil {
			s.logger.Warn("heartbeat reply failed", logger.Error(err))
		}
	case *hyt.Ack:
		s.deliverAck(m.Seq, m)
	case *hyt.FromRadio:
		if !s.IsConnected() {
			s.logger.Debug("discarding FromRadio while disconnected", logger.Uint16("seq", m.Seq))
			return
		}
		ack, err := hyt.Encode(&hyt.Ack{Seq: m.Seq})
		if err != nil {
			s.logger.Warn("fromradio ack encode failed", logger.Error(err))
			return
		}
		if _, err := s.conn.WriteToUDP(ack, addr); err != nil {
			s.logger.Warn("fromradio ack send failed", logger.Error(err))
		}
		if s.onMessage != nil {
			s.onMessage(m, addr)
		}
	default:
		if s.onMessage != nil {
			s.onMessage(m, addr)
		}
	}
}

func (s *Session) watchdogLoop(ctx context.Context) {
	defer s.doneWG.Done()
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.RLock()
			remote := s.remote
			last := s.lastSeen
			connected := s.state == StateConnected
			s.mu.RUnlock()

			if !connected || remote == nil {
				continue
			}
			if time.Since(last) > s.config.HeartbeatTimeout {
				s.logger.Error("heartbeat timeout, marking disconnected",
					logger.Duration("since_last_seen", time.Since(last)))
				s.setState(StateDisconnected)
				s.failAllPending(hyterr.ErrAckTimeout)
				continue
			}

			seq := s.nextSequence()
			data, err := hyt.Encode(&hyt.Heartbeat{Seq: seq})
			if err != nil {
				continue
			}
			if _, err := s.conn.WriteToUDP(data, remote); err != nil {
				s.logger.Debug("heartbeat send failed", logger.Error(err))
			}
		}
	}
}
