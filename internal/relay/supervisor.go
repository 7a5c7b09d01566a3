package relay

import (
	"sync"
	"time"

	"github.com/webcungs/order-relay/internal/logger"
	"github.com/webcungs/order-relay/internal/metrics"
	"github.com/webcungs/order-relay/internal/state"
)

// ConnState is the supervisor's view of the adapter lifecycle
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateReady
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	default:
		return "disconnected"
	}
}

// Notices sent best-effort to the previously cached group when the session
// goes away. Failures are ignored.
const (
	sessionExpiredNotice = "WhatsApp session expired. Orders will not be relayed until the new QR code is scanned."
	disconnectedNotice   = "Connection to WhatsApp lost, reconnecting..."
)

// SupervisorOptions wires the supervisor to its collaborators. Notify,
// Restart and ResolveGroup are injected so transitions stay testable without
// a live adapter.
type SupervisorOptions struct {
	Store          *state.Store
	Log            *logger.Logger
	ReconnectDelay time.Duration

	// Notify sends a best-effort text to a group JID
	Notify func(groupJID, text string)
	// Restart destroys and re-initializes the adapter. fresh drops the
	// stored device so a new QR pairing is required.
	Restart func(fresh bool)
	// ResolveGroup looks the configured group up in the adapter's live chat
	// list. Empty JID with nil error means the group was not found.
	ResolveGroup func() (string, error)
}

// Supervisor advances the reconnect state machine:
//
//	DISCONNECTED -> CONNECTING (QR issued) -> READY -> (logout | disconnect) -> DISCONNECTED
//
// Reconnect attempts are unbounded with a fixed delay; that mirrors the
// deployed behavior rather than a hardened ideal.
type Supervisor struct {
	mu      sync.Mutex
	current ConnState
	timer   *time.Timer

	store *state.Store
	log   *logger.Logger
	delay time.Duration

	notify       func(groupJID, text string)
	restart      func(fresh bool)
	resolveGroup func() (string, error)
}

func NewSupervisor(opts SupervisorOptions) *Supervisor {
	return &Supervisor{
		current:      StateConnecting,
		store:        opts.Store,
		log:          opts.Log,
		delay:        opts.ReconnectDelay,
		notify:       opts.Notify,
		restart:      opts.Restart,
		resolveGroup: opts.ResolveGroup,
	}
}

// State returns the current connection state
func (s *Supervisor) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// OnQR records a freshly issued QR code. The machine stays in CONNECTING.
func (s *Supervisor) OnQR(code string) {
	s.store.SetQR(code)

	s.mu.Lock()
	s.current = StateConnecting
	s.mu.Unlock()

	s.log.Info("QR code issued, waiting for scan")
}

// OnConnected transitions to READY and resolves the configured group from
// the adapter's chat list. Readiness is recorded even when the group cannot
// be found; the missing reference is surfaced as a warning. A reconnect
// still pending from an earlier disconnect is cancelled first: the adapter
// reconnects on its own after transient drops, and restarting a session
// that already recovered would tear it down again.
func (s *Supervisor) OnConnected() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.log.Debug("Session recovered, cancelling scheduled reconnect")
	}
	s.mu.Unlock()

	groupJID, err := s.resolveGroup()
	if err != nil {
		s.log.Error("Failed to resolve group chat", err)
		groupJID = ""
	}

	s.store.SetReady(groupJID)

	s.mu.Lock()
	s.current = StateReady
	s.mu.Unlock()

	if groupJID == "" {
		s.log.Warn("Configured group not found in chat list; group relay is inactive")
		return
	}
	s.log.Infof("Session ready, relaying orders from group %s", groupJID)
}

// OnLoggedOut handles an authentication failure: clear the cache, tell the
// group best-effort, then immediately destroy and re-initialize the adapter
// with a fresh device so a new QR is requested.
func (s *Supervisor) OnLoggedOut(reason string) {
	s.log.Warnf("WhatsApp session logged out: %s", reason)
	metrics.Reconnects.WithLabelValues("auth_failure").Inc()

	prevGroup, hadGroup := s.store.GroupJID()
	s.store.Clear()

	s.mu.Lock()
	s.current = StateDisconnected
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if hadGroup {
		s.notify(prevGroup, sessionExpiredNotice)
	}

	s.restart(true)
}

// OnDisconnected handles a dropped connection: clear the cache, tell the
// group best-effort, and schedule a reconnect after a fixed delay to avoid
// a tight loop. A reconnect already pending is left alone.
func (s *Supervisor) OnDisconnected(reason string) {
	s.log.Warnf("WhatsApp disconnected: %s", reason)
	metrics.Reconnects.WithLabelValues("disconnected").Inc()

	prevGroup, hadGroup := s.store.GroupJID()
	s.store.Clear()

	s.mu.Lock()
	s.current = StateDisconnected
	alreadyPending := s.timer != nil
	if !alreadyPending {
		s.timer = time.AfterFunc(s.delay, func() {
			s.mu.Lock()
			s.timer = nil
			s.mu.Unlock()
			s.restart(false)
		})
	}
	s.mu.Unlock()

	if hadGroup {
		s.notify(prevGroup, disconnectedNotice)
	}

	if alreadyPending {
		s.log.Debug("Reconnect already scheduled, ignoring duplicate disconnect")
	}
}
