package relay_test

import (
	"sync"
	"testing"
	"time"

	"github.com/webcungs/order-relay/internal/logger"
	"github.com/webcungs/order-relay/internal/relay"
	"github.com/webcungs/order-relay/internal/state"
)

type supervisorHarness struct {
	mu       sync.Mutex
	notices  []string
	restarts []bool

	store    *state.Store
	groupJID string
	sup      *relay.Supervisor
}

func newHarness(t *testing.T, delay time.Duration) *supervisorHarness {
	t.Helper()

	h := &supervisorHarness{
		store:    state.New(),
		groupJID: "12036302@g.us",
	}
	h.sup = relay.NewSupervisor(relay.SupervisorOptions{
		Store:          h.store,
		Log:            logger.New("disabled", "json"),
		ReconnectDelay: delay,
		Notify: func(jid, text string) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.notices = append(h.notices, jid+": "+text)
		},
		Restart: func(fresh bool) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.restarts = append(h.restarts, fresh)
		},
		ResolveGroup: func() (string, error) {
			return h.groupJID, nil
		},
	})
	return h
}

func (h *supervisorHarness) restartCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.restarts)
}

func (h *supervisorHarness) noticeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.notices)
}

func TestSupervisor_StartsConnecting(t *testing.T) {
	h := newHarness(t, time.Second)
	if got := h.sup.State(); got != relay.StateConnecting {
		t.Errorf("initial state = %v, want connecting", got)
	}
}

func TestSupervisor_OnQR(t *testing.T) {
	h := newHarness(t, time.Second)

	h.sup.OnQR("2@abcdef")

	if got := h.sup.State(); got != relay.StateConnecting {
		t.Errorf("state after QR = %v, want connecting", got)
	}
	code, ok := h.store.QR()
	if !ok || code != "2@abcdef" {
		t.Errorf("cached QR = %q, %v", code, ok)
	}
}

func TestSupervisor_OnConnected_ResolvesGroup(t *testing.T) {
	h := newHarness(t, time.Second)

	h.sup.OnConnected()

	if got := h.sup.State(); got != relay.StateReady {
		t.Errorf("state = %v, want ready", got)
	}
	if !h.store.Ready() {
		t.Error("store not marked ready")
	}
	jid, ok := h.store.GroupJID()
	if !ok || jid != "12036302@g.us" {
		t.Errorf("cached group = %q, %v", jid, ok)
	}
}

func TestSupervisor_OnConnected_GroupMissing(t *testing.T) {
	h := newHarness(t, time.Second)
	h.groupJID = ""

	h.sup.OnConnected()

	if !h.store.Ready() {
		t.Error("readiness must be recorded even when the group is absent")
	}
	if _, ok := h.store.GroupJID(); ok {
		t.Error("no group should be cached")
	}
}

func TestSupervisor_OnLoggedOut_ImmediateFreshRestart(t *testing.T) {
	h := newHarness(t, time.Hour) // delay must not apply to logout
	h.sup.OnConnected()

	h.sup.OnLoggedOut("device removed")

	if got := h.sup.State(); got != relay.StateDisconnected {
		t.Errorf("state = %v, want disconnected", got)
	}
	if h.store.Ready() {
		t.Error("store still ready after logout")
	}
	if h.restartCount() != 1 {
		t.Fatalf("restarts = %d, want 1 immediate restart", h.restartCount())
	}
	h.mu.Lock()
	fresh := h.restarts[0]
	h.mu.Unlock()
	if !fresh {
		t.Error("logout restart must drop the stored device")
	}
	if h.noticeCount() != 1 {
		t.Errorf("notices = %d, want expiry notice to the cached group", h.noticeCount())
	}
}

func TestSupervisor_OnDisconnected_DelayedRestart(t *testing.T) {
	h := newHarness(t, 20*time.Millisecond)
	h.sup.OnConnected()

	h.sup.OnDisconnected("socket closed")

	if h.store.Ready() {
		t.Error("store still ready after disconnect")
	}
	if h.restartCount() != 0 {
		t.Fatal("restart must not run before the delay elapses")
	}

	time.Sleep(100 * time.Millisecond)

	if h.restartCount() != 1 {
		t.Fatalf("restarts = %d, want 1 after delay", h.restartCount())
	}
	h.mu.Lock()
	fresh := h.restarts[0]
	h.mu.Unlock()
	if fresh {
		t.Error("disconnect restart must keep the stored device")
	}
}

func TestSupervisor_ConnectedCancelsPendingReconnect(t *testing.T) {
	h := newHarness(t, 50*time.Millisecond)
	h.sup.OnConnected()

	// The adapter reconnects by itself after a transient drop, so the
	// connected event lands before the scheduled reconnect fires
	h.sup.OnDisconnected("transient drop")
	h.sup.OnConnected()

	time.Sleep(150 * time.Millisecond)

	if h.restartCount() != 0 {
		t.Errorf("restarts = %d, want none once the session recovered", h.restartCount())
	}
	if got := h.sup.State(); got != relay.StateReady {
		t.Errorf("state = %v, want ready", got)
	}
	if !h.store.Ready() {
		t.Error("store not marked ready after recovery")
	}
}

func TestSupervisor_OnDisconnected_DoesNotStackRestarts(t *testing.T) {
	h := newHarness(t, 20*time.Millisecond)
	h.sup.OnConnected()

	h.sup.OnDisconnected("first")
	h.sup.OnDisconnected("second")

	time.Sleep(100 * time.Millisecond)

	if h.restartCount() != 1 {
		t.Errorf("restarts = %d, want 1 for duplicate disconnects", h.restartCount())
	}
}

func TestSupervisor_NoNoticeWithoutCachedGroup(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	h.groupJID = ""
	h.sup.OnConnected()

	h.sup.OnDisconnected("socket closed")
	time.Sleep(50 * time.Millisecond)

	if h.noticeCount() != 0 {
		t.Errorf("notices = %d, want none without a cached group", h.noticeCount())
	}
}

func TestSupervisor_ReconnectCycle(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)

	h.sup.OnQR("2@first")
	h.sup.OnConnected()
	h.sup.OnDisconnected("drop")
	time.Sleep(50 * time.Millisecond)
	h.sup.OnQR("2@second")
	h.sup.OnConnected()

	if got := h.sup.State(); got != relay.StateReady {
		t.Errorf("state after cycle = %v, want ready", got)
	}
	jid, ok := h.store.GroupJID()
	if !ok || jid != "12036302@g.us" {
		t.Errorf("group not re-cached after reconnect: %q, %v", jid, ok)
	}
}
