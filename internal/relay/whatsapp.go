package relay

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"github.com/webcungs/order-relay/internal/logger"
	"github.com/webcungs/order-relay/internal/metrics"
	"github.com/webcungs/order-relay/internal/order"
	"github.com/webcungs/order-relay/internal/state"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	wastore "go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// Config holds the adapter-facing configuration
type Config struct {
	DBDriver       string
	DBDSN          string
	WALogLevel     string
	DeviceName     string
	GroupName      string
	ReconnectDelay time.Duration
	Heartbeat      time.Duration
}

// Client wraps the whatsmeow client with session caching, order relay, and
// reconnect supervision
type Client struct {
	mu        sync.Mutex // guards wa, runCtx and qrActive across restarts
	wa        *whatsmeow.Client
	container *sqlstore.Container
	clientLog waLog.Logger
	runCtx    context.Context // set by Start; bounds reconnects and QR pairing
	qrActive  bool

	store    *state.Store
	notifier *order.Notifier
	sup      *Supervisor
	log      *logger.Logger
	cfg      Config
}

// New creates the WhatsApp client and its reconnect supervisor
func New(ctx context.Context, cfg Config, st *state.Store, notifier *order.Notifier, log *logger.Logger) (*Client, error) {
	dbLog := waLog.Stdout("Database", cfg.WALogLevel, true)

	container, err := sqlstore.New(ctx, cfg.DBDriver, cfg.DBDSN, dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to create database container: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	if cfg.DeviceName == "" {
		cfg.DeviceName = "macOS"
	}
	// Customize the OS name shown in WhatsApp's linked devices
	wastore.SetOSInfo(cfg.DeviceName, [3]uint32{0, 1, 0})
	device.Platform = cfg.DeviceName

	clientLog := waLog.Stdout("Client", cfg.WALogLevel, true)

	c := &Client{
		wa:        whatsmeow.NewClient(device, clientLog),
		container: container,
		clientLog: clientLog,
		runCtx:    context.Background(),
		store:     st,
		notifier:  notifier,
		log:       log,
		cfg:       cfg,
	}

	c.sup = NewSupervisor(SupervisorOptions{
		Store:          st,
		Log:            log,
		ReconnectDelay: cfg.ReconnectDelay,
		Notify:         c.notifyGroup,
		Restart: func(fresh bool) {
			// Never restart from inside the event dispatch goroutine
			go c.restart(fresh)
		},
		ResolveGroup: c.resolveGroupJID,
	})

	c.wa.AddEventHandler(c.handleEvent)

	return c, nil
}

// handleEvent maps adapter events onto the supervisor's transitions
func (c *Client) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		c.sup.OnConnected()
	case *events.LoggedOut:
		c.sup.OnLoggedOut(fmt.Sprintf("%v", v.Reason))
	case *events.Disconnected:
		c.sup.OnDisconnected("connection closed")
	case *events.StreamReplaced:
		c.sup.OnDisconnected("stream replaced by another session")
	case *events.Message:
		c.handleMessage(v)
	}
}

// Start connects the adapter and begins the heartbeat loop. With no stored
// session it kicks off QR authentication in the background so the HTTP
// server can start serving /qr right away.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	c.runCtx = ctx
	c.mu.Unlock()

	go c.heartbeatLoop(ctx)
	return c.connect(ctx)
}

func (c *Client) connect(ctx context.Context) error {
	c.mu.Lock()
	wa := c.wa
	c.mu.Unlock()

	if wa.Store.ID == nil {
		if !c.beginQRAuth() {
			c.log.Debug("QR authentication already in progress, not starting another loop")
			return nil
		}
		c.log.Info("No existing session found, starting QR authentication...")
		go func() {
			defer c.endQRAuth()
			c.authenticateWithQR(ctx)
		}()
		return nil
	}

	c.log.Info("Existing session found. Connecting...")
	if err := wa.Connect(); err != nil {
		return fmt.Errorf("failed to connect client: %w", err)
	}
	return nil
}

// restart tears the adapter down and brings it back up. fresh drops the
// stored device so the next connect requests a new QR pairing. Connect
// failures reschedule another attempt; there is no attempt bound. The run
// context cancels the whole cycle on shutdown.
func (c *Client) restart(fresh bool) {
	c.mu.Lock()
	ctx := c.runCtx
	c.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	c.wa.Disconnect()
	if fresh {
		if err := c.wa.Store.Delete(ctx); err != nil {
			c.log.Error("Failed to delete device store", err)
		}
		device, err := c.container.GetFirstDevice(ctx)
		if err != nil {
			c.mu.Unlock()
			c.log.Error("Failed to recreate device store", err)
			time.AfterFunc(c.cfg.ReconnectDelay, func() { c.restart(fresh) })
			return
		}
		device.Platform = c.cfg.DeviceName
		c.wa = whatsmeow.NewClient(device, c.clientLog)
		c.wa.AddEventHandler(c.handleEvent)
	}
	c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		c.log.Error("Reconnect failed, retrying", err)
		time.AfterFunc(c.cfg.ReconnectDelay, func() { c.restart(false) })
	}
}

// beginQRAuth admits a QR pairing loop. It reports false while one is
// already running: disconnect events during pairing schedule restarts, and
// a restart must join the running loop rather than stack a second one.
func (c *Client) beginQRAuth() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.qrActive {
		return false
	}
	c.qrActive = true
	return true
}

func (c *Client) endQRAuth() {
	c.mu.Lock()
	c.qrActive = false
	c.mu.Unlock()
}

// authenticateWithQR drives the QR pairing loop. Each attempt gets a fresh
// 60 second QR context; the loop runs until pairing succeeds or ctx is
// cancelled.
func (c *Client) authenticateWithQR(ctx context.Context) {
	const attemptDelay = 5 * time.Second

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if attempt > 1 {
			c.log.Infof("Generating new QR code (attempt %d)...", attempt)
			time.Sleep(attemptDelay)
		}

		qrCtx, qrCancel := context.WithTimeout(ctx, 60*time.Second)

		c.mu.Lock()
		wa := c.wa
		c.mu.Unlock()

		// Pairing may have completed between attempts; a paired store
		// makes GetQRChannel error forever
		if wa.Store.ID != nil {
			qrCancel()
			c.log.Info("Device already paired, stopping QR loop")
			return
		}

		qrChan, err := wa.GetQRChannel(qrCtx)
		if err != nil {
			qrCancel()
			c.log.Errorf("Failed to get QR channel: %v", err)
			continue
		}

		if !wa.IsConnected() {
			if err := wa.Connect(); err != nil {
				qrCancel()
				c.log.Errorf("Failed to connect client: %v", err)
				continue
			}
		}

		success, cancelled := c.handleQREvents(ctx, qrCtx, qrChan)
		qrCancel()

		if cancelled {
			c.log.Info("QR authentication cancelled")
			return
		}
		if success {
			c.log.Info("WhatsApp authentication successful")
			return
		}

		c.log.Warn("QR code authentication failed, retrying with a new QR code...")
	}
}

// handleQREvents processes QR channel items and returns (success, cancelled)
func (c *Client) handleQREvents(parentCtx, qrCtx context.Context, qrChan <-chan whatsmeow.QRChannelItem) (bool, bool) {
	for {
		select {
		case <-parentCtx.Done():
			return false, true

		case <-qrCtx.Done():
			c.log.Warn("QR code timed out without being scanned")
			return false, false

		case evt, ok := <-qrChan:
			if !ok {
				select {
				case <-parentCtx.Done():
					return false, true
				default:
					return false, false
				}
			}

			switch evt.Event {
			case "code":
				c.sup.OnQR(evt.Code)
				c.renderQR(evt.Code)

			case "success":
				c.log.Info("QR code scanned, completing authentication...")
				return true, false

			case "timeout":
				c.log.Warn("QR code expired, generating new one...")
				return false, false

			default:
				c.log.Infof("Authentication event: %s", evt.Event)
			}
		}
	}
}

// renderQR prints the QR code to the terminal for operators without access
// to the /qr page
func (c *Client) renderQR(code string) {
	fmt.Println("\n" + strings.Repeat("=", 64))
	fmt.Println("Scan this QR code with the WhatsApp mobile app")
	fmt.Println("(or open the /qr page in a browser)")
	fmt.Println(strings.Repeat("=", 64))

	qrterminal.GenerateWithConfig(code, qrterminal.Config{
		Level:      qrterminal.M,
		Writer:     os.Stdout,
		HalfBlocks: true,
		QuietZone:  1,
	})

	fmt.Println(strings.Repeat("=", 64) + "\n")
}

// resolveGroupJID looks the configured group name up in the adapter's joined
// group list. Exact display-name match only. Empty JID with nil error means
// the group is not there.
func (c *Client) resolveGroupJID() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.mu.Lock()
	wa := c.wa
	c.mu.Unlock()

	groups, err := wa.GetJoinedGroups(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get joined groups: %w", err)
	}

	for _, g := range groups {
		if g.Name == c.cfg.GroupName {
			return g.JID.String(), nil
		}
	}
	return "", nil
}

// notifyGroup sends a best-effort text to a group; failures are logged at
// debug and dropped
func (c *Client) notifyGroup(groupJID, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.SendText(ctx, groupJID, text); err != nil {
		c.log.Debugf("Best-effort group notice failed: %v", err)
	}
}

// SendText sends a text message to the specified JID
func (c *Client) SendText(ctx context.Context, toJID, text string) error {
	jid, err := types.ParseJID(toJID)
	if err != nil {
		return fmt.Errorf("invalid JID %s: %w", toJID, err)
	}

	msg := &waE2E.Message{
		Conversation: proto.String(text),
	}

	c.mu.Lock()
	wa := c.wa
	c.mu.Unlock()

	if _, err := wa.SendMessage(ctx, jid, msg); err != nil {
		metrics.MessagesSent.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to send message: %w", err)
	}

	metrics.MessagesSent.WithLabelValues("ok").Inc()
	c.log.Infof("Message sent to %s", toJID)
	return nil
}

// IsReady reports whether the session is established and the socket is up
func (c *Client) IsReady() bool {
	c.mu.Lock()
	wa := c.wa
	c.mu.Unlock()

	return c.store.Ready() && wa.IsConnected()
}

// ConnectionState returns the supervisor's state name for /status
func (c *Client) ConnectionState() string {
	return c.sup.State().String()
}

// heartbeatLoop refreshes presence on a fixed interval so the session does
// not idle out server-side. Outcomes are informational only and never drive
// state changes; the supervisor reacts to adapter events, not to this loop.
func (c *Client) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.heartbeat(ctx)
		}
	}
}

func (c *Client) heartbeat(ctx context.Context) {
	c.mu.Lock()
	wa := c.wa
	c.mu.Unlock()

	if !wa.IsConnected() || !wa.IsLoggedIn() {
		c.log.Debugf("Heartbeat skipped: connected=%v loggedIn=%v", wa.IsConnected(), wa.IsLoggedIn())
		return
	}

	hbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := wa.SendPresence(hbCtx, types.PresenceAvailable); err != nil {
		c.log.Debugf("Heartbeat presence refresh failed: %v", err)
		return
	}
	c.log.Debug("Heartbeat: presence refreshed")
}

// Stop disconnects the adapter for shutdown
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.wa.Disconnect()
	c.log.Info("Disconnected from WhatsApp")
}
