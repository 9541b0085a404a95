package livesync

import (
	"context"
	"sync"
	"time"

	"sales-dashboard/src/analysis"
	"sales-dashboard/src/charts"
	"sales-dashboard/src/codec"
	"sales-dashboard/src/config"
	"sales-dashboard/src/interfaces"
	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"
	"sales-dashboard/src/render"
	"sales-dashboard/src/utils"
)

const inboxSize = 64

// Deps are the collaborators the controller drives.
type Deps struct {
	Source    interfaces.ISnapshotSource
	Dialer    interfaces.IChannelDialer
	Display   interfaces.IDisplay
	Charts    *charts.ChartSink
	Clock     interfaces.IClock    // nil means SystemClock
	Journal   interfaces.IDatabase // optional
	Listeners []interfaces.IStatusListener
}

// -----------------------------------------------------------------------------
// Controller
// -----------------------------------------------------------------------------

// Controller keeps the display in sync with the backend: a persistent push
// channel when it is live, a fallback poller when it is not, and a periodic
// history refresh either way.
//
// All sync state is owned by the goroutine running Run. Dials, pulls, channel
// reads and timers run elsewhere and post events back to it.
type Controller struct {
	Config    *config.Config
	Logger    *logger.Logger
	SessionID string

	source    interfaces.ISnapshotSource
	dialer    interfaces.IChannelDialer
	display   interfaces.IDisplay
	renderer  *render.SnapshotRenderer
	charts    *charts.ChartSink
	builder   *analysis.SeriesBuilder
	clock     interfaces.IClock
	journal   interfaces.IDatabase
	listeners []interfaces.IStatusListener

	inbox   chan event
	quit    chan struct{}
	ctx     context.Context
	writers sync.WaitGroup

	// Loop-owned
	state       ConnState
	attempt     int
	generation  uint64
	connEpoch   uint64
	conn        interfaces.IChannelConn
	lastApplied *models.MAcceptedSnapshot
	notified    *[2]bool
	loopStats   Stats

	// Shared with readers
	mu     sync.RWMutex
	stats  Stats
	events *utils.RingBuffer[models.MSyncEvent]
}

// -----------------------------------------------------------------------------

func NewController(cfg *config.Config, deps Deps, sessionID string, log *logger.Logger) *Controller {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return &Controller{
		Config:    cfg,
		Logger:    log.With("session", sessionID),
		SessionID: sessionID,
		source:    deps.Source,
		dialer:    deps.Dialer,
		display:   deps.Display,
		renderer:  render.NewSnapshotRenderer(deps.Display),
		charts:    deps.Charts,
		builder:   &analysis.SeriesBuilder{},
		clock:     clock,
		journal:   deps.Journal,
		listeners: deps.Listeners,
		inbox:     make(chan event, inboxSize),
		quit:      make(chan struct{}),
		state:     StateDisconnected,
		events:    utils.NewRingBuffer[models.MSyncEvent](cfg.Sync.EventLogSize),
		loopStats: Stats{PullHealthy: true},
	}
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// Run drives the controller until ctx is cancelled. It must be called once.
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	defer c.writers.Wait()
	defer close(c.quit)

	c.Logger.Info("Sync controller starting (channel attempts: %d, poll: %s, history: %s)",
		c.Config.Sync.MaxReconnectAttempts, c.Config.PollInterval(), c.Config.HistoryInterval())

	c.record("start", "")
	c.connect()
	c.pullSnapshot()
	c.pullHistory()
	c.armPoll()
	c.armHistory()
	c.publish()

	for {
		select {
		case <-ctx.Done():
			c.closeConn()
			c.record("stop", "")
			c.publish()
			c.Logger.Info("Sync controller stopped")
			return nil

		case ev := <-c.inbox:
			c.handle(ev)
			c.publish()
		}
	}
}

// -----------------------------------------------------------------------------

// Reconnect asks the controller to open the channel now, resetting the
// attempt counter. Any reconnect already scheduled becomes stale.
func (c *Controller) Reconnect() {
	c.post(event{kind: evManualReconnect})
}

// Stats returns a copy of the controller counters.
func (c *Controller) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// State returns the current connection state.
func (c *Controller) State() ConnState {
	return c.Stats().State
}

// Events returns the recent transitions, oldest first.
func (c *Controller) Events() []models.MSyncEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events.GetAll()
}

// -----------------------------------------------------------------------------
// Event loop
// -----------------------------------------------------------------------------

func (c *Controller) post(ev event) bool {
	select {
	case c.inbox <- ev:
		return true
	case <-c.quit:
		return false
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) handle(ev event) {
	switch ev.kind {
	case evChannelOpened:
		c.onOpened(ev)
	case evChannelFailed, evChannelClosed:
		c.onChannelDown(ev)
	case evChannelMessage:
		c.onMessage(ev)
	case evReconnectDue:
		c.onReconnectDue(ev)
	case evManualReconnect:
		c.onManualReconnect()
	case evProbeDue:
		c.onProbeDue(ev)
	case evPollDue:
		c.onPollDue()
	case evHistoryDue:
		c.pullHistory()
		c.armHistory()
	case evSnapshotPulled:
		c.onSnapshotPulled(ev)
	case evHistoryPulled:
		c.onHistoryPulled(ev)
	}
}

// -----------------------------------------------------------------------------
// Channel lifecycle
// -----------------------------------------------------------------------------

func (c *Controller) connect() {
	if c.state != StateDisconnected {
		return
	}

	c.connEpoch++
	epoch := c.connEpoch
	c.loopStats.Dials++
	c.transition(StateConnecting, "dial")

	ctx := c.ctx
	go func() {
		conn, err := c.dialer.Dial(ctx)
		if err != nil {
			c.post(event{kind: evChannelFailed, epoch: epoch, err: err})
			return
		}
		if !c.post(event{kind: evChannelOpened, epoch: epoch, conn: conn}) {
			conn.Close()
		}
	}()
}

// -----------------------------------------------------------------------------

func (c *Controller) onOpened(ev event) {
	if ev.epoch != c.connEpoch || c.state != StateConnecting {
		c.Logger.Debug("Dropping stale channel open (epoch %d)", ev.epoch)
		ev.conn.Close()
		return
	}

	c.conn = ev.conn
	c.attempt = 0
	c.loopStats.FallbackOnly = false
	c.transition(StateLive, "open")
	c.display.SetStatus(StatusLive, ClassOK)
	c.Logger.Info("Channel live")

	if !c.sendProbe() {
		return
	}
	c.armProbe(ev.epoch)
	go c.readLoop(ev.epoch, ev.conn)
}

// -----------------------------------------------------------------------------

func (c *Controller) readLoop(epoch uint64, conn interfaces.IChannelConn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			c.post(event{kind: evChannelClosed, epoch: epoch, err: err})
			return
		}
		if !c.post(event{kind: evChannelMessage, epoch: epoch, data: data}) {
			return
		}
	}
}

// -----------------------------------------------------------------------------

// onChannelDown handles both a failed open and the loss of a live channel.
func (c *Controller) onChannelDown(ev event) {
	if ev.epoch != c.connEpoch || c.state == StateDisconnected {
		c.Logger.Debug("Dropping stale channel event (epoch %d): %v", ev.epoch, ev.err)
		return
	}
	c.dropChannel(ev.err)
}

// dropChannel closes the connection and either schedules a reconnect or gives
// up on the channel for the rest of the run.
func (c *Controller) dropChannel(cause error) {
	c.closeConn()

	maxAttempts := c.Config.Sync.MaxReconnectAttempts
	if c.attempt >= maxAttempts {
		c.transition(StateDisconnected, "attempts exhausted")
		c.loopStats.FallbackOnly = true
		c.display.SetStatus(StatusFallbackOnly, ClassErr)
		c.Logger.Warning("Channel unavailable after %d attempts, relying on polling: %v", c.attempt, cause)
		return
	}

	c.attempt++
	c.transition(StateDisconnected, errText(cause))
	c.display.SetStatus(StatusReconnecting, ClassErr)

	delay := c.Config.ReconnectBaseDelay() * time.Duration(c.attempt)
	generation := c.generation
	c.clock.AfterFunc(delay, func() {
		c.post(event{kind: evReconnectDue, generation: generation})
	})
	c.loopStats.ReconnectsScheduled++
	c.loopStats.NextReconnectDelay = delay
	c.Logger.Warning("Channel down (%v), reconnect %d/%d in %s", cause, c.attempt, maxAttempts, delay)
}

// -----------------------------------------------------------------------------

func (c *Controller) onReconnectDue(ev event) {
	if ev.generation != c.generation || c.state != StateDisconnected {
		c.loopStats.StaleTimers++
		c.Logger.Debug("Ignoring stale reconnect timer (generation %d, now %d)", ev.generation, c.generation)
		return
	}
	c.connect()
}

func (c *Controller) onManualReconnect() {
	if c.state != StateDisconnected {
		return
	}
	c.attempt = 0
	c.loopStats.FallbackOnly = false
	c.connect()
}

// -----------------------------------------------------------------------------

func (c *Controller) closeConn() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil {
		c.Logger.Debug("Channel close: %v", err)
	}
	c.conn = nil
}

// -----------------------------------------------------------------------------
// Liveness probe
// -----------------------------------------------------------------------------

func (c *Controller) sendProbe() bool {
	if err := c.conn.SendText(models.ProbeMessage); err != nil {
		c.dropChannel(err)
		return false
	}
	c.loopStats.ProbesSent++
	return true
}

func (c *Controller) armProbe(epoch uint64) {
	c.clock.AfterFunc(c.Config.ProbeInterval(), func() {
		c.post(event{kind: evProbeDue, epoch: epoch})
	})
}

func (c *Controller) onProbeDue(ev event) {
	if ev.epoch != c.connEpoch || c.state != StateLive {
		return
	}
	if c.sendProbe() {
		c.armProbe(ev.epoch)
	}
}

// -----------------------------------------------------------------------------
// Inbound frames
// -----------------------------------------------------------------------------

func (c *Controller) onMessage(ev event) {
	if ev.epoch != c.connEpoch || c.state != StateLive {
		return
	}

	msg, err := codec.ParseChannelMessage(ev.data)
	if err != nil {
		c.loopStats.FramesDiscarded++
		c.Logger.Warning("Discarding channel frame: %v", err)
		return
	}
	if msg.Type != models.MessageTypeSnapshot {
		c.Logger.Debug("Ignoring channel frame of type %q", msg.Type)
		return
	}

	snap, err := codec.ParseSnapshot(msg.Data)
	if err != nil {
		c.loopStats.FramesDiscarded++
		c.Logger.Warning("Discarding pushed snapshot: %v", err)
		return
	}

	c.apply(&models.MAcceptedSnapshot{
		Snapshot:   snap,
		Origin:     models.OriginPush,
		ReceivedAt: c.clock.Now(),
		Payload:    msg.Data,
	})
}

// -----------------------------------------------------------------------------
// Pulls
// -----------------------------------------------------------------------------

func (c *Controller) armPoll() {
	c.clock.AfterFunc(c.Config.PollInterval(), func() {
		c.post(event{kind: evPollDue})
	})
}

func (c *Controller) onPollDue() {
	if c.state != StateLive {
		c.pullSnapshot()
	}
	c.armPoll()
}

func (c *Controller) pullSnapshot() {
	c.loopStats.PullsIssued++
	ctx := c.ctx
	go func() {
		acc, err := c.source.FetchSnapshot(ctx)
		c.post(event{kind: evSnapshotPulled, snapshot: acc, err: err})
	}()
}

func (c *Controller) onSnapshotPulled(ev event) {
	if ev.err != nil {
		c.loopStats.PullHealthy = false
		c.record("pull failed", ev.err.Error())
		if c.state != StateLive {
			c.display.SetStatus(StatusPollFailed, ClassErr)
		}
		c.Logger.Warning("Snapshot pull failed: %v", ev.err)
		return
	}

	c.loopStats.PullHealthy = true
	c.apply(ev.snapshot)
	if c.state != StateLive {
		c.display.SetStatus(StatusPolling, ClassOK)
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) armHistory() {
	c.clock.AfterFunc(c.Config.HistoryInterval(), func() {
		c.post(event{kind: evHistoryDue})
	})
}

func (c *Controller) pullHistory() {
	c.loopStats.HistoryPulls++
	ctx := c.ctx
	limit := c.Config.Backend.HistoryLimit
	go func() {
		points, err := c.source.FetchHistory(ctx, limit)
		c.post(event{kind: evHistoryPulled, points: points, err: err})
	}()
}

func (c *Controller) onHistoryPulled(ev event) {
	if ev.err != nil {
		c.Logger.Warning("History pull failed, charts unchanged: %v", ev.err)
		return
	}
	c.refreshLineCharts(ev.points)
}

// -----------------------------------------------------------------------------
// Applying data
// -----------------------------------------------------------------------------

// apply renders an accepted snapshot. The last one delivered wins.
func (c *Controller) apply(acc *models.MAcceptedSnapshot) {
	if prev := c.lastApplied; prev != nil && isOlder(acc.Snapshot, prev.Snapshot) {
		c.Logger.Warning("Applying %s snapshot older than the current one (%s < %s)",
			acc.Origin, *acc.Snapshot.LastTimestamp, *prev.Snapshot.LastTimestamp)
	}
	c.lastApplied = acc

	c.renderer.Render(acc.Snapshot)
	c.refreshDistribution(acc.Snapshot.SalesByProduct)
	c.loopStats.SnapshotsApplied++
	c.loopStats.LastApplied = acc.ReceivedAt

	if c.journal != nil {
		journal := c.journal
		c.writers.Add(1)
		go func() {
			defer c.writers.Done()
			if err := journal.SaveSnapshot(acc); err != nil {
				c.Logger.Error("Journal write failed: %v", err)
			}
		}()
	}

	if c.Config.Sync.HistoryOnSnapshot {
		c.pullHistory()
	}
}

func isOlder(next, prev *models.MSnapshot) bool {
	if next.LastTimestamp == nil || prev.LastTimestamp == nil {
		return false
	}
	return *next.LastTimestamp < *prev.LastTimestamp
}

// -----------------------------------------------------------------------------

func (c *Controller) refreshDistribution(sales map[string]float64) {
	if len(sales) == 0 || c.charts == nil {
		return
	}
	if c.charts.Ensure(charts.ChartDistribution, charts.KindPie, "") == nil {
		return
	}

	keys := render.SortedKeys(sales)
	datasets := []models.MDataset{analysis.DistributionDataset(keys, sales)}
	if err := c.charts.Update(charts.ChartDistribution, keys, datasets); err != nil {
		c.Logger.Error("Distribution chart: %v", err)
	}
}

// refreshLineCharts redraws the sales and stock charts. A chart whose surface
// is missing is skipped without affecting the other.
func (c *Controller) refreshLineCharts(points []models.MHistoryPoint) {
	set, ok := c.builder.Build(points)
	if !ok || c.charts == nil {
		return
	}

	lines := []struct {
		id       string
		axis     string
		datasets []models.MDataset
	}{
		{charts.ChartSales, "Vendas", analysis.SalesDatasets(set)},
		{charts.ChartStock, "Estoque", analysis.StockDatasets(set)},
	}

	for _, line := range lines {
		if c.charts.Ensure(line.id, charts.KindLine, line.axis) == nil {
			continue
		}
		if err := c.charts.Update(line.id, set.Labels, line.datasets); err != nil {
			c.Logger.Error("Line chart %s: %v", line.id, err)
		}
	}
}

// -----------------------------------------------------------------------------
// Bookkeeping
// -----------------------------------------------------------------------------

// transition moves to state and advances the generation. Reconnect timers
// armed before this point become no-ops.
func (c *Controller) transition(state ConnState, detail string) {
	c.state = state
	c.generation++
	c.record("transition", detail)
}

func (c *Controller) record(kind, detail string) {
	ev := models.MSyncEvent{
		At:         c.clock.Now(),
		Kind:       kind,
		State:      c.state.String(),
		Attempt:    c.attempt,
		Generation: c.generation,
		Detail:     detail,
	}

	c.mu.Lock()
	c.events.Append(ev)
	c.mu.Unlock()
}

// publish mirrors the loop state for readers and notifies listeners when the
// acquisition mode changed. Called once per handled event.
func (c *Controller) publish() {
	c.loopStats.State = c.state
	c.loopStats.Attempt = c.attempt
	c.loopStats.Generation = c.generation

	c.mu.Lock()
	c.stats = c.loopStats
	c.mu.Unlock()

	mode := [2]bool{c.state == StateLive, c.loopStats.PullHealthy}
	if c.notified != nil && *c.notified == mode {
		return
	}
	c.notified = &mode
	for _, l := range c.listeners {
		l.OnModeChange(mode[0], mode[1])
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
