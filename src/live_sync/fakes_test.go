package livesync

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"sales-dashboard/src/codec"
	"sales-dashboard/src/interfaces"
	"sales-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// fakeClock fires timers only when advanced.
// -----------------------------------------------------------------------------

type fakeTimer struct {
	at   time.Time
	f    func()
	done bool
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if t.done {
			return false
		}
		t.done = true
		return true
	}
}

// Advance moves time forward and runs every timer that came due, earliest first.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due, pending []*fakeTimer
	for _, t := range c.timers {
		switch {
		case t.done:
		case !t.at.After(c.now):
			t.done = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// -----------------------------------------------------------------------------
// fakeConn / fakeDialer
// -----------------------------------------------------------------------------

type fakeConn struct {
	inbound chan []byte
	closed  chan struct{}
	once    sync.Once

	mu   sync.Mutex
	sent []string
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case <-c.closed:
		return nil, errors.New("connection closed")
	case data := <-c.inbound:
		return data, nil
	}
}

func (c *fakeConn) SendText(text string) error {
	if c.isClosed() {
		return errors.New("send on closed connection")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) push(frame string) { c.inbound <- []byte(frame) }

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) sentFrames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

type dialMode int

const (
	dialSucceed dialMode = iota
	dialFail
	dialHang
)

type fakeDialer struct {
	mu    sync.Mutex
	mode  dialMode
	conns []*fakeConn
}

func (d *fakeDialer) Dial(ctx context.Context) (interfaces.IChannelConn, error) {
	d.mu.Lock()
	mode := d.mode
	d.mu.Unlock()

	switch mode {
	case dialFail:
		return nil, errors.New("connection refused")
	case dialHang:
		<-ctx.Done()
		return nil, ctx.Err()
	}

	conn := newFakeConn()
	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	return conn, nil
}

func (d *fakeDialer) setMode(m dialMode) {
	d.mu.Lock()
	d.mode = m
	d.mu.Unlock()
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

// -----------------------------------------------------------------------------
// fakeSource
// -----------------------------------------------------------------------------

type fakeSource struct {
	mu          sync.Mutex
	snapshot    string
	snapshotErr error
	history     []models.MHistoryPoint
	historyErr  error
}

func (s *fakeSource) FetchSnapshot(ctx context.Context) (*models.MAcceptedSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshotErr != nil {
		return nil, s.snapshotErr
	}
	snap, err := codec.ParseSnapshot([]byte(s.snapshot))
	if err != nil {
		return nil, err
	}
	return &models.MAcceptedSnapshot{Snapshot: snap, Origin: models.OriginPull, ReceivedAt: time.Now(), Payload: []byte(s.snapshot)}, nil
}

func (s *fakeSource) FetchHistory(ctx context.Context, limit int) ([]models.MHistoryPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.history, nil
}

func (s *fakeSource) setSnapshotErr(err error) {
	s.mu.Lock()
	s.snapshotErr = err
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------
// fakeDisplay / fakeSurfaces / fakeListener
// -----------------------------------------------------------------------------

type fakeDisplay struct {
	mu     sync.Mutex
	fields map[string]string
	tables map[string][]models.MTableRow
	status models.MStatus
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{fields: map[string]string{}, tables: map[string][]models.MTableRow{}}
}

func (d *fakeDisplay) SetField(id, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fields[id] = text
}

func (d *fakeDisplay) SetTable(id string, rows []models.MTableRow) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables[id] = rows
}

func (d *fakeDisplay) SetStatus(text, class string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = models.MStatus{Text: text, Class: class}
}

func (d *fakeDisplay) field(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fields[id]
}

func (d *fakeDisplay) table(id string) []models.MTableRow {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tables[id]
}

func (d *fakeDisplay) currentStatus() models.MStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

type fakeCanvas struct {
	mu     sync.Mutex
	paints int
}

func (c *fakeCanvas) Paint(png []byte) {
	c.mu.Lock()
	c.paints++
	c.mu.Unlock()
}

func (c *fakeCanvas) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paints
}

type fakeSurfaces struct {
	canvases map[string]*fakeCanvas
}

func newFakeSurfaces(ids ...string) *fakeSurfaces {
	s := &fakeSurfaces{canvases: map[string]*fakeCanvas{}}
	for _, id := range ids {
		s.canvases[id] = &fakeCanvas{}
	}
	return s
}

func (s *fakeSurfaces) Lookup(id string) (interfaces.ICanvas, bool) {
	c, ok := s.canvases[id]
	if !ok {
		return nil, false
	}
	return c, true
}

type fakeListener struct {
	mu    sync.Mutex
	modes [][2]bool
}

func (l *fakeListener) OnModeChange(live, pullHealthy bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modes = append(l.modes, [2]bool{live, pullHealthy})
}

func (l *fakeListener) last() ([2]bool, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.modes) == 0 {
		return [2]bool{}, false
	}
	return l.modes[len(l.modes)-1], true
}
