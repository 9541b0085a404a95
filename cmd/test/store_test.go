package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockOf(v float64) *float64 { return &v }

func seedCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample_data.csv")
	rows := []models.MHistoryPoint{
		{Timestamp: "2024-05-01T10:00:00", Product: "Produto B", Sales: 3, Stock: stockOf(97)},
		{Timestamp: "2024-05-01T10:00:05", Product: "Produto A", Sales: 2, Stock: stockOf(98)},
		{Timestamp: "2024-05-01T10:00:09", Product: "Produto B", Sales: 1.5, Stock: stockOf(95.5)},
	}
	for _, p := range rows {
		require.NoError(t, appendRow(path, p))
	}
	return path
}

// -----------------------------------------------------------------------------

func TestSalesStoreReload(t *testing.T) {
	path := seedCSV(t)
	store := NewSalesStore(path, logger.NewNopLogger())

	var pushed []*models.MSnapshot
	store.Subscribe(func(s *models.MSnapshot) { pushed = append(pushed, s) })

	changed, err := store.Reload(false)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, pushed, 1)

	snap := store.Snapshot()
	assert.Equal(t, 6.5, *snap.TotalSales)
	assert.Equal(t, int64(3), *snap.Rows)
	assert.Equal(t, "2024-05-01T10:00:09", *snap.LastTimestamp)
	assert.Equal(t, map[string]float64{"Produto A": 2, "Produto B": 4.5}, snap.SalesByProduct)
	assert.Equal(t, map[string]float64{"Produto A": 98, "Produto B": 95.5}, snap.StockByProduct)

	// unchanged file
	changed, err = store.Reload(false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, pushed, 1)

	hist := store.History(2)
	require.Len(t, hist, 2)
	assert.Equal(t, "Produto A", hist[0].Product)
	assert.Equal(t, 1.5, hist[1].Sales)
	assert.Len(t, store.History(0), 3)
}

func TestSalesStoreMissingFile(t *testing.T) {
	store := NewSalesStore(filepath.Join(t.TempDir(), "none.csv"), logger.NewNopLogger())

	_, err := store.Reload(true)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, store.Snapshot().SalesByProduct)
	assert.Empty(t, store.History(10))
}

func TestReadRowsSkipsIncompleteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	content := "timestamp,produto,vendas,estoque\n" +
		"2024-05-01T10:00:00,Produto A,2,\n" +
		",Produto B,1,10\n" +
		"2024-05-01T10:00:02,,1,10\n" +
		"2024-05-01T10:00:03,Produto C,x,7\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rows, err := readRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].Stock)
	assert.Equal(t, 0.0, rows[1].Sales)
	assert.Equal(t, 7.0, *rows[1].Stock)

	require.NoError(t, os.WriteFile(path, []byte("when,what\n1,2\n"), 0644))
	_, err = readRows(path)
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestRowWriterStockNeverNegative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewRowWriter(path, map[string]float64{"Produto A": 2}, time.Millisecond, time.Millisecond, logger.NewNopLogger())

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		p, err := w.WriteOne(now.Add(time.Duration(i) * time.Second))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.Sales, 1.0)
		assert.LessOrEqual(t, p.Sales, 8.0)
		require.NotNil(t, p.Stock)
		assert.GreaterOrEqual(t, *p.Stock, 0.0)
		assert.Contains(t, defaultProducts, p.Product)
	}

	rows, err := readRows(path)
	require.NoError(t, err)
	assert.Len(t, rows, 60)
	assert.Equal(t, "2024-05-01T12:00:00", rows[0].Timestamp)
	assert.Equal(t, time.Millisecond, w.nextDelay())
}

// -----------------------------------------------------------------------------

func TestBackendRoutes(t *testing.T) {
	path := seedCSV(t)
	store := NewSalesStore(path, logger.NewNopLogger())
	_, err := store.Reload(true)
	require.NoError(t, err)

	srv := httptest.NewServer(NewBackend(store, logger.NewNopLogger()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/data")
	require.NoError(t, err)
	var snap models.MSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, 6.5, *snap.TotalSales)

	resp, err = http.Get(srv.URL + "/api/historico?limit=1")
	require.NoError(t, err)
	var hist []models.MHistoryPoint
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hist))
	resp.Body.Close()
	require.Len(t, hist, 1)
	assert.Equal(t, "2024-05-01T10:00:09", hist[0].Timestamp)

	resp, err = http.Get(srv.URL + "/api/historico?limit=abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBackendPushesSnapshots(t *testing.T) {
	path := seedCSV(t)
	store := NewSalesStore(path, logger.NewNopLogger())
	_, err := store.Reload(true)
	require.NoError(t, err)

	srv := httptest.NewServer(NewBackend(store, logger.NewNopLogger()).Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	readSnapshot := func() models.MSnapshot {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, frame, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg models.MChannelMessage
		require.NoError(t, json.Unmarshal(frame, &msg))
		require.Equal(t, models.MessageTypeSnapshot, msg.Type)
		var snap models.MSnapshot
		require.NoError(t, json.Unmarshal(msg.Data, &snap))
		return snap
	}

	first := readSnapshot()
	assert.Equal(t, int64(3), *first.Rows)

	// probes are accepted and ignored
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(models.ProbeMessage)))

	require.NoError(t, appendRow(path, models.MHistoryPoint{Timestamp: "2024-05-01T10:00:20", Product: "Produto D", Sales: 4, Stock: stockOf(96)}))
	_, err = store.Reload(true)
	require.NoError(t, err)

	next := readSnapshot()
	assert.Equal(t, int64(4), *next.Rows)
	assert.Equal(t, 4.0, next.SalesByProduct["Produto D"])
}

func TestBuildSnapshotSumsExactly(t *testing.T) {
	rows := []models.MHistoryPoint{
		{Timestamp: "2024-05-01T10:00:01", Product: "Produto A", Sales: 0.1},
		{Timestamp: "2024-05-01T10:00:00", Product: "Produto A", Sales: 0.2},
	}
	now := time.Date(2024, 5, 1, 10, 1, 0, 0, time.UTC)

	snap := buildSnapshot(rows, now)
	assert.Equal(t, 0.3, *snap.TotalSales)
	assert.Equal(t, 0.3, snap.SalesByProduct["Produto A"])
	assert.Empty(t, snap.StockByProduct)
	assert.Equal(t, "2024-05-01T10:00:01", *snap.LastTimestamp)
	assert.Equal(t, "2024-05-01T10:01:00", *snap.UpdatedAt)
}
