package codec

import (
	"testing"

	"sales-dashboard/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnapshotFull(t *testing.T) {
	body := `{
		"total_vendas": 42,
		"ultimo_timestamp": "2025-01-01T10:00:00",
		"linhas": 7,
		"atualizado_em": "2025-01-01T10:00:05",
		"vendas_por_produto": {"A": 10, "B": 5},
		"estoque_por_produto": {"A": 90, "B": 95.5}
	}`

	snap, err := ParseSnapshot([]byte(body))
	require.NoError(t, err)

	require.NotNil(t, snap.TotalSales)
	assert.Equal(t, 42.0, *snap.TotalSales)
	require.NotNil(t, snap.Rows)
	assert.Equal(t, int64(7), *snap.Rows)
	assert.Equal(t, "2025-01-01T10:00:00", *snap.LastTimestamp)
	assert.Equal(t, map[string]float64{"A": 10, "B": 5}, snap.SalesByProduct)
	assert.Equal(t, 95.5, snap.StockByProduct["B"])
}

func TestParseSnapshotEmptyObject(t *testing.T) {
	// The backend serves {} before its first CSV load.
	snap, err := ParseSnapshot([]byte(`{}`))
	require.NoError(t, err)

	assert.Nil(t, snap.TotalSales)
	assert.Nil(t, snap.LastTimestamp)
	assert.Nil(t, snap.Rows)
	assert.Empty(t, snap.SalesByProduct)
	assert.NotNil(t, snap.SalesByProduct)
	assert.Empty(t, snap.StockByProduct)
}

func TestParseSnapshotNullsAreAbsent(t *testing.T) {
	snap, err := ParseSnapshot([]byte(`{"total_vendas": null, "ultimo_timestamp": null, "vendas_por_produto": null}`))
	require.NoError(t, err)
	assert.Nil(t, snap.TotalSales)
	assert.Nil(t, snap.LastTimestamp)
	assert.Empty(t, snap.SalesByProduct)
}

func TestParseSnapshotRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `{`,
		"array":             `[1,2]`,
		"string total":      `{"total_vendas": "42"}`,
		"fractional rows":   `{"linhas": 1.5}`,
		"huge rows":         `{"linhas": 1e300}`,
		"negative huge":     `{"linhas": -18014398509481984}`,
		"numeric timestamp": `{"ultimo_timestamp": 12}`,
		"map not object":    `{"vendas_por_produto": [1]}`,
		"map string value":  `{"estoque_por_produto": {"A": "x"}}`,
		"map null value":    `{"vendas_por_produto": {"A": null}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSnapshot([]byte(body))
			require.Error(t, err)
			assert.True(t, helpers.IsValidation(err), "expected validation error, got %T", err)
		})
	}
}

func TestParseSnapshotLargestExactRows(t *testing.T) {
	snap, err := ParseSnapshot([]byte(`{"linhas": 9007199254740992}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1)<<53, *snap.Rows)
}

func TestParseHistory(t *testing.T) {
	body := `[
		{"timestamp": "t1", "produto": "A", "vendas": 2, "estoque": 10},
		{"timestamp_str": "t2", "produto": "B"},
		{"timestamp": "t3", "produto": "A", "vendas": null, "estoque": null}
	]`

	points, err := ParseHistory([]byte(body))
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "t1", points[0].Timestamp)
	assert.Equal(t, 2.0, points[0].Sales)
	require.NotNil(t, points[0].Stock)
	assert.Equal(t, 10.0, *points[0].Stock)

	assert.Equal(t, "t2", points[1].Timestamp)
	assert.Equal(t, 0.0, points[1].Sales)
	assert.Nil(t, points[1].Stock)

	assert.Equal(t, 0.0, points[2].Sales)
	assert.Nil(t, points[2].Stock)
}

func TestParseHistoryRejectsWholeBatch(t *testing.T) {
	cases := map[string]string{
		"object":          `{"timestamp": "t1"}`,
		"missing product": `[{"timestamp": "t1", "vendas": 1}]`,
		"missing ts":      `[{"produto": "A"}]`,
		"string sales":    `[{"timestamp": "t1", "produto": "A", "vendas": "3"}]`,
		"scalar item":     `[{"timestamp": "t1", "produto": "A"}, 5]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			points, err := ParseHistory([]byte(body))
			require.Error(t, err)
			assert.Nil(t, points)
			assert.True(t, helpers.IsValidation(err))
		})
	}
}

func TestParseChannelMessage(t *testing.T) {
	msg, err := ParseChannelMessage([]byte(`{"type":"snapshot","data":{"total_vendas":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "snapshot", msg.Type)

	snap, err := ParseSnapshot(msg.Data)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *snap.TotalSales)

	_, err = ParseChannelMessage([]byte(`pong`))
	assert.Error(t, err)
}
