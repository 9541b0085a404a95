// Package codec decodes and validates backend payloads (snapshots, history
// batches and channel frames) into strongly typed models.
package codec

import (
	"encoding/json"
	"math"

	"sales-dashboard/src/helpers"
	"sales-dashboard/src/models"
)

// maxExactInteger is the largest integer a JSON number decodes to without loss.
const maxExactInteger = 1 << 53

// -----------------------------------------------------------------------------
// Snapshot
// -----------------------------------------------------------------------------

// ParseSnapshot validates a /api/data body or a snapshot frame's data.
// Every present field must carry the right type; absent and null fields
// are treated alike.
func ParseSnapshot(data []byte) (*models.MSnapshot, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, helpers.NewValidationError("snapshot is not valid JSON: %v", err)
	}
	return SnapshotFromValue(raw)
}

// -----------------------------------------------------------------------------

// SnapshotFromValue validates an already decoded JSON value.
func SnapshotFromValue(raw interface{}) (*models.MSnapshot, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, helpers.NewValidationError("snapshot must be an object, got %s", jsonKind(raw))
	}

	snap := &models.MSnapshot{}
	var err error

	if snap.TotalSales, err = optionalNumber(obj, "total_vendas"); err != nil {
		return nil, err
	}
	if snap.LastTimestamp, err = optionalString(obj, "ultimo_timestamp"); err != nil {
		return nil, err
	}
	if snap.Rows, err = optionalInteger(obj, "linhas"); err != nil {
		return nil, err
	}
	if snap.UpdatedAt, err = optionalString(obj, "atualizado_em"); err != nil {
		return nil, err
	}
	if snap.SalesByProduct, err = numberMap(obj, "vendas_por_produto"); err != nil {
		return nil, err
	}
	if snap.StockByProduct, err = numberMap(obj, "estoque_por_produto"); err != nil {
		return nil, err
	}

	return snap, nil
}

// -----------------------------------------------------------------------------
// History
// -----------------------------------------------------------------------------

// ParseHistory validates a /api/historico body. One malformed point rejects
// the whole batch.
func ParseHistory(data []byte) ([]models.MHistoryPoint, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, helpers.NewValidationError("history is not valid JSON: %v", err)
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, helpers.NewValidationError("history must be an array, got %s", jsonKind(raw))
	}

	points := make([]models.MHistoryPoint, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, helpers.NewValidationError("history[%d] must be an object, got %s", i, jsonKind(item))
		}
		p, err := historyPoint(obj)
		if err != nil {
			return nil, helpers.NewValidationError("history[%d]: %v", i, err)
		}
		points = append(points, p)
	}
	return points, nil
}

// -----------------------------------------------------------------------------

func historyPoint(obj map[string]interface{}) (models.MHistoryPoint, error) {
	var p models.MHistoryPoint

	ts, err := optionalString(obj, "timestamp")
	if err != nil {
		return p, err
	}
	if ts == nil || *ts == "" {
		// older backends only sent the formatted variant
		if ts, err = optionalString(obj, "timestamp_str"); err != nil {
			return p, err
		}
	}
	if ts == nil || *ts == "" {
		return p, helpers.NewValidationError("missing timestamp")
	}
	p.Timestamp = *ts

	product, err := optionalString(obj, "produto")
	if err != nil {
		return p, err
	}
	if product == nil || *product == "" {
		return p, helpers.NewValidationError("missing produto")
	}
	p.Product = *product

	sales, err := optionalNumber(obj, "vendas")
	if err != nil {
		return p, err
	}
	if sales != nil {
		p.Sales = *sales
	}

	if p.Stock, err = optionalNumber(obj, "estoque"); err != nil {
		return p, err
	}
	return p, nil
}

// -----------------------------------------------------------------------------
// Channel frames
// -----------------------------------------------------------------------------

// ParseChannelMessage decodes an inbound text frame envelope.
func ParseChannelMessage(data []byte) (*models.MChannelMessage, error) {
	var msg models.MChannelMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, helpers.NewValidationError("channel frame is not a JSON object: %v", err)
	}
	return &msg, nil
}

// -----------------------------------------------------------------------------
// Field helpers
// -----------------------------------------------------------------------------

func optionalNumber(obj map[string]interface{}, key string) (*float64, error) {
	val, ok := obj[key]
	if !ok || val == nil {
		return nil, nil
	}
	f, ok := val.(float64)
	if !ok {
		return nil, helpers.NewValidationError("%s must be a number, got %s", key, jsonKind(val))
	}
	return &f, nil
}

// -----------------------------------------------------------------------------

func optionalInteger(obj map[string]interface{}, key string) (*int64, error) {
	f, err := optionalNumber(obj, key)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, helpers.NewValidationError("%s must be an integer, got %v", key, *f)
	}
	if math.Abs(*f) > maxExactInteger {
		return nil, helpers.NewValidationError("%s is out of range: %v", key, *f)
	}
	n := int64(*f)
	return &n, nil
}

// -----------------------------------------------------------------------------

func optionalString(obj map[string]interface{}, key string) (*string, error) {
	val, ok := obj[key]
	if !ok || val == nil {
		return nil, nil
	}
	s, ok := val.(string)
	if !ok {
		return nil, helpers.NewValidationError("%s must be a string, got %s", key, jsonKind(val))
	}
	return &s, nil
}

// -----------------------------------------------------------------------------

func numberMap(obj map[string]interface{}, key string) (map[string]float64, error) {
	result := make(map[string]float64)
	val, ok := obj[key]
	if !ok || val == nil {
		return result, nil
	}
	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, helpers.NewValidationError("%s must be an object, got %s", key, jsonKind(val))
	}
	for k, v := range m {
		f, ok := v.(float64)
		if !ok {
			return nil, helpers.NewValidationError("%s[%q] must be a number, got %s", key, k, jsonKind(v))
		}
		result[k] = f
	}
	return result, nil
}

// -----------------------------------------------------------------------------

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return "unknown"
	}
}
