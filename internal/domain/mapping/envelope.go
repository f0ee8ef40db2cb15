package mapping

import (
	"bytes"
	"encoding/json"
	"errors"

	"bid_pricing/internal/domain/entities"
)

// EnvelopeShape names where a payload kept its item array.
type EnvelopeShape string

const (
	ShapeAIExtracted     EnvelopeShape = "aiExtractedData.demolitionItems"
	ShapeDemolitionItems EnvelopeShape = "demolitionItems"
	ShapeData            EnvelopeShape = "data"
	ShapeItems           EnvelopeShape = "items"
	ShapeBareArray       EnvelopeShape = "array"
	ShapeEmpty           EnvelopeShape = "empty"
)

var ErrInvalidEnvelope = errors.New("invalid item payload")

// Envelope is an item payload normalized at the store boundary.
type Envelope struct {
	Shape EnvelopeShape
	Items []entities.DemolitionRecord
}

// DecodeEnvelope locates the item array of a store response. The first
// non-empty array wins, in this order: aiExtractedData.demolitionItems,
// demolitionItems, data, items, a bare top-level array. A data field holding
// an object is searched the same way.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Envelope{Shape: ShapeEmpty}, nil
	}
	if !json.Valid(raw) {
		return Envelope{}, ErrInvalidEnvelope
	}

	if raw[0] == '[' {
		return envelopeOf(ShapeBareArray, raw), nil
	}
	if raw[0] != '{' {
		return Envelope{}, ErrInvalidEnvelope
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return Envelope{}, ErrInvalidEnvelope
	}

	var extracted map[string]json.RawMessage
	if err := json.Unmarshal(root["aiExtractedData"], &extracted); err == nil {
		if env := envelopeOf(ShapeAIExtracted, extracted["demolitionItems"]); env.Shape != ShapeEmpty {
			return env, nil
		}
	}
	if env := envelopeOf(ShapeDemolitionItems, root["demolitionItems"]); env.Shape != ShapeEmpty {
		return env, nil
	}
	if env := envelopeOf(ShapeData, root["data"]); env.Shape != ShapeEmpty {
		return env, nil
	}
	if d := bytes.TrimSpace(root["data"]); len(d) > 0 && d[0] == '{' {
		if env, err := DecodeEnvelope(d); err == nil && env.Shape != ShapeEmpty {
			return env, nil
		}
	}
	if env := envelopeOf(ShapeItems, root["items"]); env.Shape != ShapeEmpty {
		return env, nil
	}
	return Envelope{Shape: ShapeEmpty}, nil
}

// envelopeOf decodes raw as a record array. Anything but a non-empty array
// yields ShapeEmpty.
func envelopeOf(shape EnvelopeShape, raw json.RawMessage) Envelope {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return Envelope{Shape: ShapeEmpty}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || len(elems) == 0 {
		return Envelope{Shape: ShapeEmpty}
	}
	items := make([]entities.DemolitionRecord, 0, len(elems))
	for _, e := range elems {
		items = append(items, decodeRecord(e))
	}
	return Envelope{Shape: shape, Items: items}
}

// decodeRecord never drops an element: a bare string becomes the
// description and an undecodable element becomes an empty record.
func decodeRecord(raw json.RawMessage) entities.DemolitionRecord {
	var rec entities.DemolitionRecord
	if err := json.Unmarshal(raw, &rec); err == nil {
		return rec
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return entities.DemolitionRecord{Description: text}
	}
	return entities.DemolitionRecord{}
}
