package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the stable wrapper around every domain event payload. EventID is
// the dedupe key under at-least-once delivery.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope wraps a payload for publication.
func NewEnvelope(payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return &Envelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}, nil
}

// ParseEnvelope decodes and validates an envelope from raw bus bytes.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if _, err := uuid.Parse(envelope.EventID); err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", envelope.EventID, err)
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("envelope has no data")
	}
	return &envelope, nil
}

// DecodePayload strictly unmarshals the envelope data into a typed payload.
// Unknown fields are rejected so schema drift fails closed instead of being
// silently dropped.
func DecodePayload(envelope *Envelope, dest any) error {
	if envelope == nil {
		return fmt.Errorf("nil envelope")
	}
	decoder := json.NewDecoder(bytes.NewReader(envelope.Data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
