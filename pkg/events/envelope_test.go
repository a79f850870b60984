package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

func TestNewEnvelopeRoundTrip(t *testing.T) {
	payload := CarePlanStatusChangedEvent{
		CarePlanID: uuid.New(),
		PatientID:  uuid.New(),
		Title:      "Post-surgery recovery",
		Status:     enums.CarePlanStatusApproved,
	}

	envelope, err := NewEnvelope(payload)
	require.NoError(t, err)
	assert.Equal(t, 1, envelope.Version)
	require.NotEmpty(t, envelope.EventID)

	raw, err := json.Marshal(envelope)
	require.NoError(t, err)

	parsed, err := ParseEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, envelope.EventID, parsed.EventID)

	var decoded CarePlanStatusChangedEvent
	require.NoError(t, DecodePayload(parsed, &decoded))
	assert.Equal(t, payload.CarePlanID, decoded.CarePlanID)
	assert.Equal(t, payload.Status, decoded.Status)
}

func TestParseEnvelopeRejectsMalformedJSON(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"version":1,`))
	require.Error(t, err)
}

func TestParseEnvelopeRejectsMissingEventID(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"version":1,"eventId":"not-a-uuid","data":{"x":1}}`))
	require.Error(t, err)
}

func TestParseEnvelopeRejectsEmptyData(t *testing.T) {
	raw := []byte(`{"version":1,"eventId":"` + uuid.NewString() + `"}`)
	_, err := ParseEnvelope(raw)
	require.Error(t, err)
}

func TestDecodePayloadFailsClosedOnUnknownFields(t *testing.T) {
	envelope := &Envelope{
		Version: 1,
		EventID: uuid.NewString(),
		Data:    json.RawMessage(`{"documentId":"` + uuid.NewString() + `","patientId":"` + uuid.NewString() + `","fileName":"scan.pdf","extra":"field"}`),
	}

	var decoded DocumentUploadedEvent
	err := DecodePayload(envelope, &decoded)
	require.Error(t, err, "schema drift must be rejected, not silently accepted")
}

func TestDecodePayloadRejectsWrongShape(t *testing.T) {
	envelope := &Envelope{
		Version: 1,
		EventID: uuid.NewString(),
		Data:    json.RawMessage(`["not","an","object"]`),
	}
	var decoded DocumentAnalyzedEvent
	require.Error(t, DecodePayload(envelope, &decoded))
}
