package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampMarshal(t *testing.T) {
	zone := time.FixedZone("UTC+8", 8*60*60)
	ts := NewTimestamp(time.Date(2024, 3, 1, 8, 4, 5, 123456789, zone))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T00:04:05.123Z"`, string(data))
}

func TestTimestampOptional(t *testing.T) {
	assert.Nil(t, NewTimestampP(nil))

	data, err := json.Marshal(struct {
		FirstSeen *Timestamp `json:"first_seen,omitempty"`
	}{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	day := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	data, err = json.Marshal(NewTimestampP(&day))
	require.NoError(t, err)
	assert.Equal(t, `"2020-01-02T00:00:00.000Z"`, string(data))
}

func TestStixID(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "note--6ba7b810-9dad-11d1-80b4-00c04fd430c8", StixID(StixTypeNote, id))
}
