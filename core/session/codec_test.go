package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec(t *testing.T) {
	codec := NewCodec("Medical Coding", []byte("secret"), time.Hour)

	token, err := codec.Encode(alice)
	require.NoError(t, err)

	got, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = NewCodec("Medical Coding", []byte("other"), time.Hour).Decode(token)
	assert.Error(t, err, "wrong secret")

	_, err = NewCodec("Other", []byte("secret"), time.Hour).Decode(token)
	assert.Error(t, err, "wrong issuer")

	expired := NewCodec("Medical Coding", []byte("secret"), time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err = expired.Encode(alice)
	require.NoError(t, err)
	_, err = codec.Decode(token)
	assert.Error(t, err, "expired")
}

func TestIdentity_JSON(t *testing.T) {
	var id Identity
	err := json.Unmarshal([]byte(`{"_id":"s9","name":"zoe","role":"user","paidAmount":120,"remainingAmount":null,"enrolledDate":"2024-03-01"}`), &id)
	require.NoError(t, err)
	assert.Equal(t, Student, id.Role)
	assert.Equal(t, 120, id.PaidAmount.Int)
	assert.False(t, id.RemainingAmount.Valid)
	assert.Equal(t, 0, id.Remaining())

	on, ok := id.EnrolledOn()
	assert.True(t, ok)
	assert.Equal(t, "2024-03-01", on.Format("2006-01-02"))

	err = json.Unmarshal([]byte(`{"_id":"x","role":"teacher"}`), &id)
	assert.Error(t, err)
}
