package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeL2EntryRoundTrips(t *testing.T) {
	h := l2Header{CreatedAt: 100, ExpiresAt: 200, Compressed: true}
	buf := encodeL2Entry(h, "my-key", []byte("payload"))

	decoded, key, value, err := decodeL2Entry(buf)
	require.NoError(t, err)
	assert.Equal(t, "my-key", key)
	assert.Equal(t, "payload", string(value))
	assert.True(t, decoded.Compressed)
	assert.EqualValues(t, 100, decoded.CreatedAt)
	assert.EqualValues(t, 200, decoded.ExpiresAt)
}

func TestDecodeL2EntryRejectsBadMagic(t *testing.T) {
	buf := make([]byte, l2HeaderSize)
	_, _, _, err := decodeL2Entry(buf)
	assert.ErrorIs(t, err, errBadMagic)
}

func TestDecodeL2EntryRejectsTruncated(t *testing.T) {
	_, _, _, err := decodeL2Entry([]byte{1, 2, 3})
	assert.ErrorIs(t, err, errTruncated)
}

func TestDecodeL2EntryRejectsWrongVersion(t *testing.T) {
	h := l2Header{}
	buf := encodeL2Entry(h, "k", []byte("v"))
	buf[4] = 0xFF
	buf[5] = 0xFF
	_, _, _, err := decodeL2Entry(buf)
	assert.ErrorIs(t, err, errBadVersion)
}
