package logstore

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexEntryRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		entry IndexEntry
	}{
		{
			name:  "zero entry",
			entry: IndexEntry{},
		},
		{
			name:  "first record",
			entry: IndexEntry{StartOffset: 0, Sequence: 0, Length: 5},
		},
		{
			name:  "later record",
			entry: IndexEntry{StartOffset: 1024, Sequence: 42, Length: 4096},
		},
		{
			name:  "large values",
			entry: IndexEntry{StartOffset: 1<<63 + 7, Sequence: 1 << 40, Length: 1<<32 + 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := tt.entry.Encode()

			decoded, err := DecodeIndexEntry(buf[:])
			require.NoError(t, err)
			assert.Equal(t, tt.entry, decoded)
		})
	}
}

func TestIndexEntryLayout(t *testing.T) {
	entry := IndexEntry{StartOffset: 1, Sequence: 2, Length: 3}
	buf := entry.Encode()

	// Three consecutive little-endian uint64 fields: start, sequence, length.
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(buf[0:8]))
	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(buf[8:16]))
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(buf[16:24]))
	assert.Len(t, buf, EntryWidth)
}

func TestDecodeIndexEntryShortBuffer(t *testing.T) {
	_, err := DecodeIndexEntry(make([]byte, EntryWidth-1))
	assert.Error(t, err)
}
