package logstore

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPaths(t *testing.T) (string, string) {
	dir := t.TempDir()
	return filepath.Join(dir, "data.bin"), filepath.Join(dir, "indices.bin")
}

func openTestStore(t *testing.T) (*Store, string, string) {
	dataPath, indexPath := testPaths(t)
	store, err := Open(dataPath, indexPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dataPath, indexPath
}

func TestAppendAndRead(t *testing.T) {
	store, _, _ := openTestStore(t)

	payloads := [][]byte{
		[]byte("hello"),
		[]byte("hi"),
		{},
		[]byte("a longer payload with some bytes in it"),
	}

	for i, payload := range payloads {
		written, err := store.Append(payload, false)
		require.NoError(t, err)
		assert.Equal(t, len(payload), written.Size)
		assert.Equal(t, uint64(i), written.Index)
	}

	assert.Equal(t, uint64(len(payloads)), store.LastSequence())

	for i, payload := range payloads {
		got, entry, err := store.Read(uint64(i))
		require.NoError(t, err)
		assert.Equal(t, payload, got)
		assert.Equal(t, uint64(i), entry.Sequence)
		assert.Equal(t, uint64(len(payload)), entry.Length)
	}

	// Re-reading an early record after later appends still works.
	got, entry, err := store.Read(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
	assert.Equal(t, uint64(0), entry.Sequence)
}

func TestStartOffsetsAreContiguous(t *testing.T) {
	store, _, _ := openTestStore(t)

	lengths := []int{8, 3, 2, 20, 0, 1}
	var sum uint64
	for _, n := range lengths {
		_, err := store.Append(make([]byte, n), false)
		require.NoError(t, err)
	}

	for i, n := range lengths {
		_, entry, err := store.Read(uint64(i))
		require.NoError(t, err)
		assert.Equal(t, sum, entry.StartOffset, "record %d", i)
		sum += uint64(n)
	}
}

func TestReadPastEndFails(t *testing.T) {
	store, _, _ := openTestStore(t)

	_, _, err := store.Read(0)
	assert.Error(t, err, "empty store has no records")

	_, err = store.Append([]byte("only"), false)
	require.NoError(t, err)

	_, _, err = store.Read(store.LastSequence())
	assert.Error(t, err)
	_, _, err = store.Read(store.LastSequence() + 100)
	assert.Error(t, err)
}

func TestReadHugeSequenceFails(t *testing.T) {
	store, _, _ := openTestStore(t)

	_, err := store.Append([]byte("hello"), false)
	require.NoError(t, err)

	// Sequences large enough that seq*EntryWidth wraps around int64 must
	// still fail instead of aliasing an existing entry's offset.
	for _, seq := range []uint64{1 << 61, math.MaxInt64/EntryWidth + 1, math.MaxUint64} {
		_, _, err := store.Read(seq)
		assert.Error(t, err, "sequence %d", seq)
	}
}

func TestCorruptIndexLengthFailsCleanly(t *testing.T) {
	dataPath, indexPath := testPaths(t)

	store, err := Open(dataPath, indexPath)
	require.NoError(t, err)
	_, err = store.Append([]byte("hello"), true)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Rewrite the entry with a length far beyond the data file.
	corrupt := IndexEntry{StartOffset: 0, Sequence: 0, Length: 1 << 50}.Encode()
	require.NoError(t, os.WriteFile(indexPath, corrupt[:], 0644))

	store, err = Open(dataPath, indexPath)
	require.NoError(t, err)
	defer store.Close()

	_, _, err = store.Read(0)
	assert.Error(t, err)
}

func TestReopenResumesFromIndex(t *testing.T) {
	dataPath, indexPath := testPaths(t)

	store, err := Open(dataPath, indexPath)
	require.NoError(t, err)

	first := [][]byte{[]byte("hello"), []byte("hi")}
	for _, payload := range first {
		_, err := store.Append(payload, false)
		require.NoError(t, err)
	}
	require.NoError(t, store.Sync())
	require.NoError(t, store.Close())

	// Reopen: state is recomputed solely from the final index entry.
	store, err = Open(dataPath, indexPath)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, uint64(2), store.LastSequence())

	written, err := store.Append([]byte("!!"), true)
	require.NoError(t, err)
	assert.Equal(t, Written{Size: 2, Index: 2}, written)

	got, _, err := store.Read(2)
	require.NoError(t, err)
	assert.Equal(t, []byte("!!"), got)

	got, _, err = store.Read(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestOpenEmptyStoreStartsAtZero(t *testing.T) {
	store, _, _ := openTestStore(t)
	assert.Equal(t, uint64(0), store.LastSequence())
}

func TestDurableAppendSurvivesReopen(t *testing.T) {
	dataPath, indexPath := testPaths(t)

	store, err := Open(dataPath, indexPath)
	require.NoError(t, err)

	_, err = store.Append([]byte("durable"), true)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(dataPath, indexPath)
	require.NoError(t, err)
	defer store.Close()

	got, entry, err := store.Read(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("durable"), got)
	assert.Equal(t, uint64(7), entry.Length)
}

func TestTruncatedDataFileFailsRead(t *testing.T) {
	dataPath, indexPath := testPaths(t)

	store, err := Open(dataPath, indexPath)
	require.NoError(t, err)

	_, err = store.Append([]byte("will be cut short"), true)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Simulate a payload write that never completed.
	require.NoError(t, os.Truncate(dataPath, 4))

	store, err = Open(dataPath, indexPath)
	require.NoError(t, err)
	defer store.Close()

	_, _, err = store.Read(0)
	assert.Error(t, err, "a partial payload must never be returned")
}

func TestIndexFileSizeTracksRecordCount(t *testing.T) {
	store, _, indexPath := openTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := store.Append([]byte{byte(i)}, false)
		require.NoError(t, err)
	}
	require.NoError(t, store.Sync())

	info, err := os.Stat(indexPath)
	require.NoError(t, err)
	assert.Equal(t, int64(5*EntryWidth), info.Size())
}
