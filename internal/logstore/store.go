package logstore

import (
	"fmt"
	"os"
	"sync"
)

// Written reports the result of a successful append.
type Written struct {
	Size  int    `json:"size"`
	Index uint64 `json:"index"`
}

// Store is an append-only record log backed by two files: an unstructured
// data file holding raw payload bytes and an index file of fixed-width
// entries locating each payload. Records are immutable and never removed.
//
// The index file is the sole source of truth for recovery. If the process
// dies between the payload write and the index write, the orphaned tail
// bytes in the data file are unreachable and harmless; if the index entry
// lands but the payload write was incomplete, reads of that sequence fail.
// The two writes are not transactional.
type Store struct {
	mu         sync.Mutex
	data       *os.File
	index      *os.File
	nextOffset uint64
	nextSeq    uint64
}

// Open opens (creating if absent) the data and index files and recovers the
// write position from the final index entry. An empty or unreadable index
// file yields a fresh store starting at sequence 0.
func Open(dataPath, indexPath string) (*Store, error) {
	flags := os.O_RDWR | os.O_APPEND | os.O_CREATE

	index, err := os.OpenFile(indexPath, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}

	data, err := os.OpenFile(dataPath, flags, 0644)
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	s := &Store{data: data, index: index}
	if last, err := readLastEntry(index); err == nil {
		s.nextOffset = last.StartOffset + last.Length
		s.nextSeq = last.Sequence + 1
	}
	return s, nil
}

// readLastEntry reads the final fixed-width entry of the index file. Only
// this entry is consulted during recovery; the rest of the file is trusted.
func readLastEntry(index *os.File) (IndexEntry, error) {
	info, err := index.Stat()
	if err != nil {
		return IndexEntry{}, err
	}
	if info.Size() < EntryWidth {
		return IndexEntry{}, fmt.Errorf("index file too short: %d bytes", info.Size())
	}

	var buf [EntryWidth]byte
	if _, err := index.ReadAt(buf[:], info.Size()-EntryWidth); err != nil {
		return IndexEntry{}, err
	}
	return DecodeIndexEntry(buf[:])
}

// Append writes payload to the end of the data file and the matching index
// entry to the end of the index file, assigning the next sequence number.
// When durable is true both files are fsynced before returning. State
// advances only after both writes succeed, so a failed append leaves at
// worst unreachable tail bytes in the data file.
func (s *Store) Append(payload []byte, durable bool) (Written, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := IndexEntry{
		StartOffset: s.nextOffset,
		Sequence:    s.nextSeq,
		Length:      uint64(len(payload)),
	}

	if _, err := s.data.Write(payload); err != nil {
		return Written{}, fmt.Errorf("failed to append payload %d: %w", entry.Sequence, err)
	}

	buf := entry.Encode()
	if _, err := s.index.Write(buf[:]); err != nil {
		return Written{}, fmt.Errorf("failed to append index entry %d: %w", entry.Sequence, err)
	}

	s.nextOffset += entry.Length
	s.nextSeq++

	if durable {
		if err := s.sync(); err != nil {
			return Written{}, err
		}
	}

	return Written{Size: len(payload), Index: entry.Sequence}, nil
}

// Read returns the payload and index entry for the given sequence number.
// A sequence that was never written and a corrupt entry are indistinguishable;
// both fail the positional read. A read returns its full declared length or
// an error, never a partial payload.
func (s *Store) Read(seq uint64) ([]byte, IndexEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Reject out-of-range sequences before computing the file offset; the
	// multiplication below would wrap for sequences near the uint64 ceiling
	// and alias a valid entry.
	if seq >= s.nextSeq {
		return nil, IndexEntry{}, fmt.Errorf("no record at sequence %d", seq)
	}

	var buf [EntryWidth]byte
	if _, err := s.index.ReadAt(buf[:], int64(seq)*EntryWidth); err != nil {
		return nil, IndexEntry{}, fmt.Errorf("failed to read index entry %d: %w", seq, err)
	}

	entry, err := DecodeIndexEntry(buf[:])
	if err != nil {
		return nil, IndexEntry{}, err
	}

	// A corrupt entry must fail as a read error, not as a giant allocation.
	info, err := s.data.Stat()
	if err != nil {
		return nil, IndexEntry{}, fmt.Errorf("failed to stat data file: %w", err)
	}
	size := uint64(info.Size())
	if entry.StartOffset > size || entry.Length > size-entry.StartOffset {
		return nil, IndexEntry{}, fmt.Errorf("index entry %d points past the data file", seq)
	}

	payload := make([]byte, entry.Length)
	if _, err := s.data.ReadAt(payload, int64(entry.StartOffset)); err != nil {
		return nil, IndexEntry{}, fmt.Errorf("failed to read record %d: %w", seq, err)
	}
	return payload, entry, nil
}

// LastSequence returns one past the highest written sequence number, which
// is also the total record count. Used as the exclusive upper bound for
// pagination.
func (s *Store) LastSequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextSeq
}

// Sync forces buffered writes of both files to stable storage.
func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync()
}

func (s *Store) sync() error {
	if err := s.index.Sync(); err != nil {
		return fmt.Errorf("failed to sync index file: %w", err)
	}
	if err := s.data.Sync(); err != nil {
		return fmt.Errorf("failed to sync data file: %w", err)
	}
	return nil
}

// Close closes both files.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		s.data.Close()
		return err
	}
	return s.data.Close()
}
