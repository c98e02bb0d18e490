package logstore

import (
	"encoding/binary"
	"fmt"
)

// EntryWidth is the fixed size in bytes of one encoded index entry.
const EntryWidth = 24

// IndexEntry locates one record's payload inside the data file. The entry
// for sequence i is stored at byte offset i*EntryWidth in the index file.
type IndexEntry struct {
	StartOffset uint64
	Sequence    uint64
	Length      uint64
}

// Encode serializes the entry as three consecutive little-endian uint64
// values: start offset, sequence, length. The layout is part of the on-disk
// format and must not depend on host byte order.
func (e IndexEntry) Encode() [EntryWidth]byte {
	var buf [EntryWidth]byte
	binary.LittleEndian.PutUint64(buf[0:8], e.StartOffset)
	binary.LittleEndian.PutUint64(buf[8:16], e.Sequence)
	binary.LittleEndian.PutUint64(buf[16:24], e.Length)
	return buf
}

// DecodeIndexEntry parses a 24-byte encoded index entry.
func DecodeIndexEntry(buf []byte) (IndexEntry, error) {
	if len(buf) < EntryWidth {
		return IndexEntry{}, fmt.Errorf("index entry too short: %d bytes", len(buf))
	}
	return IndexEntry{
		StartOffset: binary.LittleEndian.Uint64(buf[0:8]),
		Sequence:    binary.LittleEndian.Uint64(buf[8:16]),
		Length:      binary.LittleEndian.Uint64(buf[16:24]),
	}, nil
}
