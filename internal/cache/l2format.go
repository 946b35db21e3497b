package cache

import (
	"encoding/binary"
	"errors"
)

// l2Magic identifies a Catzilla L2 cache entry file ("CATZILLA" spelled
// with hex digits only, Z as 2 and L as 1).
const l2Magic uint32 = 0xCA72111A

const l2FormatVersion uint16 = 1

const l2HeaderSize = 32

const l2FlagCompressed = 1 << 0

var (
	errBadMagic   = errors.New("cache: l2 entry has unknown magic")
	errBadVersion = errors.New("cache: l2 entry has unsupported format version")
	errTruncated  = errors.New("cache: l2 entry is truncated")
)

// l2Header is the 32-byte on-disk header spec.md §6 defines, immediately
// followed by key bytes then value bytes in the same file.
type l2Header struct {
	Version    uint16
	Compressed bool
	CreatedAt  int64 // unix nano
	ExpiresAt  int64 // unix nano; 0 = no expiry
	KeyLen     uint32
	ValueLen   uint32
}

// encodeL2Entry serializes header+key+value into the exact byte layout
// spec.md §6 specifies: a fixed 32-byte header followed by the key and then
// the value.
func encodeL2Entry(h l2Header, key string, value []byte) []byte {
	buf := make([]byte, l2HeaderSize+len(key)+len(value))

	binary.BigEndian.PutUint32(buf[0:4], l2Magic)
	binary.BigEndian.PutUint16(buf[4:6], l2FormatVersion)
	var flags byte
	if h.Compressed {
		flags |= l2FlagCompressed
	}
	buf[6] = flags
	buf[7] = 0 // reserved
	binary.BigEndian.PutUint64(buf[8:16], uint64(h.CreatedAt))
	binary.BigEndian.PutUint64(buf[16:24], uint64(h.ExpiresAt))
	binary.BigEndian.PutUint32(buf[24:28], uint32(len(key)))
	binary.BigEndian.PutUint32(buf[28:32], uint32(len(value)))

	copy(buf[l2HeaderSize:], key)
	copy(buf[l2HeaderSize+len(key):], value)
	return buf
}

// decodeL2Entry parses an on-disk entry produced by encodeL2Entry, returning
// the header, the stored key, and the (possibly still-compressed) value.
func decodeL2Entry(buf []byte) (l2Header, string, []byte, error) {
	if len(buf) < l2HeaderSize {
		return l2Header{}, "", nil, errTruncated
	}
	if binary.BigEndian.Uint32(buf[0:4]) != l2Magic {
		return l2Header{}, "", nil, errBadMagic
	}
	version := binary.BigEndian.Uint16(buf[4:6])
	if version != l2FormatVersion {
		return l2Header{}, "", nil, errBadVersion
	}
	flags := buf[6]
	createdAt := int64(binary.BigEndian.Uint64(buf[8:16]))
	expiresAt := int64(binary.BigEndian.Uint64(buf[16:24]))
	keyLen := binary.BigEndian.Uint32(buf[24:28])
	valueLen := binary.BigEndian.Uint32(buf[28:32])

	want := l2HeaderSize + int(keyLen) + int(valueLen)
	if len(buf) < want {
		return l2Header{}, "", nil, errTruncated
	}

	key := string(buf[l2HeaderSize : l2HeaderSize+int(keyLen)])
	value := buf[l2HeaderSize+int(keyLen) : want]

	h := l2Header{
		Version:    version,
		Compressed: flags&l2FlagCompressed != 0,
		CreatedAt:  createdAt,
		ExpiresAt:  expiresAt,
		KeyLen:     keyLen,
		ValueLen:   valueLen,
	}
	return h, key, value, nil
}
