package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// FormatVersion is bumped whenever the envelope or the encoded types change.
// Artifacts from other versions are rejected as corrupt.
const FormatVersion uint16 = 1

var magic = [8]byte{'R', 'A', 'M', 'P', 'A', 'R', 'T', 0}

const (
	headerSize   = len(magic) + 2 + 1 + 8
	checksumSize = sha256.Size
)

// header precedes every encoded artifact:
//
//	magic[8] | version uint16 | kind uint8 | payload length uint64
//
// and the payload is followed by its SHA-256.
type header struct {
	Version uint16
	Kind    Kind
	Length  uint64
}

func frame(kind Kind, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(headerSize + len(payload) + checksumSize)
	buf.Write(magic[:])
	_ = binary.Write(&buf, binary.BigEndian, FormatVersion)
	buf.WriteByte(byte(kind))
	_ = binary.Write(&buf, binary.BigEndian, uint64(len(payload)))
	buf.Write(payload)
	sum := sha256.Sum256(payload)
	buf.Write(sum[:])
	return buf.Bytes()
}

// unframe validates data and returns the payload.
func unframe(data []byte, want Kind) ([]byte, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Kind != want {
		return nil, fmt.Errorf("artifact kind %s, want %s", h.Kind, want)
	}

	body := data[headerSize:]
	have := uint64(len(body))
	if have < checksumSize || h.Length > have-checksumSize {
		return nil, fmt.Errorf("truncated: have %d payload bytes, header declares %d", max(len(body)-checksumSize, 0), h.Length)
	}
	if extra := have - checksumSize - h.Length; extra > 0 {
		return nil, fmt.Errorf("%d trailing bytes after checksum", extra)
	}

	payload := body[:h.Length]
	sum := sha256.Sum256(payload)
	if !bytes.Equal(sum[:], body[h.Length:]) {
		return nil, fmt.Errorf("checksum mismatch")
	}
	return payload, nil
}

func parseHeader(data []byte) (header, error) {
	if len(data) < headerSize {
		return header{}, fmt.Errorf("truncated: %d bytes is shorter than the %d byte header", len(data), headerSize)
	}
	if !bytes.Equal(data[:len(magic)], magic[:]) {
		return header{}, fmt.Errorf("not a pipeline artifact (bad magic)")
	}
	rest := data[len(magic):]
	h := header{
		Version: binary.BigEndian.Uint16(rest[0:2]),
		Kind:    Kind(rest[2]),
		Length:  binary.BigEndian.Uint64(rest[3:11]),
	}
	if h.Version != FormatVersion {
		return header{}, fmt.Errorf("format version %d, this build reads %d", h.Version, FormatVersion)
	}
	return h, nil
}
