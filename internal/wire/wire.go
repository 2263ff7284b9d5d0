// Package wire implements the framing primitives of the save container:
// little-endian u32 fields and length-prefixed UTF-16LE member names.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf16"
)

// Sentinel errors for malformed frames.
var (
	// ErrTruncated is returned when the stream ends inside a field or body.
	ErrTruncated = errors.New("wire: truncated field")

	// ErrInvalidName is returned when a name field is not valid UTF-16
	// (an unpaired surrogate code unit).
	ErrInvalidName = errors.New("wire: invalid UTF-16 name")

	// ErrNameTooLong is returned when a name exceeds the u32 length field.
	ErrNameTooLong = errors.New("wire: name exceeds 32-bit length field")
)

// ReadUint32 reads one little-endian u32 from r.
//
// A clean end of stream before the first byte returns io.EOF, which callers
// use to detect the end of the archive. A stream that ends after one to
// three bytes returns ErrTruncated.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	n, err := io.ReadFull(r, buf[:])
	switch {
	case err == nil:
		return binary.LittleEndian.Uint32(buf[:]), nil
	case errors.Is(err, io.EOF) && n == 0:
		return 0, io.EOF
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		return 0, ErrTruncated
	default:
		return 0, err
	}
}

// ReadName reads units UTF-16LE code units from r and decodes them.
//
// Unlike utf16.Decode, which substitutes U+FFFD for unpaired surrogates,
// ReadName reports them as ErrInvalidName: a name that does not round-trip
// is a malformed archive, not a cosmetic defect.
func ReadName(r io.Reader, units uint32) (string, error) {
	raw := make([]byte, 2*int64(units))
	if _, err := io.ReadFull(r, raw); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return "", ErrTruncated
		}
		return "", err
	}

	codes := make([]uint16, units)
	for i := range codes {
		codes[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	if err := validateSurrogates(codes); err != nil {
		return "", err
	}
	return string(utf16.Decode(codes)), nil
}

// validateSurrogates checks that every surrogate code unit is part of
// a high/low pair.
func validateSurrogates(codes []uint16) error {
	for i := 0; i < len(codes); i++ {
		c := codes[i]
		switch {
		case c < 0xD800 || c >= 0xE000:
			// BMP scalar, fine.
		case c < 0xDC00:
			// High surrogate: must be followed by a low surrogate.
			if i+1 >= len(codes) || codes[i+1] < 0xDC00 || codes[i+1] >= 0xE000 {
				return fmt.Errorf("%w: unpaired high surrogate at unit %d", ErrInvalidName, i)
			}
			i++
		default:
			return fmt.Errorf("%w: unpaired low surrogate at unit %d", ErrInvalidName, i)
		}
	}
	return nil
}

// AppendUint32 appends v to b in little-endian order.
func AppendUint32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// EncodeName encodes name as a length-prefixed UTF-16LE field: the code
// unit count as a u32 followed by the units themselves.
func EncodeName(name string) ([]byte, error) {
	codes := utf16.Encode([]rune(name))
	if len(codes) > math.MaxUint32 {
		return nil, ErrNameTooLong
	}

	out := make([]byte, 0, 4+2*len(codes))
	out = AppendUint32(out, uint32(len(codes)))
	for _, c := range codes {
		out = binary.LittleEndian.AppendUint16(out, c)
	}
	return out, nil
}
