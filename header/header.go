// Package header implements the fixed-size record written as the first
// bits of the hidden stream, binding the uncompressed payload length, the
// ciphertext length, and the AES-CBC initialization vector.
package header

import (
	"encoding/binary"
	"fmt"
)

// Size is the on-wire size of a Header, in bytes: two 8-byte lengths plus
// a 32-byte IV storage region (only the first 16 bytes of which AES-CBC
// actually uses).
const Size = 48

// Header binds the lengths and IV needed to reverse the embed pipeline.
// Marshal/Unmarshal define a canonical 48-byte little-endian layout,
// rather than relying on in-memory struct representation, so the format
// is stable across platforms and Go versions.
type Header struct {
	LengthUncompressed uint64
	LengthEncrypted    uint64
	IV                 [32]byte
}

// Marshal serializes h to its 48-byte wire form.
func (h *Header) Marshal() []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint64(buf[0:8], h.LengthUncompressed)
	binary.LittleEndian.PutUint64(buf[8:16], h.LengthEncrypted)
	copy(buf[16:48], h.IV[:])
	return buf
}

// Unmarshal parses a 48-byte wire-form header.
func Unmarshal(buf []byte) (*Header, error) {
	if len(buf) != Size {
		return nil, fmt.Errorf("header: expected %d bytes, got %d", Size, len(buf))
	}
	h := &Header{}
	h.LengthUncompressed = binary.LittleEndian.Uint64(buf[0:8])
	h.LengthEncrypted = binary.LittleEndian.Uint64(buf[8:16])
	copy(h.IV[:], buf[16:48])
	return h, nil
}
