package rtp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := &Packet{
		Version:     2,
		PayloadType: PayloadTypePCMU,
		Sequence:    1000,
		Timestamp:   160000,
		SSRC:        0,
		Extension:   RepeatEnableExtension(),
		Payload:     bytes.Repeat([]byte{0xFF}, 160),
	}

	data, err := Encode(p)
	require.NoError(t, err)

	// S6 from spec.md §8: version 2, extension bit set, PT=0, seq=1000.
	wantHeader := []byte{0x90, 0x00, 0x03, 0xE8}
	assert.Equal(t, wantHeader, data[:4])

	decoded, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, p.Version, decoded.Version)
	assert.Equal(t, p.PayloadType, decoded.PayloadType)
	assert.Equal(t, p.Sequence, decoded.Sequence)
	assert.Equal(t, p.Timestamp, decoded.Timestamp)
	assert.Equal(t, p.SSRC, decoded.SSRC)

	require.NotNil(t, decoded.Extension)
	assert.Equal(t, uint16(RepeatEnableProfile), decoded.Extension.Profile)
	require.Len(t, decoded.Extension.Data, 3)
	assert.Equal(t, uint32(0), decoded.Extension.Data[0])
	assert.Equal(t, p.Payload, decoded.Payload)
}

func TestEncodeRejectsInvalidFields(t *testing.T) {
	_, err := Encode(&Packet{Version: 4})
	assert.Error(t, err, "expected error for version > 3")

	_, err = Encode(&Packet{PayloadType: 0x80})
	assert.Error(t, err, "expected error for payload type > 0x7F")

	csrc := make([]uint32, 16)
	_, err = Encode(&Packet{CSRC: csrc})
	assert.Error(t, err, "expected error for > 15 CSRC identifiers")
}

func TestDecodeWithCSRCAndNoExtension(t *testing.T) {
	p := &Packet{
		Version:     2,
		PayloadType: PayloadTypePCMA,
		Sequence:    42,
		Timestamp:   8000,
		SSRC:        0xDEADBEEF,
		CSRC:        []uint32{1, 2, 3},
		Payload:     []byte{0x01, 0x02, 0x03},
	}
	data, err := Encode(p)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, decoded.CSRC, 3)
	assert.Equal(t, uint32(2), decoded.CSRC[1])
	assert.Nil(t, decoded.Extension)
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode([]byte{0x80, 0x00})
	assert.Error(t, err, "expected error decoding truncated header")
}

func TestDecodeRejectsPaddingLongerThanPayload(t *testing.T) {
	data := []byte{0xA0, 0x00, 0x00, 0x01, 0, 0, 0, 2, 0, 0, 0, 3, 0xFF, 5}
	_, err := Decode(data)
	assert.Error(t, err, "expected error for oversized padding length")
}
