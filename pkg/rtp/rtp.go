// Package rtp implements the RFC-3550 RTP fixed header, optional CSRC
// list, and optional header extension used to carry G.711 voice audio
// to and from a Hytera repeater, including the repeater's required
// "repeat enable" extension (profile 0x15, three zero words).
package rtp

import (
	"encoding/binary"
	"fmt"

	"github.com/hytera-adk/hylink-adk/pkg/hyterr"
)

// Hytera payload types of interest.
const (
	PayloadTypePCMU = 0 // G.711 mu-law
	PayloadTypePCMA = 8 // G.711 A-law
)

// RepeatEnableProfile is the extension profile the repeater requires to
// be present (with three zero data words) for audio to be repeated.
const RepeatEnableProfile = 0x15

const fixedHeaderSize = 12

// Extension is the optional RTP header extension: a profile identifier
// and a sequence of 32-bit profile-defined data words.
type Extension struct {
	Profile uint16
	Data    []uint32
}

// Packet is a decoded/encodable RTP packet.
type Packet struct {
	Version   uint8
	Marker    bool
	PayloadType uint8
	Sequence  uint16
	Timestamp uint32
	SSRC      uint32
	CSRC      []uint32
	Extension *Extension
	Payload   []byte
}

// RepeatEnableExtension returns the extension the repeater requires to
// accept and repeat outbound audio.
func RepeatEnableExtension() *Extension {
	return &Extension{Profile: RepeatEnableProfile, Data: []uint32{0, 0, 0}}
}

// Decode parses a raw RTP datagram. It is lenient about unknown payload
// types but rejects a version other than 0..3 (the 2-bit field's domain);
// callers that require RFC-3550 compliance should additionally check
// Version == 2.
func Decode(data []byte) (*Packet, error) {
	if len(data) < fixedHeaderSize {
		return nil, fmt.Errorf("rtp: packet length %d < %d: %w", len(data), fixedHeaderSize, hyterr.ErrPacketData)
	}

	b0 := data[0]
	version := b0 >> 6
	padding := b0&0x20 != 0
	extension := b0&0x10 != 0
	csrcCount := int(b0 & 0x0F)

	if version > 3 {
		return nil, fmt.Errorf("rtp: invalid version %d: %w", version, hyterr.ErrPacketData)
	}

	b1 := data[1]
	marker := b1&0x80 != 0
	payloadType := b1 & 0x7F

	seq := binary.BigEndian.Uint16(data[2:4])
	timestamp := binary.BigEndian.Uint32(data[4:8])
	ssrc := binary.BigEndian.Uint32(data[8:12])

	off := fixedHeaderSize
	if len(data) < off+csrcCount*4 {
		return nil, fmt.Errorf("rtp: truncated CSRC list: %w", hyterr.ErrPacketData)
	}
	csrcs := make([]uint32, csrcCount)
	for i := 0; i < csrcCount; i++ {
		csrcs[i] = binary.BigEndian.Uint32(data[off : off+4])
		off += 4
	}

	var ext *Extension
	if extension {
		if len(data) < off+4 {
			return nil, fmt.Errorf("rtp: truncated extension header: %w", hyterr.ErrPacketData)
		}
		profile := binary.BigEndian.Uint16(data[off : off+2])
		length := int(binary.BigEndian.Uint16(data[off+2 : off+4]))
		off += 4
		if len(data) < off+length*4 {
			return nil, fmt.Errorf("rtp: truncated extension data: %w", hyterr.ErrPacketData)
		}
		words := make([]uint32, length)
		for i := 0; i < length; i++ {
			words[i] = binary.BigEndian.Uint32(data[off : off+4])
			off += 4
		}
		ext = &Extension{Profile: profile, Data: words}
	}

	payload := data[off:]
	if padding {
		if len(payload) == 0 {
			return nil, fmt.Errorf("rtp: padding bit set on empty payload: %w", hyterr.ErrPacketData)
		}
		padLen := int(payload[len(payload)-1])
		if padLen <= 0 || padLen > len(payload) {
			return nil, fmt.Errorf("rtp: invalid padding length %d: %w", padLen, hyterr.ErrPacketData)
		}
		payload = payload[:len(payload)-padLen]
	}

	return &Packet{
		Version:     version,
		Marker:      marker,
		PayloadType: payloadType,
		Sequence:    seq,
		Timestamp:   timestamp,
		SSRC:        ssrc,
		CSRC:        csrcs,
		Extension:   ext,
		Payload:     payload,
	}, nil
}

// Encode serializes a Packet. It never emits padding. It rejects a
// version greater than 3, a payload type greater than 0x7F, or more than
// 15 CSRC identifiers — all values the 2-bit/7-bit/4-bit wire fields
// cannot represent.
func Encode(p *Packet) ([]byte, error) {
	if p.Version > 3 {
		return nil, fmt.Errorf("rtp: version %d > 3: %w", p.Version, hyterr.ErrPacketData)
	}
	if p.PayloadType > 0x7F {
		return nil, fmt.Errorf("rtp: payload type %d > 0x7F: %w", p.PayloadType, hyterr.ErrPacketData)
	}
	if len(p.CSRC) > 15 {
		return nil, fmt.Errorf("rtp: %d CSRC identifiers > 15: %w", len(p.CSRC), hyterr.ErrPacketData)
	}

	extWords := 0
	if p.Extension != nil {
		extWords = 1 + len(p.Extension.Data)
	}

	out := make([]byte, fixedHeaderSize+len(p.CSRC)*4+extWords*4+len(p.Payload))

	b0 := p.Version << 6
	if p.Extension != nil {
		b0 |= 0x10
	}
	b0 |= byte(len(p.CSRC))
	out[0] = b0

	b1 := p.PayloadType & 0x7F
	if p.Marker {
		b1 |= 0x80
	}
	out[1] = b1

	binary.BigEndian.PutUint16(out[2:4], p.Sequence)
	binary.BigEndian.PutUint32(out[4:8], p.Timestamp)
	binary.BigEndian.PutUint32(out[8:12], p.SSRC)

	off := fixedHeaderSize
	for _, c := range p.CSRC {
		binary.BigEndian.PutUint32(out[off:off+4], c)
		off += 4
	}

	if p.Extension != nil {
		binary.BigEndian.PutUint16(out[off:off+2], p.Extension.Profile)
		binary.BigEndian.PutUint16(out[off+2:off+4], uint16(len(p.Extension.Data)))
		off += 4
		for _, w := range p.Extension.Data {
			binary.BigEndian.PutUint32(out[off:off+4], w)
			off += 4
		}
	}

	copy(out[off:], p.Payload)

	return out, nil
}
