package hyt

import (
	"encoding/binary"
	"fmt"

	"github.com/hytera-adk/hylink-adk/pkg/hyterr"
)

// RepeaterHeader is the decoded repeater TLV header prefixing Syn and
// FromRadio payloads: a sequence of (tag, length, value) triples. The
// high bit of each tag byte is a continuation flag.
type RepeaterHeader struct {
	// RTPCapable is set when tag 1 (zero length) is present: the
	// repeater advertises an RTP-capable companion service.
	RTPCapable bool
	// HasRadioID reports whether tag 3 (repeater radio ID) was present.
	HasRadioID bool
	RadioID    uint32
	// HasTimeslot reports whether tag 4 (timeslot index) was present.
	HasTimeslot bool
	Timeslot    uint8
	// Unknown holds any tags not recognized above, preserved but ignored.
	Unknown []RawTLV
}

// RawTLV is an unrecognized (tag, value) pair, tag stripped of its
// continuation bit.
type RawTLV struct {
	Tag   uint8
	Value []byte
}

const tlvContinuationBit = 0x80

// DecodeRepeaterHeader parses the TLV sequence at the start of data,
// tolerating unknown tags, and returns the header plus the number of
// bytes consumed so the caller can locate the TxCtrl payload that follows.
func DecodeRepeaterHeader(data []byte) (RepeaterHeader, int, error) {
	var hdr RepeaterHeader
	off := 0

	for {
		if off >= len(data) {
			return hdr, off, fmt.Errorf("hyt: repeater header truncated (missing terminal TLV): %w", hyterr.ErrPacketData)
		}

		tagByte := data[off]
		more := tagByte&tlvContinuationBit != 0
		tag := tagByte &^ tlvContinuationBit
		off++

		if off >= len(data) {
			return hdr, off, fmt.Errorf("hyt: repeater header truncated (missing length): %w", hyterr.ErrPacketData)
		}
		length := int(data[off])
		off++

		if off+length > len(data) {
			return hdr, off, fmt.Errorf("hyt: repeater header TLV tag %d declares length %d past end: %w", tag, length, hyterr.ErrPacketData)
		}
		value := data[off : off+length]
		off += length

		switch tag {
		case 1:
			hdr.RTPCapable = true
		case 3:
			if length != 4 {
				return hdr, off, fmt.Errorf("hyt: repeater header tag 3 length %d != 4: %w", length, hyterr.ErrPacketData)
			}
			hdr.HasRadioID = true
			hdr.RadioID = binary.BigEndian.Uint32(value)
		case 4:
			if length != 1 {
				return hdr, off, fmt.Errorf("hyt: repeater header tag 4 length %d != 1: %w", length, hyterr.ErrPacketData)
			}
			hdr.HasTimeslot = true
			hdr.Timeslot = value[0]
		default:
			hdr.Unknown = append(hdr.Unknown, RawTLV{Tag: tag, Value: append([]byte(nil), value...)})
		}

		if !more {
			return hdr, off, nil
		}
	}
}
