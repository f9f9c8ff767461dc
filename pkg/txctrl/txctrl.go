// Package txctrl implements the TxCtrl framing carried inside HYT ToRadio
// and FromRadio payloads: header byte (protocol class + reliable flag),
// opcode, length, payload, checksum, trailer, and per-(header,opcode)
// typed sub-messages (RCP, RRS, TMP).
//
// Endianness rule: when the header's protocol class is RCP, the opcode
// and length fields are little-endian; every other protocol class uses
// big-endian. The checksum is computed over the serialized frame bytes
// between the header byte and the trailing checksum+trailer pair, so it
// is endianness-agnostic by construction.
package txctrl

import (
	"encoding/binary"
	"fmt"

	"github.com/hytera-adk/hylink-adk/pkg/enums"
	"github.com/hytera-adk/hylink-adk/pkg/hyterr"
)

const trailerByte = 0x03

// Message is implemented by every TxCtrl sub-message, decodable or not.
type Message interface {
	Header() enums.MessageHeader
	Opcode() uint16
}

// Encodable is implemented by sub-messages the host may send. Decode-only
// sub-messages (server responses) deliberately do not implement it.
type Encodable interface {
	Message
	EncodePayload() []byte
}

// decoder parses a sub-message's raw payload bytes into a typed Message.
type decoder func(payload []byte) (Message, error)

// dispatch is the static (header, opcode) -> decoder table, populated by
// each sub-protocol file's init().
var dispatch = map[dispatchKey]decoder{}

type dispatchKey struct {
	hdr enums.MessageHeader
	op  uint16
}

func register(hdr enums.MessageHeader, op uint16, d decoder) {
	dispatch[dispatchKey{hdr, op}] = d
}

// Config governs decode behavior for opcodes with no registered decoder.
type Config struct {
	// ReturnGenericOnUnknown makes Decode return a *Generic carrier
	// instead of failing when (header, opcode) is not registered.
	ReturnGenericOnUnknown bool
}

// Generic carries a TxCtrl sub-message whose opcode is not in the static
// dispatch table. It round-trips its raw payload unchanged.
type Generic struct {
	Hdr       enums.MessageHeader
	Op        uint16
	ReliableF bool
	Raw       []byte
}

func (g *Generic) Header() enums.MessageHeader { return g.Hdr }
func (g *Generic) Opcode() uint16              { return g.Op }
func (g *Generic) EncodePayload() []byte       { return g.Raw }

// Frame is the decoded envelope: the typed Message plus the two fields
// that live outside any sub-message's payload.
type Frame struct {
	Message  Message
	Reliable bool
}

// Decode parses a full TxCtrl frame (header..trailer) and dispatches to
// the registered sub-message decoder.
func Decode(data []byte, cfg Config) (*Frame, error) {
	hdr, reliable, opcode, payload, err := decodeEnvelope(data)
	if err != nil {
		return nil, err
	}

	dec, ok := dispatch[dispatchKey{hdr, opcode}]
	if !ok {
		if cfg.ReturnGenericOnUnknown {
			return &Frame{
				Message:  &Generic{Hdr: hdr, Op: opcode, ReliableF: reliable, Raw: payload},
				Reliable: reliable,
			}, nil
		}
		return nil, fmt.Errorf("txctrl: %s opcode 0x%04X: %w", hdr, opcode, hyterr.ErrUnhandledType)
	}

	msg, err := dec(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Message: msg, Reliable: reliable}, nil
}

// Encode serializes a sub-message into a full TxCtrl frame.
func Encode(msg Message, reliable bool) ([]byte, error) {
	enc, ok := msg.(Encodable)
	if !ok {
		return nil, fmt.Errorf("txctrl: %s opcode 0x%04X: %w", msg.Header(), msg.Opcode(), hyterr.ErrNotSerializable)
	}
	payload := enc.EncodePayload()
	return encodeEnvelope(msg.Header(), reliable, msg.Opcode(), payload), nil
}

// decodeEnvelope validates and strips the TxCtrl framing, returning the
// header class, reliable flag, opcode, and raw payload bytes.
func decodeEnvelope(data []byte) (hdr enums.MessageHeader, reliable bool, opcode uint16, payload []byte, err error) {
	if len(data) < 7 {
		return 0, false, 0, nil, fmt.Errorf("txctrl: frame length %d < 7: %w", len(data), hyterr.ErrPacketData)
	}
	if data[len(data)-1] != trailerByte {
		return 0, false, 0, nil, fmt.Errorf("txctrl: trailer byte 0x%02X != 0x03: %w", data[len(data)-1], hyterr.ErrPacketData)
	}

	csumRegion := data[1 : len(data)-2]
	want := data[len(data)-2]
	if got := checksum(csumRegion); got != want {
		return 0, false, 0, nil, fmt.Errorf("txctrl: checksum 0x%02X != expected 0x%02X: %w", want, got, hyterr.ErrPacketData)
	}

	hdrByte := data[0]
	reliable = hdrByte&0x80 != 0
	hdr = enums.MessageHeader(hdrByte & 0x7F)

	order := byteOrder(hdr)
	opcode = order.Uint16(data[1:3])
	length := int(order.Uint16(data[3:5]))

	if 5+length+2 != len(data) {
		return 0, false, 0, nil, fmt.Errorf("txctrl: declared length %d does not match frame size %d: %w", length, len(data), hyterr.ErrPacketData)
	}

	payload = data[5 : 5+length]
	return hdr, reliable, opcode, payload, nil
}

// encodeEnvelope serializes the TxCtrl framing around a sub-message's
// already-encoded payload.
func encodeEnvelope(hdr enums.MessageHeader, reliable bool, opcode uint16, payload []byte) []byte {
	order := byteOrder(hdr)

	out := make([]byte, 5+len(payload)+2)

	hdrByte := byte(hdr)
	if reliable {
		hdrByte |= 0x80
	}
	out[0] = hdrByte

	order.PutUint16(out[1:3], opcode)
	order.PutUint16(out[3:5], uint16(len(payload)))
	copy(out[5:5+len(payload)], payload)

	csum := checksum(out[1 : 5+len(payload)])
	out[5+len(payload)] = csum
	out[5+len(payload)+1] = trailerByte

	return out
}

// byteOrder implements the endianness rule: RCP is little-endian,
// everything else is big-endian.
func byteOrder(hdr enums.MessageHeader) binary.ByteOrder {
	if hdr == enums.HeaderRCP {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// checksum implements (~sum(b) + 0x33) & 0xFF.
func checksum(b []byte) byte {
	var sum uint32
	for _, v := range b {
		sum += uint32(v)
	}
	return byte((^sum + 0x33) & 0xFF)
}
