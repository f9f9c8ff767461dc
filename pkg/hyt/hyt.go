// Package hyt implements the outer HYT/HSTRP frame: a 3-byte signature,
// a 1-byte type, a 2-byte sequence ID, and a variable payload that for
// ToRadio/FromRadio carries a TxCtrl frame (FromRadio additionally
// prefixes a repeater TLV header).
package hyt

import (
	"encoding/binary"
	"fmt"

	"github.com/hytera-adk/hylink-adk/pkg/hyterr"
	"github.com/hytera-adk/hylink-adk/pkg/txctrl"
)

// Signature bytes every HYT frame must begin with.
var Signature = [3]byte{0x32, 0x42, 0x00}

// Type identifies the outer HYT frame kind.
type Type uint8

const (
	TypeToRadio Type = 0x00
	TypeAck     Type = 0x01
	TypeHeartbeat Type = 0x02
	TypeSynAck  Type = 0x05
	TypeFromRadio Type = 0x20
	TypeSyn     Type = 0x24
)

func (t Type) String() string {
	switch t {
	case TypeToRadio:
		return "ToRadio"
	case TypeAck:
		return "Ack"
	case TypeHeartbeat:
		return "Heartbeat"
	case TypeSynAck:
		return "SynAck"
	case TypeFromRadio:
		return "FromRadio"
	case TypeSyn:
		return "Syn"
	default:
		return fmt.Sprintf("Type(0x%02X)", uint8(t))
	}
}

// Message is implemented by every HYT frame kind.
type Message interface {
	Type() Type
	SeqID() uint16
}

// Encodable is implemented by HYT frames the host may serialize. Syn and
// FromRadio are decode-only and do not implement it.
type Encodable interface {
	Message
	EncodePayload() []byte
}

// Ack is either side's acknowledgement of a sequenced frame; empty payload.
type Ack struct{ Seq uint16 }

func (m *Ack) Type() Type             { return TypeAck }
func (m *Ack) SeqID() uint16          { return m.Seq }
func (m *Ack) EncodePayload() []byte  { return nil }

// Heartbeat is the housekeeping keepalive; empty payload.
type Heartbeat struct{ Seq uint16 }

func (m *Heartbeat) Type() Type            { return TypeHeartbeat }
func (m *Heartbeat) SeqID() uint16         { return m.Seq }
func (m *Heartbeat) EncodePayload() []byte { return nil }

// SynAck is the host's answer to a Syn; empty payload.
type SynAck struct{ Seq uint16 }

func (m *SynAck) Type() Type             { return TypeSynAck }
func (m *SynAck) SeqID() uint16          { return m.Seq }
func (m *SynAck) EncodePayload() []byte  { return nil }

// ToRadio carries a TxCtrl command from host to repeater.
type ToRadio struct {
	Seq     uint16
	TxCtrl  txctrl.Message
	Reliable bool
}

func (m *ToRadio) Type() Type    { return TypeToRadio }
func (m *ToRadio) SeqID() uint16 { return m.Seq }

func (m *ToRadio) EncodePayload() []byte {
	payload, err := txctrl.Encode(m.TxCtrl, m.Reliable)
	if err != nil {
		// ToRadio is only constructed by the host with an encodable
		// TxCtrl message; a decode-only sub-message here is a caller
		// bug, not a wire condition, so this is intentionally a panic
		// rather than a silently truncated frame.
		panic(fmt.Sprintf("hyt: ToRadio.EncodePayload: %v", err))
	}
	return payload
}

// Syn is the repeater's discovery/handshake announcement. Decode-only:
// it is never constructed or serialized by the host.
type Syn struct {
	Seq    uint16
	Header RepeaterHeader
}

func (m *Syn) Type() Type    { return TypeSyn }
func (m *Syn) SeqID() uint16 { return m.Seq }

// FromRadio carries a TxCtrl response from repeater to host, preceded by
// a repeater TLV header. Decode-only.
type FromRadio struct {
	Seq    uint16
	Header RepeaterHeader
	TxCtrl *txctrl.Frame
}

func (m *FromRadio) Type() Type    { return TypeFromRadio }
func (m *FromRadio) SeqID() uint16 { return m.Seq }

// Config governs decode behavior for unrecognized outer types.
type Config struct {
	// ReturnGenericOnUnknown makes Decode return a *Generic carrier
	// instead of failing when the outer type is not recognized.
	ReturnGenericOnUnknown bool
	// TxCtrl is forwarded to txctrl.Decode for ToRadio/FromRadio payloads.
	TxCtrl txctrl.Config
}

// Generic carries an HYT frame of an unrecognized type.
type Generic struct {
	Seq     uint16
	RawType Type
	Payload []byte
}

func (m *Generic) Type() Type            { return m.RawType }
func (m *Generic) SeqID() uint16         { return m.Seq }
func (m *Generic) EncodePayload() []byte { return m.Payload }

// Decode parses a full HYT datagram. The seqId field (bytes 4-5) is read
// big-endian only. spec.md §9 leaves the handling of little-endian seqId
// bytes observed in some inbound captures as an open question and permits
// either choice as long as the deviation is documented: this decoder does
// not attempt a little-endian fallback, since the two interpretations
// cannot be disambiguated from the bytes alone without external context
// (e.g. the session's expected next seqId). Encode always emits
// big-endian, matching the canonical wire form.
func Decode(data []byte, cfg Config) (Message, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("hyt: frame length %d < 6: %w", len(data), hyterr.ErrPacketData)
	}
	if data[0] != Signature[0] || data[1] != Signature[1] || data[2] != Signature[2] {
		return nil, fmt.Errorf("hyt: signature % X: %w", data[0:3], hyterr.ErrBadSignature)
	}

	typ := Type(data[3])
	seq := binary.BigEndian.Uint16(data[4:6])
	payload := data[6:]

	switch typ {
	case TypeAck:
		return &Ack{Seq: seq}, nil
	case TypeHeartbeat:
		return &Heartbeat{Seq: seq}, nil
	case TypeSynAck:
		return &SynAck{Seq: seq}, nil
	case TypeToRadio:
		frame, err := txctrl.Decode(payload, cfg.TxCtrl)
		if err != nil {
			return nil, err
		}
		return &ToRadio{Seq: seq, TxCtrl: frame.Message, Reliable: frame.Reliable}, nil
	case TypeSyn:
		hdr, _, err := DecodeRepeaterHeader(payload)
		if err != nil {
			return nil, err
		}
		return &Syn{Seq: seq, Header: hdr}, nil
	case TypeFromRadio:
		hdr, n, err := DecodeRepeaterHeader(payload)
		if err != nil {
			return nil, err
		}
		frame, err := txctrl.Decode(payload[n:], cfg.TxCtrl)
		if err != nil {
			return nil, err
		}
		return &FromRadio{Seq: seq, Header: hdr, TxCtrl: frame}, nil
	default:
		if cfg.ReturnGenericOnUnknown {
			return &Generic{Seq: seq, RawType: typ, Payload: payload}, nil
		}
		return nil, fmt.Errorf("hyt: type 0x%02X: %w", uint8(typ), hyterr.ErrUnhandledType)
	}
}

// Encode serializes an HYT frame. Syn and FromRadio refuse to encode.
func Encode(m Message) ([]byte, error) {
	enc, ok := m.(Encodable)
	if !ok {
		return nil, fmt.Errorf("hyt: %s: %w", m.Type(), hyterr.ErrNotSerializable)
	}
	payload := enc.EncodePayload()

	out := make([]byte, 6+len(payload))
	out[0], out[1], out[2] = Signature[0], Signature[1], Signature[2]
	out[3] = byte(m.Type())
	binary.BigEndian.PutUint16(out[4:6], m.SeqID())
	copy(out[6:], payload)
	return out, nil
}
