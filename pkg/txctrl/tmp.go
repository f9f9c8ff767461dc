package txctrl

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/hytera-adk/hylink-adk/pkg/enums"
	"github.com/hytera-adk/hylink-adk/pkg/hyterr"
)

const (
	opPrivateMsgNeedAck = 0x00A1
	opPrivateMsgAnswer  = 0x00A2
	opGroupMsg          = 0x00B1
	opGroupMsgAnswer    = 0x00B2
	opPrivateMsgNoAck   = 0x80A1
)

func init() {
	register(enums.HeaderTMP, opPrivateMsgNeedAck, decodeTextMessage(opPrivateMsgNeedAck, false))
	register(enums.HeaderTMP, opGroupMsg, decodeTextMessage(opGroupMsg, true))
	register(enums.HeaderTMP, opPrivateMsgNoAck, decodeTextMessage(opPrivateMsgNoAck, false))
	register(enums.HeaderTMP, opPrivateMsgAnswer, decodeMessageAnswer(opPrivateMsgAnswer))
	register(enums.HeaderTMP, opGroupMsgAnswer, decodeMessageAnswer(opGroupMsgAnswer))
}

// TextMessage carries a TMP text message (opcodes 0x00A1 private
// need-ack, 0x00B1 group, 0x80A1 private no-ack), decode-only: these
// always arrive from the repeater, never originate on the host.
type TextMessage struct {
	opcode uint16
	Group  bool
	Seq    uint32
	DestIP uint32
	SrcIP  uint32
	Text   string
}

func (m *TextMessage) Header() enums.MessageHeader { return enums.HeaderTMP }
func (m *TextMessage) Opcode() uint16              { return m.opcode }

// NeedsAck reports whether the repeater expects a TMP-level answer
// (0x00A2/0x00B2) in addition to the HYT-level Ack.
func (m *TextMessage) NeedsAck() bool { return m.opcode == opPrivateMsgNeedAck || m.opcode == opGroupMsg }

func decodeTextMessage(opcode uint16, group bool) decoder {
	return func(p []byte) (Message, error) {
		if len(p) < 12 {
			return nil, fmt.Errorf("txctrl: TMP message payload too short: %w", hyterr.ErrPacketData)
		}
		text, err := decodeUTF16LE(p[12:])
		if err != nil {
			return nil, err
		}
		return &TextMessage{
			opcode: opcode,
			Group:  group,
			Seq:    binary.BigEndian.Uint32(p[0:4]),
			DestIP: binary.BigEndian.Uint32(p[4:8]),
			SrcIP:  binary.BigEndian.Uint32(p[8:12]),
			Text:   text,
		}, nil
	}
}

// MessageAnswer acknowledges a TMP TextMessage at the protocol level
// (opcodes 0x00A2 private, 0x00B2 group), decode-only.
type MessageAnswer struct {
	opcode uint16
	Seq    uint32
	DestIP uint32
	SrcIP  uint32
}

func (m *MessageAnswer) Header() enums.MessageHeader { return enums.HeaderTMP }
func (m *MessageAnswer) Opcode() uint16              { return m.opcode }

func decodeMessageAnswer(opcode uint16) decoder {
	return func(p []byte) (Message, error) {
		if len(p) < 12 {
			return nil, fmt.Errorf("txctrl: TMP message answer payload too short: %w", hyterr.ErrPacketData)
		}
		return &MessageAnswer{
			opcode: opcode,
			Seq:    binary.BigEndian.Uint32(p[0:4]),
			DestIP: binary.BigEndian.Uint32(p[4:8]),
			SrcIP:  binary.BigEndian.Uint32(p[8:12]),
		}, nil
	}
}

// decodeUTF16LE decodes a little-endian UTF-16 byte buffer into a Go
// string. An odd-length buffer is invalid.
func decodeUTF16LE(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("txctrl: odd-length UTF-16LE buffer (%d bytes): %w", len(b), hyterr.ErrPacketData)
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i : 2*i+2])
	}
	return string(utf16.Decode(units)), nil
}

// encodeUTF16LE is the inverse of decodeUTF16LE, used by tests that build
// synthetic TMP payloads.
func encodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:2*i+2], u)
	}
	return out
}
