package txctrl

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/hytera-adk/hylink-adk/pkg/enums"
	"github.com/hytera-adk/hylink-adk/pkg/hyterr"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	return b
}

// S3 from spec.md §8: RCP Call request, reliable, destId=1234 group.
func TestCallRequestEncodeMatchesFixture(t *testing.T) {
	msg := &CallRequest{CallType: enums.CallTypeGroup, DestID: 1234}
	got, err := Encode(msg, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := mustHex(t, "82 41 08 05 00 00 D2 04 00 00 0E 03")
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode() = % X, want % X", got, want)
	}
}

func TestCallRequestRoundTrip(t *testing.T) {
	msg := &CallRequest{CallType: enums.CallTypePrivate, DestID: 0xABCDEF}
	data, err := Encode(msg, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	frame, err := Decode(data, Config{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !frame.Reliable {
		t.Error("Reliable = false, want true")
	}
	got, ok := frame.Message.(*CallRequest)
	if !ok {
		t.Fatalf("decoded type = %T, want *CallRequest", frame.Message)
	}
	if *got != *msg {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, msg)
	}
}

// S4 from spec.md §8: button press then release.
func TestButtonRequestPressRelease(t *testing.T) {
	press := &ButtonRequest{Target: enums.ButtonTargetFrontPTT, Op: enums.ButtonOpPress}
	data, err := Encode(press, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	frame, err := Decode(data, Config{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := frame.Message.(*ButtonRequest)
	if got.Target != enums.ButtonTargetFrontPTT || got.Op != enums.ButtonOpPress {
		t.Errorf("got %+v, want press", got)
	}

	release := &ButtonRequest{Target: enums.ButtonTargetFrontPTT, Op: enums.ButtonOpRelease}
	data2, _ := Encode(release, true)
	frame2, err := Decode(data2, Config{})
	if err != nil {
		t.Fatalf("Decode release: %v", err)
	}
	got2 := frame2.Message.(*ButtonRequest)
	if got2.Op != enums.ButtonOpRelease {
		t.Errorf("got op %v, want release", got2.Op)
	}
}

// S5 from spec.md §8: RRS registration, big-endian opcode.
func TestRegistrationDecodeFixture(t *testing.T) {
	data := mustHex(t, "11 00 03 00 04 0A 00 04 D2 4B 03")
	frame, err := Decode(data, Config{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	reg, ok := frame.Message.(*Registration)
	if !ok {
		t.Fatalf("decoded type = %T, want *Registration", frame.Message)
	}
	if reg.RadioIP != 0x0A0004D2 {
		t.Errorf("RadioIP = 0x%08X, want 0x0A0004D2", reg.RadioIP)
	}
	if reg.RadioID() != 1234 {
		t.Errorf("RadioID() = %d, want 1234", reg.RadioID())
	}
}

func TestChecksumSensitivity(t *testing.T) {
	msg := &CallRequest{CallType: enums.CallTypeGroup, DestID: 1234}
	data, err := Encode(msg, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for i := 1; i < len(data)-2; i++ {
		mutated := append([]byte(nil), data...)
		mutated[i] ^= 0xFF
		if _, err := Decode(mutated, Config{}); !errors.Is(err, hyterr.ErrPacketData) {
			t.Errorf("byte %d flipped: Decode err = %v, want ErrPacketData", i, err)
		}
	}
}

func TestDecodeUnhandledOpcode(t *testing.T) {
	// RRS header, opcode 0xFFFF, empty payload, valid checksum/trailer.
	frame := encodeEnvelope(enums.HeaderRRS, false, 0xFFFF, nil)

	_, err := Decode(frame, Config{})
	if !errors.Is(err, hyterr.ErrUnhandledType) {
		t.Fatalf("err = %v, want ErrUnhandledType", err)
	}

	generic, err := Decode(frame, Config{ReturnGenericOnUnknown: true})
	if err != nil {
		t.Fatalf("Decode with ReturnGenericOnUnknown: %v", err)
	}
	g, ok := generic.Message.(*Generic)
	if !ok {
		t.Fatalf("decoded type = %T, want *Generic", generic.Message)
	}
	if g.Opcode() != 0xFFFF || g.Header() != enums.HeaderRRS {
		t.Errorf("generic carrier mismatch: %+v", g)
	}
}

func TestDecodeOnlyRejectsEncode(t *testing.T) {
	resp := &ButtonResponse{Result: enums.ResultOK}
	if _, err := Encode(resp, false); !errors.Is(err, hyterr.ErrNotSerializable) {
		t.Fatalf("Encode decode-only message: err = %v, want ErrNotSerializable", err)
	}
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode([]byte{0x02, 0x00}, Config{})
	if !errors.Is(err, hyterr.ErrPacketData) {
		t.Fatalf("err = %v, want ErrPacketData", err)
	}
}

func TestUTF16Message(t *testing.T) {
	text := "hello"
	payload := make([]byte, 12+len(text)*2)
	payload[3] = 0x01 // seq = 1
	payload[7] = 0x02 // destIP low byte
	payload[11] = 0x03
	copy(payload[12:], encodeUTF16LE(text))

	frame := encodeEnvelope(enums.HeaderTMP, false, opPrivateMsgNeedAck, payload)
	decoded, err := Decode(frame, Config{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tm, ok := decoded.Message.(*TextMessage)
	if !ok {
		t.Fatalf("decoded type = %T, want *TextMessage", decoded.Message)
	}
	if tm.Text != text {
		t.Errorf("Text = %q, want %q", tm.Text, text)
	}
	if !tm.NeedsAck() {
		t.Error("NeedsAck() = false, want true for 0x00A1")
	}
}
