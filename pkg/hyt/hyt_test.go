package hyt

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	return b
}

// S1 from spec.md §8: Syn from a repeater advertising radio ID 99999 on
// timeslot 1, no RTP-capable tag.
func TestSynDecodeFixture(t *testing.T) {
	payload := mustHex(t, "83 04 00 01 86 9F 04 01 01")
	frame := append([]byte{0x32, 0x42, 0x00, byte(TypeSyn), 0x00, 0x07}, payload...)

	msg, err := Decode(frame, Config{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	syn, ok := msg.(*Syn)
	if !ok {
		t.Fatalf("decoded type = %T, want *Syn", msg)
	}
	if syn.Seq != 7 {
		t.Errorf("Seq = %d, want 7", syn.Seq)
	}
	if !syn.Header.HasRadioID || syn.Header.RadioID != 99999 {
		t.Errorf("Header.RadioID = %+v, want 99999", syn.Header)
	}
	if !syn.Header.HasTimeslot || syn.Header.Timeslot != 1 {
		t.Errorf("Header.Timeslot = %+v, want 1", syn.Header)
	}
	if syn.Header.RTPCapable {
		t.Error("RTPCapable = true, want false")
	}
}

// S2 from spec.md §8: host answers a Syn with an empty SynAck echoing seq.
func TestSynAckEncode(t *testing.T) {
	got, err := Encode(&SynAck{Seq: 7})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := mustHex(t, "32 42 00 05 00 07")
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode() = % X, want % X", got, want)
	}
}

func TestRepeaterHeaderTolerantOfUnknownTags(t *testing.T) {
	// tag 0x85 (continuation, unknown tag 5, len 2), then terminal tag 4 (timeslot).
	payload := mustHex(t, "85 02 AA BB 04 01 02")
	hdr, n, err := DecodeRepeaterHeader(payload)
	if err != nil {
		t.Fatalf("DecodeRepeaterHeader: %v", err)
	}
	if n != len(payload) {
		t.Errorf("consumed %d bytes, want %d", n, len(payload))
	}
	if len(hdr.Unknown) != 1 || hdr.Unknown[0].Tag != 5 {
		t.Errorf("Unknown = %+v, want one entry with tag 5", hdr.Unknown)
	}
	if !hdr.HasTimeslot || hdr.Timeslot != 2 {
		t.Errorf("Timeslot = %+v, want 2", hdr)
	}
}

func TestFromRadioDecodesHeaderThenTxCtrl(t *testing.T) {
	// Repeater header: tag 3 (radio ID 1234), terminal.
	header := mustHex(t, "03 04 00 00 04 D2")
	// RRS OfflineNotice (opcode 0x0001), radio IP 0x00000001.
	txctrlFrame := mustHex(t, "11 00 01 00 04 00 00 00 01 2C 03")
	payload := append(append([]byte(nil), header...), txctrlFrame...)
	frame := append([]byte{0x32, 0x42, 0x00, byte(TypeFromRadio), 0x00, 0x01}, payload...)

	msg, err := Decode(frame, Config{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fr, ok := msg.(*FromRadio)
	if !ok {
		t.Fatalf("decoded type = %T, want *FromRadio", msg)
	}
	if !fr.Header.HasRadioID || fr.Header.RadioID != 1234 {
		t.Errorf("Header.RadioID = %+v, want 1234", fr.Header)
	}
	if fr.TxCtrl == nil {
		t.Fatal("TxCtrl = nil")
	}
}

func TestDecodeBadSignature(t *testing.T) {
	frame := mustHex(t, "00 00 00 01 00 01")
	if _, err := Decode(frame, Config{}); err == nil {
		t.Error("expected error for bad signature")
	}
}

func TestDecodeUnknownTypeGeneric(t *testing.T) {
	frame := []byte{0x32, 0x42, 0x00, 0x99, 0x00, 0x03, 0xAA, 0xBB}
	_, err := Decode(frame, Config{})
	if err == nil {
		t.Fatal("expected error without ReturnGenericOnUnknown")
	}

	msg, err := Decode(frame, Config{ReturnGenericOnUnknown: true})
	if err != nil {
		t.Fatalf("Decode with ReturnGenericOnUnknown: %v", err)
	}
	g, ok := msg.(*Generic)
	if !ok {
		t.Fatalf("decoded type = %T, want *Generic", msg)
	}
	if g.RawType != Type(0x99) || !bytes.Equal(g.Payload, []byte{0xAA, 0xBB}) {
		t.Errorf("generic mismatch: %+v", g)
	}
}
