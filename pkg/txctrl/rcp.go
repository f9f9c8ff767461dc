package txctrl

import (
	"encoding/binary"
	"fmt"

	"github.com/hytera-adk/hylink-adk/pkg/enums"
	"github.com/hytera-adk/hylink-adk/pkg/hyterr"
)

func init() {
	register(enums.HeaderRCP, 0x0041, decodeButtonRequest)
	register(enums.HeaderRCP, 0x8041, decodeButtonResponse)
	register(enums.HeaderRCP, 0x00E7, decodeChannelStatusQuery)
	register(enums.HeaderRCP, 0x80E7, decodeChannelStatusResponse)
	register(enums.HeaderRCP, 0x0841, decodeCallRequest)
	register(enums.HeaderRCP, 0x8841, decodeCallResponse)
	register(enums.HeaderRCP, 0xB843, decodeBroadcastTxStatus)
	register(enums.HeaderRCP, 0xB845, decodeRepeaterBroadcastTxStatus)
	register(enums.HeaderRCP, 0x00E1, decodeRadioStatusQuery)
	register(enums.HeaderRCP, 0x80E1, decodeRadioStatusResponse)
	register(enums.HeaderRCP, 0x0003, decodeDeviceInfoQuery)
	register(enums.HeaderRCP, 0x8003, decodeDeviceInfoResponse)
}

// ButtonRequest (opcode 0x0041, host -> radio): press/release a button.
type ButtonRequest struct {
	Target enums.ButtonTarget
	Op     enums.ButtonOp
}

func (m *ButtonRequest) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *ButtonRequest) Opcode() uint16              { return 0x0041 }

func (m *ButtonRequest) EncodePayload() []byte {
	return []byte{byte(m.Target), byte(m.Op)}
}

func decodeButtonRequest(p []byte) (Message, error) {
	if len(p) < 2 {
		return nil, fmt.Errorf("txctrl: button request payload too short: %w", hyterr.ErrPacketData)
	}
	return &ButtonRequest{Target: enums.ButtonTarget(p[0]), Op: enums.ButtonOp(p[1])}, nil
}

// ButtonResponse (opcode 0x8041, radio -> host, decode-only).
type ButtonResponse struct {
	Result enums.ResultCode
}

func (m *ButtonResponse) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *ButtonResponse) Opcode() uint16              { return 0x8041 }

func decodeButtonResponse(p []byte) (Message, error) {
	if len(p) < 1 {
		return nil, fmt.Errorf("txctrl: button response payload too short: %w", hyterr.ErrPacketData)
	}
	return &ButtonResponse{Result: enums.ResultCode(p[0])}, nil
}

// ChannelStatusQuery (opcode 0x00E7, host -> radio).
type ChannelStatusQuery struct {
	Target    uint8
	ValueType enums.StatusValueType
}

func (m *ChannelStatusQuery) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *ChannelStatusQuery) Opcode() uint16              { return 0x00E7 }

func (m *ChannelStatusQuery) EncodePayload() []byte {
	return []byte{m.Target, byte(m.ValueType)}
}

func decodeChannelStatusQuery(p []byte) (Message, error) {
	if len(p) < 2 {
		return nil, fmt.Errorf("txctrl: channel-status query payload too short: %w", hyterr.ErrPacketData)
	}
	return &ChannelStatusQuery{Target: p[0], ValueType: enums.StatusValueType(p[1])}, nil
}

// ChannelStatusValue is one (target, value) pair in a ChannelStatusResponse.
type ChannelStatusValue struct {
	Target uint8
	Value  int32
}

// ChannelStatusResponse (opcode 0x80E7, radio -> host, decode-only).
type ChannelStatusResponse struct {
	Result enums.ResultCode
	Values []ChannelStatusValue
}

func (m *ChannelStatusResponse) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *ChannelStatusResponse) Opcode() uint16              { return 0x80E7 }

func decodeChannelStatusResponse(p []byte) (Message, error) {
	if len(p) < 2 {
		return nil, fmt.Errorf("txctrl: channel-status response payload too short: %w", hyterr.ErrPacketData)
	}
	result := enums.ResultCode(p[0])
	n := int(p[1])
	want := 2 + n*5
	if len(p) < want {
		return nil, fmt.Errorf("txctrl: channel-status response truncated (need %d, have %d): %w", want, len(p), hyterr.ErrPacketData)
	}
	values := make([]ChannelStatusValue, n)
	off := 2
	for i := 0; i < n; i++ {
		values[i] = ChannelStatusValue{
			Target: p[off],
			Value:  int32(binary.LittleEndian.Uint32(p[off+1 : off+5])),
		}
		off += 5
	}
	return &ChannelStatusResponse{Result: result, Values: values}, nil
}

// CallRequest (opcode 0x0841, host -> radio): initiate a call.
type CallRequest struct {
	CallType enums.CallType
	DestID   uint32
}

func (m *CallRequest) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *CallRequest) Opcode() uint16              { return 0x0841 }

func (m *CallRequest) EncodePayload() []byte {
	p := make([]byte, 5)
	p[0] = byte(m.CallType)
	binary.LittleEndian.PutUint32(p[1:5], m.DestID)
	return p
}

func decodeCallRequest(p []byte) (Message, error) {
	if len(p) < 5 {
		return nil, fmt.Errorf("txctrl: call request payload too short: %w", hyterr.ErrPacketData)
	}
	return &CallRequest{
		CallType: enums.CallType(p[0]),
		DestID:   binary.LittleEndian.Uint32(p[1:5]),
	}, nil
}

// CallResponse (opcode 0x8841, radio -> host, decode-only).
type CallResponse struct {
	Result enums.ResultCode
}

func (m *CallResponse) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *CallResponse) Opcode() uint16              { return 0x8841 }

func decodeCallResponse(p []byte) (Message, error) {
	if len(p) < 1 {
		return nil, fmt.Errorf("txctrl: call response payload too short: %w", hyterr.ErrPacketData)
	}
	return &CallResponse{Result: enums.ResultCode(p[0])}, nil
}

// BroadcastTxStatus (opcode 0xB843, radio -> host, decode-only).
type BroadcastTxStatus struct {
	Process  uint16
	Source   uint16
	CallType uint16
	TargetID uint32
}

func (m *BroadcastTxStatus) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *BroadcastTxStatus) Opcode() uint16              { return 0xB843 }

func decodeBroadcastTxStatus(p []byte) (Message, error) {
	if len(p) < 10 {
		return nil, fmt.Errorf("txctrl: broadcast tx status payload too short: %w", hyterr.ErrPacketData)
	}
	return &BroadcastTxStatus{
		Process:  binary.LittleEndian.Uint16(p[0:2]),
		Source:   binary.LittleEndian.Uint16(p[2:4]),
		CallType: binary.LittleEndian.Uint16(p[4:6]),
		TargetID: binary.LittleEndian.Uint32(p[6:10]),
	}, nil
}

// RepeaterBroadcastTxStatus (opcode 0xB845, radio -> host, decode-only).
type RepeaterBroadcastTxStatus struct {
	Mode     uint16
	Status   uint16
	SvcType  uint16
	CallType uint16
	TargetID uint32
	SenderID uint32
}

func (m *RepeaterBroadcastTxStatus) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *RepeaterBroadcastTxStatus) Opcode() uint16              { return 0xB845 }

func decodeRepeaterBroadcastTxStatus(p []byte) (Message, error) {
	if len(p) < 16 {
		return nil, fmt.Errorf("txctrl: repeater broadcast tx status payload too short: %w", hyterr.ErrPacketData)
	}
	return &RepeaterBroadcastTxStatus{
		Mode:     binary.LittleEndian.Uint16(p[0:2]),
		Status:   binary.LittleEndian.Uint16(p[2:4]),
		SvcType:  binary.LittleEndian.Uint16(p[4:6]),
		CallType: binary.LittleEndian.Uint16(p[6:8]),
		TargetID: binary.LittleEndian.Uint32(p[8:12]),
		SenderID: binary.LittleEndian.Uint32(p[12:16]),
	}, nil
}

// RadioStatusQuery (opcode 0x00E1, host -> radio). Supplemental opcode;
// see SPEC_FULL.md §3.1.
type RadioStatusQuery struct {
	Target uint8
}

func (m *RadioStatusQuery) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *RadioStatusQuery) Opcode() uint16              { return 0x00E1 }

func (m *RadioStatusQuery) EncodePayload() []byte { return []byte{m.Target} }

func decodeRadioStatusQuery(p []byte) (Message, error) {
	if len(p) < 1 {
		return nil, fmt.Errorf("txctrl: radio-status query payload too short: %w", hyterr.ErrPacketData)
	}
	return &RadioStatusQuery{Target: p[0]}, nil
}

// RadioStatusResponse (opcode 0x80E1, radio -> host, decode-only).
type RadioStatusResponse struct {
	Result enums.ResultCode
	Status uint8
}

func (m *RadioStatusResponse) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *RadioStatusResponse) Opcode() uint16              { return 0x80E1 }

func decodeRadioStatusResponse(p []byte) (Message, error) {
	if len(p) < 2 {
		return nil, fmt.Errorf("txctrl: radio-status response payload too short: %w", hyterr.ErrPacketData)
	}
	return &RadioStatusResponse{Result: enums.ResultCode(p[0]), Status: p[1]}, nil
}

// DeviceInfoQuery (opcode 0x0003, host -> radio, empty payload).
type DeviceInfoQuery struct{}

func (m *DeviceInfoQuery) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *DeviceInfoQuery) Opcode() uint16              { return 0x0003 }
func (m *DeviceInfoQuery) EncodePayload() []byte       { return nil }

func decodeDeviceInfoQuery(p []byte) (Message, error) {
	return &DeviceInfoQuery{}, nil
}

// DeviceInfoResponse (opcode 0x8003, radio -> host, decode-only).
type DeviceInfoResponse struct {
	Result enums.ResultCode
	Serial [8]byte
}

func (m *DeviceInfoResponse) Header() enums.MessageHeader { return enums.HeaderRCP }
func (m *DeviceInfoResponse) Opcode() uint16              { return 0x8003 }

func decodeDeviceInfoResponse(p []byte) (Message, error) {
	if len(p) < 9 {
		return nil, fmt.Errorf("txctrl: device info response payload too short: %w", hyterr.ErrPacketData)
	}
	resp := &DeviceInfoResponse{Result: enums.ResultCode(p[0])}
	copy(resp.Serial[:], p[1:9])
	return resp, nil
}
