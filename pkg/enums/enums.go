// Package enums collects the closed sets of typed constants used across
// the codec and session packages: call types, process types, button
// targets/operations, message-header classes, status parameters, and
// result codes.
package enums

// MessageHeader identifies a TxCtrl protocol class. The high bit of the
// wire byte is a separate "reliable" flag; MessageHeader only covers the
// low 7 bits.
type MessageHeader uint8

const (
	HeaderRCP MessageHeader = 0x02 // Radio Control Protocol
	HeaderLP  MessageHeader = 0x08 // Location Protocol
	HeaderTMP MessageHeader = 0x09 // Text Message Protocol
	HeaderRRS MessageHeader = 0x11 // Registration/Roaming Service
	HeaderTP  MessageHeader = 0x12 // Telemetry Protocol
	HeaderDTP MessageHeader = 0x13 // Data Telemetry Protocol
	HeaderDDS MessageHeader = 0x14 // Data Delivery Service
)

func (h MessageHeader) String() string {
	switch h {
	case HeaderRCP:
		return "RCP"
	case HeaderLP:
		return "LP"
	case HeaderTMP:
		return "TMP"
	case HeaderRRS:
		return "RRS"
	case HeaderTP:
		return "TP"
	case HeaderDTP:
		return "DTP"
	case HeaderDDS:
		return "DDS"
	default:
		return "unknown"
	}
}

// CallType distinguishes a group call from a private call.
type CallType uint8

const (
	CallTypeGroup   CallType = 0x00
	CallTypePrivate CallType = 0x03
)

func (c CallType) String() string {
	if c == CallTypePrivate {
		return "private"
	}
	return "group"
}

// ProcessType appears in the broadcast transmit-status opcodes (0xB843,
// 0xB845); its exact member set is repeater-firmware specific, so only the
// values the core subset actually decodes are named.
type ProcessType uint16

const (
	ProcessTypeIdle     ProcessType = 0x0000
	ProcessTypeCallReq  ProcessType = 0x0001
	ProcessTypeCallBusy ProcessType = 0x0002
	ProcessTypeCallEnd  ProcessType = 0x0003
)

// ButtonTarget names a physical control on the radio addressed by an RCP
// button request (opcode 0x0041).
type ButtonTarget uint8

const (
	ButtonTargetFrontPTT ButtonTarget = 0x03
	ButtonTargetSideKey1 ButtonTarget = 0x04
	ButtonTargetSideKey2 ButtonTarget = 0x05
	ButtonTargetEmergency ButtonTarget = 0x06
)

// ButtonOp is the operation applied to a ButtonTarget.
type ButtonOp uint8

const (
	ButtonOpRelease ButtonOp = 0x00
	ButtonOpPress   ButtonOp = 0x01
	ButtonOpLongPress ButtonOp = 0x02
)

// StatusValueType selects which channel-status field an RCP 0x00E7 query
// asks about.
type StatusValueType uint8

const (
	StatusValueTypeChannel StatusValueType = 0x00
	StatusValueTypeZone    StatusValueType = 0x01
	StatusValueTypePower   StatusValueType = 0x02
)

// StatusValueChannelMode is declared in the original source without
// integer-enum semantics (likely a bug there); this reimplementation
// treats it as a plain integer-valued enumeration.
type StatusValueChannelMode uint8

const (
	StatusValueChannelModeAnalog StatusValueChannelMode = 0x00
	StatusValueChannelModeDigital StatusValueChannelMode = 0x01
)

// ResultCode is the single-byte result field carried by response opcodes
// (e.g. button response, call response, channel-status response).
type ResultCode uint8

const (
	ResultOK          ResultCode = 0x00
	ResultFail        ResultCode = 0x01
	ResultBusy        ResultCode = 0x02
	ResultUnsupported ResultCode = 0x03
)

func (r ResultCode) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultFail:
		return "fail"
	case ResultBusy:
		return "busy"
	case ResultUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}
