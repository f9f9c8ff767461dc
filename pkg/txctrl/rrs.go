package txctrl

import (
	"encoding/binary"
	"fmt"

	"github.com/hytera-adk/hylink-adk/pkg/enums"
	"github.com/hytera-adk/hylink-adk/pkg/hyterr"
	"github.com/hytera-adk/hylink-adk/pkg/radioid"
)

func init() {
	register(enums.HeaderRRS, 0x0001, decodeOfflineNotice)
	register(enums.HeaderRRS, 0x0003, decodeRegistration)
}

// OfflineNotice (opcode 0x0001, radio -> host, decode-only): a previously
// registered radio has gone offline.
type OfflineNotice struct {
	RadioIP uint32
}

func (m *OfflineNotice) Header() enums.MessageHeader { return enums.HeaderRRS }
func (m *OfflineNotice) Opcode() uint16              { return 0x0001 }

// RadioID returns the DMR radio ID encoded in RadioIP.
func (m *OfflineNotice) RadioID() uint32 { return radioid.ToRadioID(m.RadioIP) }

func decodeOfflineNotice(p []byte) (Message, error) {
	if len(p) < 4 {
		return nil, fmt.Errorf("txctrl: RRS offline notice payload too short: %w", hyterr.ErrPacketData)
	}
	return &OfflineNotice{RadioIP: binary.BigEndian.Uint32(p[0:4])}, nil
}

// Registration (opcode 0x0003, radio -> host, decode-only): a radio has
// registered with the repeater.
type Registration struct {
	RadioIP uint32
}

func (m *Registration) Header() enums.MessageHeader { return enums.HeaderRRS }
func (m *Registration) Opcode() uint16              { return 0x0003 }

// RadioID returns the DMR radio ID encoded in RadioIP.
func (m *Registration) RadioID() uint32 { return radioid.ToRadioID(m.RadioIP) }

func decodeRegistration(p []byte) (Message, error) {
	if len(p) < 4 {
		return nil, fmt.Errorf("txctrl: RRS registration payload too short: %w", hyterr.ErrPacketData)
	}
	return &Registration{RadioIP: binary.BigEndian.Uint32(p[0:4])}, nil
}
