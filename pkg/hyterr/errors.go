// Package hyterr defines the error taxonomy shared by the codec and
// session packages: a small set of sentinel errors that callers can test
// with errors.Is, each wrapped with packet-specific context via %w.
package hyterr

import "errors"

// Sentinel error kinds. Wrap these with fmt.Errorf("...: %w", Err...) to
// add context; never construct new ad hoc error strings for these cases.
var (
	// ErrBadSignature is returned when an HYT frame's leading signature
	// bytes do not match. Recovered locally by the caller, which should
	// retry the same bytes as an RTP packet.
	ErrBadSignature = errors.New("hylink: bad signature")

	// ErrUnhandledType is returned when an outer HYT type or a TxCtrl
	// (header, opcode) pair has no registered decoder.
	ErrUnhandledType = errors.New("hylink: unhandled type")

	// ErrPacketData is returned when a TxCtrl frame is malformed: too
	// short, wrong trailer, or a checksum mismatch.
	ErrPacketData = errors.New("hylink: packet data error")

	// ErrNotConstructible is returned when code attempts to build a
	// decode-only message (Syn, FromRadio) via a host-side constructor.
	ErrNotConstructible = errors.New("hylink: message is not constructible")

	// ErrNotSerializable is returned when Encode is called on a
	// decode-only HYT or TxCtrl message.
	ErrNotSerializable = errors.New("hylink: message is not serializable")

	// ErrSendWhileDisconnected is returned by Session.Send when no
	// repeater address has been learned yet.
	ErrSendWhileDisconnected = errors.New("hylink: send while disconnected")

	// ErrAckTimeout is returned by Session.WaitAck (the blocking send) when
	// no matching ack arrives in time or when the reaper, the watchdog, or
	// Stop ends the wait. Reaped SendAsync callbacks receive a nil message
	// rather than this error.
	ErrAckTimeout = errors.New("hylink: ack timeout")

	// ErrBindFailure is returned when a session's UDP socket cannot be
	// created or bound.
	ErrBindFailure = errors.New("hylink: bind failure")

	// ErrNilMessage is returned by Send when given a nil message.
	ErrNilMessage = errors.New("hylink: cannot send null")

	// ErrClosed names a stopped session. No operation returns it: WaitAck
	// calls pending at Session.Stop end with ErrAckTimeout, and sends after
	// Stop fail with ErrSendWhileDisconnected or the closed socket's write
	// error.
	ErrClosed = errors.New("hylink: session closed")
)
