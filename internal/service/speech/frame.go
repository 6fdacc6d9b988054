package speech

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Binary framing used by the Volcengine speech websocket. Every frame starts
// with a 4-byte header of eight 4-bit fields, big-endian throughout.

const protocolVersion = 0b0001

// FrameType is the message-type nibble.
type FrameType uint8

const (
	FullClientRequest   FrameType = 0b0001
	FullServerResponse  FrameType = 0b1001
	AudioServerResponse FrameType = 0b1011
	ErrorFrame          FrameType = 0b1111
)

// FrameFlags is the message-flags nibble.
type FrameFlags uint8

const (
	NoSequence       FrameFlags = 0b0000
	PositiveSequence FrameFlags = 0b0001
	LastNoSequence   FrameFlags = 0b0010
	NegativeSequence FrameFlags = 0b0011
	WithEvent        FrameFlags = 0b0100
)

const sequenceMask = 0b0011

// Serialization is the payload-encoding nibble.
type Serialization uint8

const (
	RawSerialization  Serialization = 0b0000
	JSONSerialization Serialization = 0b0001
)

// Compression is the payload-compression nibble.
type Compression uint8

const (
	NoCompression   Compression = 0b0000
	GzipCompression Compression = 0b0001
)

// Event identifies server lifecycle notifications carried by WithEvent frames.
type Event int32

const (
	EventStartConnection    Event = 1
	EventFinishConnection   Event = 2
	EventConnectionStarted  Event = 50
	EventConnectionFailed   Event = 51
	EventConnectionFinished Event = 52
	EventSessionStarted     Event = 150
	EventSessionFinished    Event = 152
	EventSessionFailed      Event = 153
)

// FrameHeader is the decoded fixed header.
type FrameHeader struct {
	Type          FrameType
	Flags         FrameFlags
	Serialization Serialization
	Compression   Compression
	// Size counts header words of 4 bytes; 1 means no extension.
	Size uint8
}

// Frame is one websocket binary message.
type Frame struct {
	Header    FrameHeader
	Sequence  int32
	Event     Event
	SessionID string
	ConnectID string
	ErrorCode uint32
	Payload   []byte
}

// NewFullRequest wraps a JSON request body.
func NewFullRequest(payload []byte, compression Compression) *Frame {
	return &Frame{
		Header: FrameHeader{
			Type:          FullClientRequest,
			Flags:         NoSequence,
			Serialization: JSONSerialization,
			Compression:   compression,
			Size:          1,
		},
		Payload: payload,
	}
}

// Final reports whether the frame closes the stream.
func (f *Frame) Final() bool {
	switch f.Header.Flags & sequenceMask {
	case LastNoSequence, NegativeSequence:
		return true
	}
	return f.Sequence < 0
}

// HasEvent reports whether the frame carries event metadata.
func (f *Frame) HasEvent() bool {
	return f.Header.Flags&WithEvent == WithEvent
}

func (h FrameHeader) encode() []byte {
	size := h.Size
	if size == 0 {
		size = 1
	}
	return []byte{
		protocolVersion<<4 | size,
		uint8(h.Type)<<4 | uint8(h.Flags),
		uint8(h.Serialization)<<4 | uint8(h.Compression),
		0,
	}
}

// EncodeFrame serialises f.
func EncodeFrame(f *Frame) []byte {
	var buf bytes.Buffer
	buf.Write(f.Header.encode())

	switch f.Header.Flags & sequenceMask {
	case PositiveSequence, NegativeSequence:
		writeUint32(&buf, uint32(f.Sequence))
	}

	if f.HasEvent() {
		writeUint32(&buf, uint32(f.Event))
		if !eventOmitsSession(f.Event) {
			writeString(&buf, f.SessionID)
		}
		if eventCarriesConnect(f.Event) {
			writeString(&buf, f.ConnectID)
		}
	}

	if f.Header.Type == ErrorFrame {
		writeUint32(&buf, f.ErrorCode)
	}
	writeUint32(&buf, uint32(len(f.Payload)))
	buf.Write(f.Payload)
	return buf.Bytes()
}

// DecodeFrame parses one frame from r.
func DecodeFrame(r io.Reader) (*Frame, error) {
	raw := make([]byte, 4)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if version := raw[0] >> 4; version != protocolVersion {
		return nil, fmt.Errorf("unsupported protocol version: %d", version)
	}

	f := &Frame{Header: FrameHeader{
		Size:          raw[0] & 0x0F,
		Type:          FrameType(raw[1] >> 4),
		Flags:         FrameFlags(raw[1] & 0x0F),
		Serialization: Serialization(raw[2] >> 4),
		Compression:   Compression(raw[2] & 0x0F),
	}}

	if extra := int(f.Header.Size)*4 - 4; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return nil, fmt.Errorf("read header extension: %w", err)
		}
	}

	switch f.Header.Flags & sequenceMask {
	case PositiveSequence, NegativeSequence:
		seq, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read sequence: %w", err)
		}
		f.Sequence = int32(seq)
	}

	if f.HasEvent() {
		event, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read event: %w", err)
		}
		f.Event = Event(int32(event))
		if !eventOmitsSession(f.Event) {
			if f.SessionID, err = readString(r); err != nil {
				return nil, fmt.Errorf("read session id: %w", err)
			}
		}
		if eventCarriesConnect(f.Event) {
			if f.ConnectID, err = readString(r); err != nil {
				return nil, fmt.Errorf("read connect id: %w", err)
			}
		}
	}

	if f.Header.Type == ErrorFrame {
		code, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read error code: %w", err)
		}
		f.ErrorCode = code
	}

	size, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read payload size: %w", err)
	}
	if size > 0 {
		f.Payload = make([]byte, size)
		if _, err := io.ReadFull(r, f.Payload); err != nil {
			return nil, fmt.Errorf("read payload (%d bytes): %w", size, err)
		}
	}
	return f, nil
}

func eventOmitsSession(e Event) bool {
	switch e {
	case EventStartConnection, EventFinishConnection,
		EventConnectionStarted, EventConnectionFailed, EventConnectionFinished:
		return true
	}
	return false
}

func eventCarriesConnect(e Event) bool {
	switch e {
	case EventConnectionStarted, EventConnectionFailed, EventConnectionFinished:
		return true
	}
	return false
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readString(r io.Reader) (string, error) {
	size, err := readUint32(r)
	if err != nil {
		return "", err
	}
	if size == 0 {
		return "", nil
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
