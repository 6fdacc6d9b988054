package speech

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTripFullRequest(t *testing.T) {
	in := NewFullRequest([]byte(`{"text":"hi"}`), NoCompression)

	out, err := DecodeFrame(bytes.NewReader(EncodeFrame(in)))
	require.NoError(t, err)

	assert.Equal(t, FullClientRequest, out.Header.Type)
	assert.Equal(t, JSONSerialization, out.Header.Serialization)
	assert.Equal(t, []byte(`{"text":"hi"}`), out.Payload)
	assert.False(t, out.Final())
}

func TestFrameRoundTripEventAndSequence(t *testing.T) {
	in := &Frame{
		Header:    FrameHeader{Type: FullServerResponse, Flags: WithEvent, Serialization: JSONSerialization},
		Event:     EventSessionFinished,
		SessionID: "session-1",
		Payload:   []byte("{}"),
	}
	out, err := DecodeFrame(bytes.NewReader(EncodeFrame(in)))
	require.NoError(t, err)
	assert.True(t, out.HasEvent())
	assert.Equal(t, EventSessionFinished, out.Event)
	assert.Equal(t, "session-1", out.SessionID)

	last := &Frame{
		Header:   FrameHeader{Type: AudioServerResponse, Flags: NegativeSequence},
		Sequence: -3,
		Payload:  []byte("pcm"),
	}
	out, err = DecodeFrame(bytes.NewReader(EncodeFrame(last)))
	require.NoError(t, err)
	assert.Equal(t, int32(-3), out.Sequence)
	assert.True(t, out.Final())
}

func TestFrameConnectEventsCarryConnectID(t *testing.T) {
	in := &Frame{
		Header:    FrameHeader{Type: FullServerResponse, Flags: WithEvent},
		Event:     EventConnectionStarted,
		ConnectID: "conn-9",
	}
	out, err := DecodeFrame(bytes.NewReader(EncodeFrame(in)))
	require.NoError(t, err)
	assert.Equal(t, "conn-9", out.ConnectID)
	assert.Empty(t, out.SessionID)
}

func TestFrameErrorCode(t *testing.T) {
	in := &Frame{Header: FrameHeader{Type: ErrorFrame}, ErrorCode: 45000001, Payload: []byte("bad voice")}
	out, err := DecodeFrame(bytes.NewReader(EncodeFrame(in)))
	require.NoError(t, err)
	assert.Equal(t, uint32(45000001), out.ErrorCode)
	assert.Equal(t, "bad voice", string(out.Payload))
}

func TestDecodeFrameRejectsBadInput(t *testing.T) {
	_, err := DecodeFrame(bytes.NewReader([]byte{0x11}))
	assert.Error(t, err)

	_, err = DecodeFrame(bytes.NewReader([]byte{0x21, 0x10, 0x10, 0x00, 0, 0, 0, 0}))
	assert.ErrorContains(t, err, "unsupported protocol version")

	truncated := EncodeFrame(NewFullRequest([]byte("payload"), NoCompression))
	_, err = DecodeFrame(bytes.NewReader(truncated[:len(truncated)-2]))
	assert.Error(t, err)
}

func TestCompressionRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("audio"), 64)

	packed, err := compress(data, GzipCompression)
	require.NoError(t, err)
	unpacked, err := decompress(packed, GzipCompression)
	require.NoError(t, err)
	assert.Equal(t, data, unpacked)

	_, err = decompress(data, Compression(0b1111))
	assert.Error(t, err)
}
