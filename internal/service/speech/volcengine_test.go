package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/papi/backend/internal/model/speech"
)

// fakeTTSServer answers one request per connection using respond.
func fakeTTSServer(t *testing.T, respond func(t *testing.T, conn *websocket.Conn, r *http.Request, body ttsRequestBody)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := DecodeFrame(strings.NewReader(string(data)))
		if err != nil {
			return
		}
		// Requests are always sent gzip-compressed.
		if !assert.Equal(t, GzipCompression, frame.Header.Compression) {
			return
		}
		raw, err := decompress(frame.Payload, frame.Header.Compression)
		if err != nil {
			return
		}
		var body ttsRequestBody
		if err := json.Unmarshal(raw, &body); err != nil {
			return
		}
		respond(t, conn, r, body)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func sendFrame(conn *websocket.Conn, f *Frame) {
	_ = conn.WriteMessage(websocket.BinaryMessage, EncodeFrame(f))
}

func jsonFrame(flags FrameFlags, event Event, v any) *Frame {
	payload, _ := json.Marshal(v)
	return &Frame{
		Header:  FrameHeader{Type: FullServerResponse, Flags: flags, Serialization: JSONSerialization},
		Event:   event,
		Payload: payload,
	}
}

func testConfig(endpoint string) *speech.Config {
	return &speech.Config{AppID: "app", AccessToken: "token", Endpoint: endpoint, Voice: "en_female_amy_jupiter_bigtts", Language: "en"}
}

func TestVolcengineSynthesizeCollectsAudio(t *testing.T) {
	var gotHeader http.Header
	var gotBody ttsRequestBody
	endpoint := fakeTTSServer(t, func(t *testing.T, conn *websocket.Conn, r *http.Request, body ttsRequestBody) {
		gotHeader = r.Header.Clone()
		gotBody = body

		sendFrame(conn, &Frame{Header: FrameHeader{Type: AudioServerResponse}, Payload: []byte("ID3")})
		sendFrame(conn, jsonFrame(NoSequence, 0, map[string]any{
			"code":     0,
			"reqid":    "req-1",
			"data":     base64.StdEncoding.EncodeToString([]byte("-frames")),
			"addition": map[string]string{"duration": "1200"},
		}))
		sendFrame(conn, jsonFrame(WithEvent, EventSessionFinished, map[string]any{"code": 3000}))
	})

	client := NewVolcengineClient(testConfig(endpoint), nil)
	resp, err := client.Synthesize(context.Background(), &speech.TTSRequest{SessionID: "s-1", Text: "hello there"})
	require.NoError(t, err)

	assert.Equal(t, "ID3-frames", string(resp.AudioData))
	assert.Equal(t, "mp3", resp.Format)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, int64(1200), resp.Duration)
	assert.Equal(t, "s-1", resp.SessionID)

	assert.Equal(t, "app", gotHeader.Get("X-Api-App-Key"))
	assert.Equal(t, "token", gotHeader.Get("X-Api-Access-Key"))
	assert.Equal(t, "seed-tts-2.0", gotHeader.Get("X-Api-Resource-Id"))
	assert.Equal(t, "hello there", gotBody.ReqParams.Text)
	assert.Equal(t, "en", gotBody.ReqParams.Language)
	assert.Equal(t, "en_female_amy_jupiter_bigtts", gotBody.ReqParams.Speaker)
	assert.Equal(t, "s-1", gotBody.User.UID)
}

func TestVolcengineSynthesizeAPIError(t *testing.T) {
	endpoint := fakeTTSServer(t, func(t *testing.T, conn *websocket.Conn, _ *http.Request, _ ttsRequestBody) {
		sendFrame(conn, jsonFrame(NoSequence, 0, map[string]any{"code": 4010, "message": "quota exceeded"}))
	})

	_, err := NewVolcengineClient(testConfig(endpoint), nil).Synthesize(context.Background(), &speech.TTSRequest{Text: "hi"})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestVolcengineSynthesizeErrorFrame(t *testing.T) {
	endpoint := fakeTTSServer(t, func(t *testing.T, conn *websocket.Conn, _ *http.Request, _ ttsRequestBody) {
		sendFrame(conn, &Frame{Header: FrameHeader{Type: ErrorFrame}, ErrorCode: 55, Payload: []byte("boom")})
	})

	_, err := NewVolcengineClient(testConfig(endpoint), nil).Synthesize(context.Background(), &speech.TTSRequest{Text: "hi"})
	assert.ErrorContains(t, err, "tts error 55: boom")
}

func TestVolcengineSynthesizeEmptyAudio(t *testing.T) {
	endpoint := fakeTTSServer(t, func(t *testing.T, conn *websocket.Conn, _ *http.Request, _ ttsRequestBody) {
		sendFrame(conn, jsonFrame(LastNoSequence, 0, map[string]any{"code": 0}))
	})

	_, err := NewVolcengineClient(testConfig(endpoint), nil).Synthesize(context.Background(), &speech.TTSRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestVolcengineSynthesizeHonoursDeadline(t *testing.T) {
	endpoint := fakeTTSServer(t, func(t *testing.T, conn *websocket.Conn, _ *http.Request, _ ttsRequestBody) {
		time.Sleep(500 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewVolcengineClient(testConfig(endpoint), nil).Synthesize(ctx, &speech.TTSRequest{Text: "hi"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestVolcengineSynthesizeValidatesInput(t *testing.T) {
	client := NewVolcengineClient(&speech.Config{}, nil)

	_, err := client.Synthesize(context.Background(), &speech.TTSRequest{Text: "  "})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = client.Synthesize(context.Background(), &speech.TTSRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrCredentialsMissing)
}

func TestResourceCandidates(t *testing.T) {
	assert.Equal(t, []string{"volc.megatts.default"}, resourceCandidates("S_clone"))
	assert.Equal(t, []string{"seed-tts-2.0", "volc.service_type.10029"}, resourceCandidates("en_female_amy_jupiter_bigtts"))
	assert.Equal(t, []string{"volc.service_type.10029", "seed-tts-2.0"}, resourceCandidates("en_male_classic"))
}

func TestIsResourceMismatch(t *testing.T) {
	assert.False(t, isResourceMismatch(nil))
	assert.False(t, isResourceMismatch(assert.AnError))
	assert.True(t, isResourceMismatch(&mismatchErr{}))
}

type mismatchErr struct{}

func (*mismatchErr) Error() string {
	return `tts error 3: {"error":"resource ID is mismatched with speaker related resource"}`
}
