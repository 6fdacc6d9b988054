package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/model/speech"
)

const (
	defaultVoice   = "en_female_amy_jupiter_bigtts"
	defaultFormat  = "mp3"
	sampleRate     = 24000
	statusOK       = 0
	statusFinished = 3000
)

var (
	ErrCredentialsMissing = errors.New("speech credentials missing: SPEECH_APP_ID and SPEECH_ACCESS_TOKEN are required")
	ErrEmptyText          = errors.New("tts text is empty")
	ErrEmptyAudio         = errors.New("tts returned no audio")
)

// VolcengineClient synthesizes speech over the Volcengine websocket API.
type VolcengineClient struct {
	config *speech.Config
	dialer *websocket.Dialer
	logger *zap.Logger
}

// NewVolcengineClient builds a client; credentials are checked per call.
func NewVolcengineClient(config *speech.Config, logger *zap.Logger) *VolcengineClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VolcengineClient{
		config: config,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger: logger,
	}
}

type ttsServerMessage struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition,omitempty"`
}

type ttsRequestBody struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string         `json:"speaker"`
		Text        string         `json:"text"`
		AudioParams ttsAudioParams `json:"audio_params"`
		Language    string         `json:"language,omitempty"`
	} `json:"req_params"`
}

type ttsAudioParams struct {
	Format      string  `json:"format"`
	SampleRate  int     `json:"sample_rate"`
	SpeedRatio  float32 `json:"speed_ratio,omitempty"`
	VolumeRatio float32 `json:"volume_ratio,omitempty"`
}

// Synthesize renders req.Text. Resource-id mismatches fall through to the next
// candidate resource; any other failure is returned immediately.
func (c *VolcengineClient) Synthesize(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	appID, token, err := c.credentials()
	if err != nil {
		return nil, err
	}

	speaker := firstNonEmpty(req.Voice, c.config.Voice, defaultVoice)
	var lastErr error
	for i, resourceID := range resourceCandidates(speaker) {
		resp, err := c.synthesizeWithResource(ctx, req, appID, token, speaker, resourceID)
		if err == nil {
			if i > 0 {
				c.logger.Info("tts fallback resource succeeded", zap.String("voice", speaker), zap.String("resource", resourceID))
			}
			return resp, nil
		}
		if !isResourceMismatch(err) {
			return nil, err
		}
		c.logger.Warn("tts resource mismatch", zap.String("voice", speaker), zap.String("resource", resourceID), zap.Error(err))
		lastErr = err
	}
	return nil, lastErr
}

func (c *VolcengineClient) credentials() (string, string, error) {
	if c.config == nil {
		return "", "", ErrCredentialsMissing
	}
	appID := strings.TrimSpace(c.config.AppID)
	token := strings.TrimSpace(c.config.AccessToken)
	if appID == "" || token == "" {
		return "", "", ErrCredentialsMissing
	}
	return appID, token, nil
}

func (c *VolcengineClient) endpoint() string {
	if c.config != nil && strings.TrimSpace(c.config.Endpoint) != "" {
		return strings.TrimSpace(c.config.Endpoint)
	}
	return speech.DefaultEndpoint
}

func (c *VolcengineClient) synthesizeWithResource(ctx context.Context, req *speech.TTSRequest, appID, token, speaker, resourceID string) (*speech.TTSResponse, error) {
	connectID := uuid.NewString()

	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", connectID)

	conn, httpResp, err := c.dialer.DialContext(ctx, c.endpoint(), header)
	if err != nil {
		return nil, fmt.Errorf("connect to tts websocket: %w", err)
	}
	defer conn.Close()

	if httpResp != nil {
		if logID := httpResp.Header.Get("X-Tt-Logid"); logID != "" {
			c.logger.Debug("tts connected", zap.String("logid", logID))
		}
	}

	// Unblock ReadMessage when the caller's deadline passes.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	body, uid := c.buildRequest(req, speaker)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}
	packed, err := compress(payload, GzipCompression)
	if err != nil {
		return nil, fmt.Errorf("compress tts request: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, EncodeFrame(NewFullRequest(packed, GzipCompression))); err != nil {
		return nil, fmt.Errorf("send tts request: %w", err)
	}

	var (
		audio    bytes.Buffer
		reqID    string
		duration int64
	)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("read tts response: %w", err)
		}

		frame, err := DecodeFrame(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode tts frame: %w", err)
		}
		body, err := decompress(frame.Payload, frame.Header.Compression)
		if err != nil {
			return nil, fmt.Errorf("decompress tts payload: %w", err)
		}

		switch frame.Header.Type {
		case ErrorFrame:
			return nil, fmt.Errorf("tts error %d: %s", frame.ErrorCode, string(body))

		case AudioServerResponse:
			audio.Write(body)

		case FullServerResponse:
			var msg ttsServerMessage
			if len(body) > 0 {
				if err := json.Unmarshal(body, &msg); err != nil {
					c.logger.Warn("tts response payload is not json", zap.Error(err))
				}
			}
			if msg.Code != statusOK && msg.Code != statusFinished {
				return nil, fmt.Errorf("tts api error %d: %s", msg.Code, msg.Message)
			}
			if msg.ReqID != "" {
				reqID = msg.ReqID
			}
			if msg.Addition.Duration != "" {
				if ms, err := strconv.ParseInt(msg.Addition.Duration, 10, 64); err == nil {
					duration = ms
				}
			}
			if msg.Data != "" {
				chunk, err := base64.StdEncoding.DecodeString(msg.Data)
				if err != nil {
					return nil, fmt.Errorf("decode base64 audio chunk: %w", err)
				}
				audio.Write(chunk)
			}

			finished := (frame.HasEvent() && frame.Event == EventSessionFinished) || frame.Final() || msg.Sequence < 0
			if !finished {
				continue
			}
			if audio.Len() == 0 {
				return nil, ErrEmptyAudio
			}
			if reqID == "" {
				reqID = connectID
			}
			return &speech.TTSResponse{
				SessionID: firstNonEmpty(req.SessionID, uid),
				AudioData: audio.Bytes(),
				Duration:  duration,
				Format:    defaultFormat,
				RequestID: reqID,
				CreatedAt: time.Now().UTC(),
			}, nil

		default:
			c.logger.Debug("tts unexpected frame type", zap.Uint8("type", uint8(frame.Header.Type)))
		}
	}
}

func (c *VolcengineClient) buildRequest(req *speech.TTSRequest, speaker string) (*ttsRequestBody, string) {
	body := &ttsRequestBody{}

	uid := strings.TrimSpace(req.SessionID)
	if uid == "" {
		uid = uuid.NewString()
	}
	body.User.UID = uid

	body.ReqParams.Speaker = speaker
	body.ReqParams.Text = req.Text
	body.ReqParams.AudioParams.Format = defaultFormat
	body.ReqParams.AudioParams.SampleRate = sampleRate

	speed := req.Speed
	if speed <= 0 && c.config != nil {
		speed = c.config.Speed
	}
	if speed > 0 && speed != 1 {
		body.ReqParams.AudioParams.SpeedRatio = speed
	}

	volume := req.Volume
	if volume <= 0 && c.config != nil {
		volume = c.config.Volume
	}
	if volume > 0 && volume != 1 {
		body.ReqParams.AudioParams.VolumeRatio = volume
	}

	if c.config != nil {
		body.ReqParams.Language = firstNonEmpty(req.Language, c.config.Language)
	} else {
		body.ReqParams.Language = strings.TrimSpace(req.Language)
	}
	return body, uid
}

// resourceCandidates orders the billing resources to try for a voice.
func resourceCandidates(voice string) []string {
	const (
		legacyResource = "volc.service_type.10029"
		cloneResource  = "volc.megatts.default"
		seedResource   = "seed-tts-2.0"
	)

	voice = strings.TrimSpace(voice)
	if strings.HasPrefix(voice, "S_") {
		return []string{cloneResource}
	}

	normalized := strings.ToLower(voice)
	for _, hint := range []string{"bigtts", "seed", "megatts", "uranus", "venus", "jupiter", "mars"} {
		if strings.Contains(normalized, hint) {
			return []string{seedResource, legacyResource}
		}
	}
	return []string{legacyResource, seedResource}
}

func isResourceMismatch(err error) bool {
	return err != nil && strings.Contains(err.Error(), "resource ID is mismatched with speaker related resource")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
