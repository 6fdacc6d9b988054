package speech

import "time"

// DefaultEndpoint is the Volcengine unidirectional TTS stream.
const DefaultEndpoint = "wss://openspeech.bytedance.com/api/v3/tts/unidirectional/stream"

// Config holds speech-synthesis credentials and voice settings.
type Config struct {
	AppID       string  `json:"appId"`
	AccessToken string  `json:"accessToken"`
	Endpoint    string  `json:"endpoint"`
	Voice       string  `json:"voice"`
	Speed       float32 `json:"speed"`
	Volume      float32 `json:"volume"`
	// Language is the fixed code every reply is rendered in.
	Language string `json:"language"`
	// Timeout bounds one synthesis attempt.
	Timeout time.Duration `json:"timeout"`
}
