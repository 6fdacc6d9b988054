package speech

// TTSRequest asks for text to be spoken.
type TTSRequest struct {
	SessionID string  `json:"sessionId"`
	Text      string  `json:"text"`
	Voice     string  `json:"voice"`
	Speed     float32 `json:"speed"`  // 0.5-2.0
	Volume    float32 `json:"volume"` // 0.0-2.0
	Format    string  `json:"format"` // mp3 only for now
	Language  string  `json:"language"`
}
