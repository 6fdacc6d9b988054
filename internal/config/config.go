package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	speechModel "github.com/zhouzirui/papi/backend/internal/model/speech"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Guardian GuardianConfig
	Audio    AudioConfig
	Speech   SpeechConfig
	Launch   LaunchConfig
	CORS     CORSConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	audio, err := loadAudioConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	launch, err := loadLaunchConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Guardian: GuardianConfig{LexiconPath: getEnvOrDefault("GUARDIAN_LEXICON_PATH", "")},
		Audio:    audio,
		Speech:   speech,
		Launch:   launch,
		CORS:     CORSConfig{Origins: parseListEnv("CORS_ORIGINS")},
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LogConfig 描述 zap 日志配置。
type LogConfig struct {
	Level  string
	Format string
}

// GuardianConfig 描述内容审核词库位置，为空时使用内置词库。
type GuardianConfig struct {
	LexiconPath string
}

// AudioConfig 描述回复语音渲染策略。
type AudioConfig struct {
	Enabled      bool
	ChildEnabled bool
	Language     string
	Timeout      time.Duration
	Retries      int
}

func loadAudioConfig() (AudioConfig, error) {
	enabled, err := parseBoolEnv("AUDIO_ENABLED", true)
	if err != nil {
		return AudioConfig{}, err
	}

	child, err := parseBoolEnv("AUDIO_CHILD_ENABLED", false)
	if err != nil {
		return AudioConfig{}, err
	}

	timeoutMS := 8000
	if override, err := parseOptionalIntEnv("AUDIO_TIMEOUT_MS"); err != nil {
		return AudioConfig{}, err
	} else if override != nil {
		if *override <= 0 {
			return AudioConfig{}, fmt.Errorf("invalid AUDIO_TIMEOUT_MS value %d: must be positive", *override)
		}
		timeoutMS = *override
	}

	// 最多重试一次
	retries := 1
	if override, err := parseOptionalIntEnv("AUDIO_RETRIES"); err != nil {
		return AudioConfig{}, err
	} else if override != nil {
		retries = min(max(*override, 0), 1)
	}

	return AudioConfig{
		Enabled:      enabled,
		ChildEnabled: child,
		Language:     getEnvOrDefault("AUDIO_LANGUAGE", "en"),
		Timeout:      time.Duration(timeoutMS) * time.Millisecond,
		Retries:      retries,
	}, nil
}

// SpeechConfig 描述语音服务相关配置
type SpeechConfig struct {
	AppID       string
	AccessToken string
	APIKey      string
	BaseURL     string
	TTSVoice    string
	TTSSpeed    float32
	TTSVolume   float32
	Enabled     bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	// 解析TTS速度和音量
	speed, err := parseOptionalFloat32Env("SPEECH_TTS_SPEED")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsSpeed := float32(1.0) // 默认1.0倍速
	if speed != nil {
		ttsSpeed = *speed
	}

	volume, err := parseOptionalFloat32Env("SPEECH_TTS_VOLUME")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsVolume := float32(1.0) // 默认1.0音量
	if volume != nil {
		ttsVolume = *volume
	}

	appID := strings.TrimSpace(os.Getenv("SPEECH_APP_ID"))

	accessToken := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))
	apiKey := strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	if accessToken == "" {
		accessToken = apiKey
	}

	return SpeechConfig{
		AppID:       appID,
		AccessToken: accessToken,
		APIKey:      apiKey,
		BaseURL:     getEnvOrDefault("SPEECH_BASE_URL", ""),
		TTSVoice:    getEnvOrDefault("SPEECH_TTS_VOICE", ""),
		TTSSpeed:    ttsSpeed,
		TTSVolume:   ttsVolume,
		Enabled:     appID != "" && accessToken != "",
	}, nil
}

// Synthesis 组装语音合成客户端所需的配置。
func (c *Config) Synthesis() *speechModel.Config {
	return &speechModel.Config{
		AppID:       c.Speech.AppID,
		AccessToken: c.Speech.AccessToken,
		Endpoint:    c.Speech.BaseURL,
		Voice:       c.Speech.TTSVoice,
		Speed:       c.Speech.TTSSpeed,
		Volume:      c.Speech.TTSVolume,
		Language:    c.Audio.Language,
		Timeout:     c.Audio.Timeout,
	}
}

// LaunchConfig 描述模拟启动流程的节奏。
type LaunchConfig struct {
	StepDelay time.Duration
}

func loadLaunchConfig() (LaunchConfig, error) {
	delayMS := 600
	if override, err := parseOptionalIntEnv("LAUNCH_STEP_DELAY_MS"); err != nil {
		return LaunchConfig{}, err
	} else if override != nil {
		delayMS = max(*override, 0)
	}
	return LaunchConfig{StepDelay: time.Duration(delayMS) * time.Millisecond}, nil
}

// CORSConfig 描述允许跨域访问的来源，为空时允许所有来源。
type CORSConfig struct {
	Origins []string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseListEnv(key string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
