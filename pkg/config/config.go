package config

import (
	"strings"
	"time"
)

// デフォルト値の定義
const (
	DefaultGeminiModel        = "gemini-3-flash-preview"
	DefaultImageStandardModel = "gemini-2.5-flash-image"
	DefaultImageQualityModel  = "gemini-3-pro-image-preview"
	DefaultRateInterval       = 10 * time.Second
	DefaultStyleSuffix        = "studio product photography, clean neutral background, soft diffused lighting, true-to-life colors, sharp fabric texture, high resolution, e-commerce catalog quality"
)

// Config は Go Outfit Kit の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings (Common) ---
	GeminiModel        string
	ImageStandardModel string // 標準・高速
	ImageQualityModel  string // 高品質・高知能（有償ティア）

	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string

	// --- Generation Settings ---
	StyleSuffix  string
	RateInterval time.Duration

	// --- Timeout & Retries ---
	RequestTimeout time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:        DefaultGeminiModel,
		ImageStandardModel: DefaultImageStandardModel,
		ImageQualityModel:  DefaultImageQualityModel,
		StyleSuffix:        DefaultStyleSuffix,
		RateInterval:       DefaultRateInterval,
	}
}

// HasCredential は有効な資格情報が設定されているかを返します。
// 有償ティアのモデルを要求する呼び出しの前に必ずこの述語を確認し、
// false の場合はリクエストを発行せずに資格情報の選択を促します。
func (c Config) HasCredential() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}
