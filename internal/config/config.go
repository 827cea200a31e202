package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel         = "gemini-3-flash-preview"
	DefaultImageModel    = "gemini-2.5-flash-image"
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultRateInterval  = 10 * time.Second
	DefaultLocalImageDir = "output/garments" // 生成画像のデフォルト保存先
	DefaultReportFile    = "output/style_dna.txt"
)

// Config はアプリケーション全体の環境設定（APIキーやモデル設定）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	StyleSuffix      string

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		StyleSuffix:      envutil.GetEnv("IMAGE_PROMPT_SUFFIX", ""),
	}
	return cfg
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ソース入力関連
	ImageFile string // --image-file: ソース画像のパス（ローカル or gs://...）

	// 生成結果の出力関連
	OutputImageDir string // --output-image-dir
	OutputFile     string // --output-file: analyze モードのレポート保存先

	// AI挙動設定
	AIModel     string // --model: テキスト・検出用のGeminiモデル
	ImageModel  string // --image-model: 画像生成用のGeminiモデル
	Instruction string // --instruction: analyze モードの追加指示

	// 実行制御
	HTTPTimeout  time.Duration // --http-timeout
	RateInterval time.Duration // --rate-interval: 合成リクエストの間隔
}
