package workflow

import (
	"context"
	"time"

	// package outfitdom は本キット自体のドメインモデルを扱います。
	outfitdom "github.com/shouni/go-outfit-kit/pkg/domain"
	"github.com/shouni/go-outfit-kit/pkg/extractor"
	"github.com/shouni/go-outfit-kit/pkg/parser"
)

const (
	defaultCacheExpiration   = 5 * time.Minute
	cacheCleanupInterval     = 15 * time.Minute
	defaultTTL               = 5 * time.Minute
	defaultGeminiTemperature = float32(0.7)
	defaultRateBurst         = 2
)

// WorkflowBuilder は、各処理ランナー（実行環境）を構築するためのビルダー・インターフェースを定義します。
type WorkflowBuilder interface {
	BuildDecomposeRunner() (DecomposeRunner, error)
	BuildAnalyzeRunner() (AnalyzeRunner, error)
}

// DecomposeRunner は、ソース画像を検出→並列合成で単品カット群に分解する責務を持ちます。
type DecomposeRunner interface {
	Run(ctx context.Context, imagePath string) (outfitdom.Garments, []extractor.ItemState, error)
	RunAndSave(ctx context.Context, imagePath string, outputDir string) ([]string, error)
}

// AnalyzeRunner は、ソース画像からスタイルDNAレポートを生成し、セクションに分解する責務を持ちます。
type AnalyzeRunner interface {
	Run(ctx context.Context, imagePath string, instruction string) (string, []parser.Section, error)
	RunAndSave(ctx context.Context, imagePath string, instruction string, outputPath string) (string, error)
	SaveReport(ctx context.Context, report string, outputPath string) error
}
