package workflow

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-outfit-kit/pkg/extractor"
	"golang.org/x/time/rate"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	imagekit "github.com/shouni/gemini-image-kit/pkg/generator"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// garmentSynthesizer は gemini-image-kit の生成器を extractor の契約に適合させます。
type garmentSynthesizer struct {
	generator imagekit.ImageGenerator
}

// Synthesize は単品カット1点の画像生成リクエストを発行します。
func (s *garmentSynthesizer) Synthesize(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
	return s.generator.GenerateMangaPanel(ctx, req)
}

// buildExtractor は、画像生成エンジンを初期化し、検出→並列合成の
// オーケストレーターを組み立てます。
func (m *Manager) buildExtractor() (*extractor.Extractor, error) {
	core, err := initializeCore(m.reader, m.httpClient, m.aiClient)
	if err != nil {
		return nil, fmt.Errorf("画像生成エンジンの初期化に失敗しました: %w", err)
	}

	imageGenerator, err := initializeImageGenerator(m.cfg.ImageStandardModel, core)
	if err != nil {
		return nil, fmt.Errorf("ImageGeneratorの初期化に失敗しました: %w", err)
	}

	return extractor.New(
		m.vision,
		&garmentSynthesizer{generator: imageGenerator},
		initializeAssetManager(core),
		m.scriptPrompt,
		m.garmentPrompt,
		m.journal,
		rate.NewLimiter(rate.Every(m.cfg.RateInterval), defaultRateBurst),
	)
}

// initializeAssetManager 提供された GeminiImageCore を使用して AssetManager インスタンスを初期化し、返します。
func initializeAssetManager(core *imagekit.GeminiImageCore) imagekit.AssetManager {
	return core
}

// initializeImageGenerator は、画像キャッシュを含む ImageGenerator を初期化します。
func initializeImageGenerator(model string, core *imagekit.GeminiImageCore) (imagekit.ImageGenerator, error) {
	return imagekit.NewGeminiGenerator(
		model,
		core,
	)
}

// initializeCore 提供された依存関係で構成された GeminiImageCore インスタンスを初期化して返します。
func initializeCore(reader remoteio.InputReader, httpClient httpkit.ClientInterface, aiClient gemini.GenerativeModel) (*imagekit.GeminiImageCore, error) {
	imgCache := cache.New(defaultCacheExpiration, cacheCleanupInterval)
	core, err := imagekit.NewGeminiImageCore(
		aiClient,
		reader,
		httpClient,
		imgCache,
		defaultTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCore の初期化に失敗しました: %w", err)
	}

	return core, nil
}
