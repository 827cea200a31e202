// Package extractor は、1枚のソース画像を複数の独立した単品カットへ
// 分解するワークフローのオーケストレーターです。検出呼び出しで得た
// アイテムリストに対し、アイテムごとの合成呼び出しを並列に発行し、
// 各アイテムのライフサイクルを互いに影響させずに追跡します。
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shouni/go-outfit-kit/pkg/domain"
	"github.com/shouni/go-outfit-kit/pkg/gateway"
	"github.com/shouni/go-outfit-kit/pkg/journal"
	"github.com/shouni/go-outfit-kit/pkg/prompts"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// GarmentAspectRatio は単品カットの推奨アスペクト比です。
const GarmentAspectRatio = "3:4"

// ErrNoDetection は、検出が成功していない状態で合成が要求されたことを示します。
var ErrNoDetection = errors.New("検出結果がありません")

// GarmentSynthesizer は、単品カットの画像生成エンジンへの契約です。
type GarmentSynthesizer interface {
	Synthesize(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error)
}

// AssetUploader は、参照画像を File API へアップロードする契約です。
type AssetUploader interface {
	UploadFile(ctx context.Context, url string) (string, error)
}

// Extractor は検出→並列合成のオーケストレーターです。
// 状態テーブルとジャーナルは Extractor が排他的に所有し、
// state.go の遷移メソッド経由でのみ変更されます。
type Extractor struct {
	gateway       gateway.VisionGateway
	synthesizer   GarmentSynthesizer
	assets        AssetUploader // nil の場合は File API を使いません
	scriptBuilder prompts.ScriptPrompt
	garmentPrompt prompts.GarmentPrompt
	journal       *journal.Journal
	limiter       *rate.Limiter

	mu        sync.RWMutex
	run       uint64 // ランの識別子。新しい検出とリセットで単調増加します
	source    domain.SourceImage
	sourceURI string // File API 上の URI。ランごとに1回だけアップロードします
	garments  domain.Garments
	states    []ItemState

	uploadGroup singleflight.Group
}

// New は依存関係を注入して Extractor を初期化します。
func New(
	gw gateway.VisionGateway,
	synth GarmentSynthesizer,
	assets AssetUploader,
	sp prompts.ScriptPrompt,
	gp prompts.GarmentPrompt,
	jrnl *journal.Journal,
	limiter *rate.Limiter,
) (*Extractor, error) {
	if gw == nil {
		return nil, fmt.Errorf("VisionGateway は必須です")
	}
	if synth == nil {
		return nil, fmt.Errorf("GarmentSynthesizer は必須です")
	}
	if sp == nil {
		return nil, fmt.Errorf("ScriptPrompt は必須です")
	}
	if gp == nil {
		return nil, fmt.Errorf("GarmentPrompt は必須です")
	}
	if jrnl == nil {
		jrnl = journal.New()
	}

	return &Extractor{
		gateway:       gw,
		synthesizer:   synth,
		assets:        assets,
		scriptBuilder: sp,
		garmentPrompt: gp,
		journal:       jrnl,
		limiter:       limiter,
	}, nil
}

// Journal はこのセッションのジャーナルを返します。
func (e *Extractor) Journal() *journal.Journal {
	return e.journal
}

// Garments は現在のランの検出結果のコピーを返します。
func (e *Extractor) Garments() domain.Garments {
	e.mu.RLock()
	defer e.mu.RUnlock()

	copied := make(domain.Garments, len(e.garments))
	copy(copied, e.garments)
	return copied
}

// States は現在のランの状態テーブルのスナップショットを返します。
// エントリー数は常に検出結果の件数と一致し、インデックスが1:1で対応します。
func (e *Extractor) States() []ItemState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	copied := make([]ItemState, len(e.states))
	copy(copied, e.states)
	return copied
}

// Reset はランの識別子を無効化し、導出された全状態を破棄します。
// 実行中の合成呼び出しの結果は以後すべて捨てられます。
func (e *Extractor) Reset() {
	e.mu.Lock()
	e.run++
	e.source = domain.SourceImage{}
	e.sourceURI = ""
	e.garments = nil
	e.states = nil
	e.mu.Unlock()

	e.journal.Reset()
}

// Detect は新しいランを開始し、単一の検出呼び出しで衣料リストを取得します。
// 成功時は状態テーブルを全エントリー Idle で初期化します。失敗した場合、
// そのランは終端です（合成は発行されず、検出結果は空のままになります）。
func (e *Extractor) Detect(ctx context.Context, img domain.SourceImage) (domain.Garments, error) {
	// 新しい検出は前のランを即座に無効化します
	e.mu.Lock()
	e.run++
	runID := e.run
	e.source = img
	e.sourceURI = ""
	e.garments = nil
	e.states = nil
	e.mu.Unlock()

	e.journal.Append(journal.SeverityInfo, "衣料の検出を開始しました")
	slog.InfoContext(ctx, "Starting garment detection", "source", img.Path, "mime", img.MimeType)

	prompt, err := e.scriptBuilder.Build(prompts.ModeDetection, prompts.TemplateData{})
	if err != nil {
		e.journal.Append(journal.SeverityError, fmt.Sprintf("検出プロンプトの構築に失敗しました: %v", err))
		return nil, fmt.Errorf("検出プロンプトの構築に失敗しました: %w", err)
	}

	garments, err := e.gateway.Detect(ctx, prompt, img)
	if err != nil {
		e.journal.Append(journal.SeverityError, fmt.Sprintf("衣料の検出に失敗しました: %v", err))
		return nil, fmt.Errorf("衣料の検出に失敗しました: %w", err)
	}

	e.mu.Lock()
	if runID != e.run {
		e.mu.Unlock()
		// このランは検出中に無効化されました。結果は捨てます
		return nil, ErrNoDetection
	}
	e.garments = garments
	e.states = make([]ItemState, len(garments))
	e.mu.Unlock()

	if len(garments) == 0 {
		// 0件の検出は有効な空のランです
		e.journal.Append(journal.SeverityInfo, "衣料は検出されませんでした（空の結果）")
	} else {
		e.journal.Append(journal.SeveritySuccess, fmt.Sprintf("%d 点の衣料を検出しました", len(garments)))
	}

	return e.Garments(), nil
}

// SynthesizeAll は現在のランの全アイテムの合成を並列に発行します。
// アイテム単位の失敗はラン全体には伝播せず、該当インデックスが Failed に
// なるだけです。戻り値のエラーはコンテキストの取り消しのみを表します。
func (e *Extractor) SynthesizeAll(ctx context.Context) error {
	e.mu.RLock()
	runID := e.run
	count := len(e.states)
	e.mu.RUnlock()

	if count == 0 {
		return nil
	}

	// ソース画像のアップロードはランごとに1回だけ行います
	if err := e.prepareSourceResource(ctx, runID); err != nil {
		slog.WarnContext(ctx, "Source upload failed, falling back to reference URL", "error", err)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		index := i
		eg.Go(func() error {
			e.synthesizeOne(egCtx, runID, index)
			// アイテム間の失敗分離のため、個別の失敗はここでは返しません
			return egCtx.Err()
		})
	}

	return eg.Wait()
}

// SynthesizeOne は指定インデックスのアイテム1点の合成を発行します。
// 失敗したアイテムの手動再生成にも同じ経路を使います。
func (e *Extractor) SynthesizeOne(ctx context.Context, index int) error {
	e.mu.RLock()
	runID := e.run
	count := len(e.states)
	e.mu.RUnlock()

	if count == 0 {
		return ErrNoDetection
	}
	if index < 0 || index >= count {
		return fmt.Errorf("インデックスが範囲外です: %d (検出件数: %d)", index, count)
	}

	if err := e.prepareSourceResource(ctx, runID); err != nil {
		slog.WarnContext(ctx, "Source upload failed, falling back to reference URL", "error", err)
	}

	e.synthesizeOne(ctx, runID, index)
	return nil
}

// synthesizeOne はアイテム1点のライフサイクルを最初から最後まで駆動します。
// 必ず Processing を経由し、リクエストが決着したら Succeeded か Failed の
// どちらか一方に到達します。無効化済みランの完了は状態に反映されません。
func (e *Extractor) synthesizeOne(ctx context.Context, runID uint64, index int) {
	e.mu.RLock()
	var garment domain.Garment
	stale := runID != e.run || index >= len(e.garments)
	if !stale {
		garment = e.garments[index]
	}
	source := e.source
	sourceURI := e.sourceURI
	e.mu.RUnlock()

	if stale {
		return
	}

	if !e.beginProcessing(runID, index) {
		return
	}
	e.journal.Append(journal.SeverityInfo, fmt.Sprintf("アイテム %d (%s) の合成を開始しました", index+1, garment.Name))

	logger := slog.With("item_index", index+1, "item", garment.Name)
	startTime := time.Now()

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			if e.markFailed(runID, index) {
				e.journal.Append(journal.SeverityError, fmt.Sprintf("アイテム %d (%s) の合成が中断されました: %v", index+1, garment.Name, err))
			}
			return
		}
	}

	userPrompt, systemPrompt, seed := e.garmentPrompt.BuildGarment(garment, index)

	resp, err := e.synthesizer.Synthesize(ctx, imagedom.ImageGenerationRequest{
		Prompt:         userPrompt,
		SystemPrompt:   systemPrompt,
		NegativePrompt: prompts.NegativeGarmentPrompt,
		AspectRatio:    GarmentAspectRatio,
		Seed:           &seed,
		FileAPIURI:     sourceURI,
		ReferenceURL:   source.Path,
	})

	// 応答に画像ペイロードが欠けている場合もトランスポート障害として扱います
	if err == nil && (resp == nil || len(resp.Data) == 0) {
		err = gateway.ErrEmptyResponse
	}

	if err != nil {
		if e.markFailed(runID, index) {
			e.journal.Append(journal.SeverityError, fmt.Sprintf("アイテム %d (%s) の合成に失敗しました: %v", index+1, garment.Name, err))
			logger.Error("Garment synthesis failed", "error", err)
		}
		return
	}

	if e.markSucceeded(runID, index, resp) {
		e.journal.Append(journal.SeveritySuccess, fmt.Sprintf("アイテム %d (%s) の合成が完了しました", index+1, garment.Name))
		logger.Info("Garment synthesis completed", "duration", time.Since(startTime).Round(time.Millisecond))
	}
}

// prepareSourceResource はソース画像を File API へアップロードして URI を
// 記録します。singleflight により同一ランからの重複アップロードを防ぎます。
func (e *Extractor) prepareSourceResource(ctx context.Context, runID uint64) error {
	e.mu.RLock()
	path := e.source.Path
	already := e.sourceURI != ""
	e.mu.RUnlock()

	if e.assets == nil || path == "" || already {
		return nil
	}

	val, err, _ := e.uploadGroup.Do(path, func() (interface{}, error) {
		// singleflight 待機中に別ゴルーチンが完了している可能性があるため再確認します
		e.mu.RLock()
		existing := e.sourceURI
		e.mu.RUnlock()
		if existing != "" {
			return existing, nil
		}

		uri, uploadErr := e.assets.UploadFile(ctx, path)
		if uploadErr != nil {
			return nil, uploadErr
		}

		e.mu.Lock()
		if runID == e.run {
			e.sourceURI = uri
		}
		e.mu.Unlock()

		return uri, nil
	})
	if err != nil {
		return fmt.Errorf("ソース画像のアップロードに失敗しました: %w", err)
	}

	if _, ok := val.(string); !ok {
		return fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	return nil
}
