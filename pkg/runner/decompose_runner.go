package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-outfit-kit/pkg/asset"
	"github.com/shouni/go-outfit-kit/pkg/config"
	"github.com/shouni/go-outfit-kit/pkg/domain"
	"github.com/shouni/go-outfit-kit/pkg/extractor"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// DecomposeRunner は、ソース画像の検出→並列合成→保存までを管理します。
type DecomposeRunner struct {
	cfg       config.Config
	extractor *extractor.Extractor
	reader    remoteio.InputReader
	writer    remoteio.OutputWriter
}

// NewDecomposeRunner は、依存関係を注入して初期化します。
func NewDecomposeRunner(
	cfg config.Config,
	ex *extractor.Extractor,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
) *DecomposeRunner {
	return &DecomposeRunner{
		cfg:       cfg,
		extractor: ex,
		reader:    reader,
		writer:    writer,
	}
}

// Run は、ソース画像を読み込んで検出と並列合成を実行し、
// 検出結果と最終的な状態テーブルを返すのだ。
func (r *DecomposeRunner) Run(ctx context.Context, imagePath string) (domain.Garments, []extractor.ItemState, error) {
	img, err := loadSourceImage(ctx, r.reader, imagePath)
	if err != nil {
		return nil, nil, err
	}

	garments, err := r.extractor.Detect(ctx, img)
	if err != nil {
		return nil, nil, err
	}

	if len(garments) == 0 {
		slog.InfoContext(ctx, "No garments detected, nothing to synthesize", "source", imagePath)
		return garments, r.extractor.States(), nil
	}

	if err := r.extractor.SynthesizeAll(ctx); err != nil {
		return garments, r.extractor.States(), err
	}

	return garments, r.extractor.States(), nil
}

// RunAndSave は単品カットを生成し、成功したアイテムにインデックスを付けて
// 指定のディレクトリに保存します。保存したパスのリストを返します。
// 失敗したアイテムは保存をスキップするだけで、他のアイテムの保存には影響しません。
func (r *DecomposeRunner) RunAndSave(ctx context.Context, imagePath string, outputDir string) ([]string, error) {
	garments, states, err := r.Run(ctx, imagePath)
	if err != nil {
		return nil, err
	}

	basePath, err := asset.ResolveOutputPath(outputDir, asset.DefaultGarmentFileName)
	if err != nil {
		return nil, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}

	var saved []string
	for i, state := range states {
		if state.Phase != extractor.PhaseSucceeded {
			slog.WarnContext(ctx, "Skipping unsaved garment",
				"index", i+1,
				"item", garments[i].Name,
				"phase", state.Phase.String(),
			)
			continue
		}

		garmentPath, err := asset.GenerateIndexedPath(basePath, i+1)
		if err != nil {
			return saved, fmt.Errorf("アイテム %d の出力パス生成に失敗しました: %w", i+1, err)
		}

		slog.InfoContext(ctx, "単品カットを保存しています",
			"index", i+1,
			"item", garments[i].Name,
			"path", garmentPath,
		)

		if err := r.writer.Write(ctx, garmentPath, bytes.NewReader(state.Image.Data), state.Image.MimeType); err != nil {
			return saved, fmt.Errorf("アイテム %d の保存に失敗しました (path: %s): %w", i+1, garmentPath, err)
		}
		saved = append(saved, garmentPath)
	}

	return saved, nil
}
