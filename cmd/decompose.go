package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-outfit-kit/internal/config"
	"github.com/shouni/go-outfit-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// decomposeCmd は、1枚のソース画像から衣料アイテムを検出し、
// アイテムごとの単品カットを並列生成するサブコマンドなのだ。
var decomposeCmd = &cobra.Command{
	Use:   "decompose",
	Short: "ソース画像を検出し、アイテムごとの単品カットを生成するのだ。",
	Long: `ソース画像に写っている衣料アイテムを1回の検出呼び出しでリストアップし、
各アイテムに対して独立した合成呼び出しを並列に発行するのだ。
あるアイテムの失敗は他のアイテムの生成には影響しないのだよ。`,
	RunE: decomposeCommand,
}

// decomposeCommand は、decompose サブコマンドの実行ロジック本体なのだ。
func decomposeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 必須となる入力ファイルの存在チェック
	if opts.ImageFile == "" {
		return fmt.Errorf("ソース画像（--image-file）を指定してほしいのだ")
	}

	// 1. 環境変数から基本設定をロード
	cfg := config.LoadConfig()

	// 2. コマンドライン引数の値を反映
	cfg.Options = opts
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel

	slog.Info("分解パイプラインを起動するのだ！",
		"source", cfg.Options.ImageFile,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"output_dir", cfg.Options.OutputImageDir)

	// 3. パイプライン実行
	return pipeline.ExecuteDecompose(ctx, cfg)
}
