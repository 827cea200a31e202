package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-outfit-kit/internal/config"
	"github.com/shouni/go-outfit-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// analyzeCmd は、ソース画像からスタイルDNAレポートを生成するサブコマンドなのだ。
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "ソース画像のスタイルDNAを分析してレポートするのだ。",
	Long: `ソース画像を1回の分析呼び出しにかけ、区切りマーカー付きの
スタイルDNAレポート（DNA分析・最終プロンプト・一貫性のヒント）を生成するのだ。`,
	RunE: analyzeCommand,
}

func init() {
	analyzeCmd.Flags().StringVar(&opts.Instruction, "instruction", "", "分析に追加するユーザー指示なのだ。")
}

// analyzeCommand は、analyze サブコマンドの実行ロジック本体なのだ。
func analyzeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.ImageFile == "" {
		return fmt.Errorf("ソース画像（--image-file）を指定してほしいのだ")
	}

	cfg := config.LoadConfig()
	cfg.Options = opts
	cfg.GeminiModel = opts.AIModel

	slog.Info("分析パイプラインを起動するのだ！",
		"source", cfg.Options.ImageFile,
		"model", cfg.GeminiModel)

	return pipeline.ExecuteAnalyze(ctx, cfg)
}
