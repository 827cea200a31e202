// Package pipeline は、CLI から呼び出されるアプリケーション実行の入口です。
// 環境設定から共有コンポーネントを組み立て、ワークフローの Runner を起動します。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-outfit-kit/internal/config"
	kitconfig "github.com/shouni/go-outfit-kit/pkg/config"
	"github.com/shouni/go-outfit-kit/pkg/gateway"
	"github.com/shouni/go-outfit-kit/pkg/journal"
	"github.com/shouni/go-outfit-kit/pkg/parser"
	"github.com/shouni/go-outfit-kit/pkg/prompts"
	"github.com/shouni/go-outfit-kit/pkg/workflow"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
)

// ExecuteDecompose は、ソース画像を検出→並列合成で分解し、
// 成功した単品カットを保存する一連の処理を実行するのだ。
func ExecuteDecompose(ctx context.Context, cfg *config.Config) error {
	mgr, err := setupManager(ctx, cfg)
	if err != nil {
		return err
	}

	decomposeRunner, err := mgr.BuildDecomposeRunner()
	if err != nil {
		if errors.Is(err, gateway.ErrCredentialRequired) {
			// 回復可能な条件: 資格情報を選択し直せば再実行できます
			return fmt.Errorf("資格情報が未選択です。GEMINI_API_KEY を設定してから再実行してほしいのだ: %w", err)
		}
		return err
	}

	saved, err := decomposeRunner.RunAndSave(ctx, cfg.Options.ImageFile, cfg.Options.OutputImageDir)
	printJournal(mgr.Journal())
	if err != nil {
		return fmt.Errorf("分解パイプラインの実行に失敗したのだ: %w", err)
	}

	slog.Info("単品カットの生成が完了したのだ！", "saved", len(saved))
	for _, path := range saved {
		fmt.Println(path)
	}
	return nil
}

// ExecuteAnalyze は、スタイルDNAレポートを生成・保存し、
// セクションごとの内容を表示するのだ。
func ExecuteAnalyze(ctx context.Context, cfg *config.Config) error {
	mgr, err := setupManager(ctx, cfg)
	if err != nil {
		return err
	}

	analyzeRunner, err := mgr.BuildAnalyzeRunner()
	if err != nil {
		return err
	}

	report, sections, err := analyzeRunner.Run(ctx, cfg.Options.ImageFile, cfg.Options.Instruction)
	printJournal(mgr.Journal())
	if err != nil {
		return fmt.Errorf("分析パイプラインの実行に失敗したのだ: %w", err)
	}

	printSections(sections)

	if cfg.Options.OutputFile != "" {
		if err := analyzeRunner.SaveReport(ctx, report, cfg.Options.OutputFile); err != nil {
			return err
		}
		slog.Info("レポートを保存したのだ", "path", cfg.Options.OutputFile, "bytes", len(report))
	}

	return nil
}

// setupManager は、提供された設定と共有コンポーネントを使用して、ワークフロー Manager を初期化して返すのだ。
func setupManager(ctx context.Context, cfg *config.Config) (*workflow.Manager, error) {
	httpClient := httpkit.New(cfg.Options.HTTPTimeout)

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}

	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, err
	}

	return workflow.New(ctx, workflow.ManagerArgs{
		Config:     toKitConfig(cfg),
		HTTPClient: httpClient,
		Reader:     reader,
		Writer:     writer,
	})
}

// toKitConfig は CLI 層の設定をキット側の Config に対応付けます。
func toKitConfig(cfg *config.Config) kitconfig.Config {
	kit := kitconfig.DefaultConfig()
	kit.GeminiAPIKey = cfg.GeminiAPIKey
	if cfg.Options.AIModel != "" {
		kit.GeminiModel = cfg.Options.AIModel
	}
	if cfg.Options.ImageModel != "" {
		kit.ImageStandardModel = cfg.Options.ImageModel
	}
	if cfg.StyleSuffix != "" {
		kit.StyleSuffix = cfg.StyleSuffix
	}
	if cfg.Options.RateInterval > 0 {
		kit.RateInterval = cfg.Options.RateInterval
	}
	kit.RequestTimeout = cfg.Options.HTTPTimeout
	return kit
}

// printJournal はセッションジャーナルを時系列のまま標準出力に表示するのだ。
func printJournal(j *journal.Journal) {
	for _, e := range j.Entries() {
		fmt.Printf("[%s] %s %s\n", e.At.Format("15:04:05.000"), e.Severity, e.Message)
	}
}

// printSections はレポートのセクション分解を表示するのだ。
// DNA セクションは key:value のビューでも表示します。
func printSections(sections []parser.Section) {
	for _, s := range sections {
		fmt.Println(s.Label)
		if s.Body == "" {
			fmt.Println("(empty)")
			continue
		}
		fmt.Println(s.Body)

		// key:value のビューは行指向の DNA セクションにのみ適用するのだ
		if s.Label != prompts.MarkerDNAAnalysis {
			fmt.Println()
			continue
		}
		if pairs := parser.KeyValues(s.Body); len(pairs) > 0 {
			fmt.Println("--- key/value view ---")
			for _, p := range pairs {
				fmt.Printf("%s = %s\n", p.Key, p.Value)
			}
		}
		fmt.Println()
	}
}
