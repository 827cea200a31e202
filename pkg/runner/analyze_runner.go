package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-outfit-kit/pkg/config"
	"github.com/shouni/go-outfit-kit/pkg/gateway"
	"github.com/shouni/go-outfit-kit/pkg/journal"
	"github.com/shouni/go-outfit-kit/pkg/parser"
	"github.com/shouni/go-outfit-kit/pkg/prompts"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// AnalyzeRunner は、ソース画像からスタイルDNAレポートを生成し、
// 区切りマーカーでセクションに分解して返します。
type AnalyzeRunner struct {
	cfg           config.Config
	vision        gateway.VisionGateway
	scriptBuilder prompts.ScriptPrompt
	journal       *journal.Journal
	reader        remoteio.InputReader
	writer        remoteio.OutputWriter
}

// NewAnalyzeRunner は、依存関係を注入して初期化します。
func NewAnalyzeRunner(
	cfg config.Config,
	vision gateway.VisionGateway,
	sp prompts.ScriptPrompt,
	jrnl *journal.Journal,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
) *AnalyzeRunner {
	if jrnl == nil {
		jrnl = journal.New()
	}
	return &AnalyzeRunner{
		cfg:           cfg,
		vision:        vision,
		scriptBuilder: sp,
		journal:       jrnl,
		reader:        reader,
		writer:        writer,
	}
}

// Run は単一の分析呼び出しを実行し、レポート全文とセクション分解の両方を返します。
// セクション分解は導出ビューであり、同じレポートを再解析しても同一の結果になります。
func (r *AnalyzeRunner) Run(ctx context.Context, imagePath string, instruction string) (string, []parser.Section, error) {
	img, err := loadSourceImage(ctx, r.reader, imagePath)
	if err != nil {
		return "", nil, err
	}

	prompt, err := r.scriptBuilder.Build(prompts.ModeAnalysis, prompts.TemplateData{Instruction: instruction})
	if err != nil {
		return "", nil, fmt.Errorf("分析プロンプトの構築に失敗しました: %w", err)
	}

	r.journal.Append(journal.SeverityInfo, "スタイルDNAの分析を開始しました")
	slog.InfoContext(ctx, "Starting style DNA analysis", "source", imagePath, "model", r.cfg.GeminiModel)

	report, err := r.vision.Analyze(ctx, prompt, img)
	if err != nil {
		r.journal.Append(journal.SeverityError, fmt.Sprintf("スタイルDNAの分析に失敗しました: %v", err))
		return "", nil, fmt.Errorf("スタイルDNAの分析に失敗しました: %w", err)
	}

	markers := prompts.AnalysisMarkers()
	sections := parser.Sections(report, markers)

	// マーカーの欠落はエラーではなく、空のセクションに縮退します
	for _, s := range sections {
		if s.Body == "" && !strings.Contains(report, s.Label) {
			r.journal.Append(journal.SeverityInfo, fmt.Sprintf("セクション '%s' は応答に含まれていませんでした", s.Label))
		}
	}

	r.journal.Append(journal.SeveritySuccess, "スタイルDNAの分析が完了しました")
	return report, sections, nil
}

// RunAndSave は分析レポートを生成し、指定のパスにテキストとして保存します。
func (r *AnalyzeRunner) RunAndSave(ctx context.Context, imagePath string, instruction string, outputPath string) (string, error) {
	report, _, err := r.Run(ctx, imagePath, instruction)
	if err != nil {
		return "", err
	}

	if err := r.SaveReport(ctx, report, outputPath); err != nil {
		return "", err
	}

	return report, nil
}

// SaveReport は生成済みのレポートをテキストとして保存します。
func (r *AnalyzeRunner) SaveReport(ctx context.Context, report string, outputPath string) error {
	slog.InfoContext(ctx, "スタイルDNAレポートを保存しています", "path", outputPath)
	if err := r.writer.Write(ctx, outputPath, strings.NewReader(report), "text/plain; charset=utf-8"); err != nil {
		return fmt.Errorf("レポートの保存に失敗しました (path: %s): %w", outputPath, err)
	}
	return nil
}
