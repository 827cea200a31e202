package workflow

import (
	"fmt"

	"github.com/shouni/go-outfit-kit/pkg/gateway"
	"github.com/shouni/go-outfit-kit/pkg/runner"
)

// BuildDecomposeRunner は、検出→並列合成のランナーを構築します。
// 画像生成は有償ティアのモデルを要求するため、構築前に資格情報の
// 述語を確認し、欠けていればリクエストを一切発行せずに返します。
func (m *Manager) BuildDecomposeRunner() (DecomposeRunner, error) {
	if !m.cfg.HasCredential() {
		return nil, fmt.Errorf("画像生成には資格情報の選択が必要です: %w", gateway.ErrCredentialRequired)
	}

	ex, err := m.buildExtractor()
	if err != nil {
		return nil, err
	}

	return runner.NewDecomposeRunner(m.cfg, ex, m.reader, m.writer), nil
}

// BuildAnalyzeRunner は、スタイルDNA分析のランナーを構築します。
func (m *Manager) BuildAnalyzeRunner() (AnalyzeRunner, error) {
	return runner.NewAnalyzeRunner(m.cfg, m.vision, m.scriptPrompt, m.journal, m.reader, m.writer), nil
}
