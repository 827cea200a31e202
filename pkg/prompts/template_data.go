package prompts

import (
	_ "embed"
)

const (
	ModeAnalysis  = "analysis"
	ModeDetection = "detection"
)

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
type TemplateData struct {
	Instruction string
}

var (
	//go:embed analysis.md
	AnalysisPrompt string
	//go:embed detection.md
	DetectionPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModeAnalysis:  AnalysisPrompt,
	ModeDetection: DetectionPrompt,
}
