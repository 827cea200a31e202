package prompts

// スタイルDNAレポートのセクション区切りマーカーです。
// モデルへの指示とレスポンス解析の両方で同じリテラルを使用します。
const (
	MarkerDNAAnalysis = "----- ANALISA DNA -----"
	MarkerFinalPrompt = "----- FINAL PROMPT -----"
	MarkerTips        = "----- Tips Konsistensi -----"
)

// AnalysisMarkers はスタイルDNAレポートのマーカーを出力順で返します。
func AnalysisMarkers() []string {
	return []string{MarkerDNAAnalysis, MarkerFinalPrompt, MarkerTips}
}
