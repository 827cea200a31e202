package prompts

import "github.com/shouni/go-outfit-kit/pkg/domain"

// ScriptPrompt は、テキスト系のAIプロンプトを構築する契約です。
type ScriptPrompt interface {
	// Build は、指定されたモード（例: "analysis", "detection"）とデータに基づいてプロンプト文字列を生成します。
	Build(mode string, data TemplateData) (string, error)
}

// GarmentPrompt は、単品カット生成用のAIプロンプトを構築する契約です。
type GarmentPrompt interface {
	// BuildGarment は、単一の衣料アイテム用のユーザープロンプト、システムプロンプト、および使用するseed値を決定します。
	BuildGarment(garment domain.Garment, index int) (userPrompt string, systemPrompt string, targetSeed int64)
}
