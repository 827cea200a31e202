package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-outfit-kit/pkg/domain"
)

const (
	// NegativeGarmentPrompt は、単品カット用のネガティブプロンプトです。
	NegativeGarmentPrompt = "human body, mannequin, model, face, hands, text, alphabet, letters, watermark, logo overlay, collage, multiple items, low quality, distorted"
)

// GarmentPromptBuilder は、検出済み衣料アイテムから単品カット用のAIプロンプトを構築します。
type GarmentPromptBuilder struct {
	defaultSuffix string // "studio product photography" 等の共通サフィックス
}

// NewGarmentPromptBuilder は新しい GarmentPromptBuilder を生成します。
func NewGarmentPromptBuilder(suffix string) *GarmentPromptBuilder {
	return &GarmentPromptBuilder{
		defaultSuffix: suffix,
	}
}

// BuildGarment は、単品カット用の UserPrompt, SystemPrompt, およびシード値を生成します。
func (pb *GarmentPromptBuilder) BuildGarment(garment domain.Garment, index int) (userPrompt string, systemPrompt string, targetSeed int64) {
	// --- 1. System Prompt の構築 ---
	const garmentSystemInstruction = "You are a professional e-commerce product photographer. Isolate a single garment from the reference photo and render it as a clean standalone product shot."

	systemParts := []string{
		garmentSystemInstruction,
		"### RENDERING RULES ###\n- Reproduce ONLY the requested item, exactly as it appears in the reference photo.\n- Flat-lay or ghost-mannequin presentation on a plain neutral background.\n- Preserve the item's true color, fabric texture, pattern, and hardware.",
	}
	if pb.defaultSuffix != "" {
		styleDNA := fmt.Sprintf("### GLOBAL VISUAL STYLE ###\n%s", pb.defaultSuffix)
		systemParts = append(systemParts, styleDNA)
	}
	systemPrompt = strings.Join(systemParts, "\n\n")

	// --- 2. アイテム特徴の収集 (User Prompt) ---
	var visualParts []string
	visualParts = append(visualParts, fmt.Sprintf("TARGET ITEM #%d: %s", index+1, garment.Name))
	if garment.Type != "" {
		visualParts = append(visualParts, fmt.Sprintf("CATEGORY: %s", garment.Type))
	}
	if garment.Color != "" {
		visualParts = append(visualParts, fmt.Sprintf("COLOR: %s", garment.Color))
	}
	if garment.Description != "" {
		visualParts = append(visualParts, fmt.Sprintf("VISUAL DETAILS: %s", garment.Description))
	}
	userPrompt = strings.Join(visualParts, "\n")

	// 再生成しても同じアイテムなら同じシードが使われます
	targetSeed = domain.SeedFromGarment(garment.Name)

	return userPrompt, systemPrompt, targetSeed
}
