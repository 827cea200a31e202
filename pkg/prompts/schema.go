package prompts

import "google.golang.org/genai"

// GarmentListSchema は検出呼び出しの構造化出力スキーマを返します。
// 応答は Garment の順序付き JSON 配列に制約されます。
func GarmentListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name": {
					Type:        genai.TypeString,
					Description: "Short display name of the item",
				},
				"type": {
					Type:        genai.TypeString,
					Description: "Category such as outerwear, top, bottom, footwear, accessory",
				},
				"color": {
					Type:        genai.TypeString,
					Description: "Dominant color of the item",
				},
				"description": {
					Type:        genai.TypeString,
					Description: "Concrete visual details: fabric, cut, pattern, hardware",
				},
			},
			Required: []string{"name", "type", "color", "description"},
		},
	}
}
