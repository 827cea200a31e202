package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Garment は検出された衣料アイテム1点の定義を保持します。
// 検出呼び出しが返した順序の中の位置（インデックス）がそのままアイテムの識別子になります。
type Garment struct {
	Name        string `json:"name"`        // 表示名（例: "Denim Jacket"）
	Type        string `json:"type"`        // 分類（例: "outerwear", "footwear"）
	Color       string `json:"color"`       // 主要色
	Description string `json:"description"` // 合成プロンプトに注入する外見上の特徴
}

// Garments は検出結果の順序付きリストです。順序は表示順と1:1で対応します。
type Garments []Garment

// String は衣料アイテムの情報を文字列で返すのだ。
func (g Garment) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.Type, g.Color)
}

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// DecodeGarments は AI 応答テキストから衣料アイテムのリストを復元します。
// スキーマ制約付きの呼び出しは通常クリーンな JSON を返しますが、
// フェンス付きコードブロックや前置きテキストが混入した場合のフォールバックも行います。
func DecodeGarments(raw string) (Garments, error) {
	raw = strings.TrimSpace(raw)
	var rawJSON string

	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		rawJSON = matches[1]
	} else {
		// Fallback: 最初の '[' から最後の ']' までを JSON 配列として扱います
		first := strings.Index(raw, "[")
		last := strings.LastIndex(raw, "]")
		if first != -1 && last != -1 && last > first {
			rawJSON = raw[first : last+1]
		} else {
			rawJSON = raw
		}
	}

	var garments Garments
	if err := json.Unmarshal([]byte(rawJSON), &garments); err != nil {
		return nil, fmt.Errorf("衣料リスト JSON のデコードに失敗しました: %w", err)
	}

	return garments, nil
}

// SeedFromGarment は衣料アイテム名から決定論的なシード値を生成します。
// 同じアイテムを再生成しても同じシードが使われ、結果の一貫性が保たれます。
func SeedFromGarment(name string) int64 {
	hash := sha256.Sum256([]byte(name))
	seed := int32(binary.BigEndian.Uint32(hash[:4]))
	// Geminiのシード値は正の数が望ましいため、最上位ビットを落とすのが安全なのだ
	return int64(seed & 0x7FFFFFFF)
}
