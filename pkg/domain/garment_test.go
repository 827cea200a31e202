package domain

import (
	"testing"
)

func TestDecodeGarments(t *testing.T) {
	t.Run("正常系: クリーンなJSON配列からデコードできること", func(t *testing.T) {
		raw := `[{"name":"Denim Jacket","type":"outerwear","color":"indigo","description":"oversized, faded wash"}]`

		garments, err := DecodeGarments(raw)
		if err != nil {
			t.Fatalf("正常なJSONでエラーが発生しました: %v", err)
		}
		if len(garments) != 1 {
			t.Fatalf("期待値 1 件, 実際の値 %d", len(garments))
		}
		if garments[0].Name != "Denim Jacket" {
			t.Errorf("期待値 'Denim Jacket', 実際の値 '%s'", garments[0].Name)
		}
	})

	t.Run("フェンス付きコードブロックからデコードできること", func(t *testing.T) {
		raw := "```json\n[{\"name\":\"Sneakers\",\"type\":\"footwear\",\"color\":\"white\",\"description\":\"low-top leather\"}]\n```"

		garments, err := DecodeGarments(raw)
		if err != nil {
			t.Fatalf("フェンス付きJSONでエラーが発生しました: %v", err)
		}
		if len(garments) != 1 || garments[0].Type != "footwear" {
			t.Errorf("デコード結果が不正です: %+v", garments)
		}
	})

	t.Run("前置きテキスト混じりでも配列部分を拾えること", func(t *testing.T) {
		raw := `検出結果です: [{"name":"Cap","type":"accessory","color":"black","description":"wool baseball cap"}] 以上`

		garments, err := DecodeGarments(raw)
		if err != nil {
			t.Fatalf("前置き混じりのJSONでエラーが発生しました: %v", err)
		}
		if len(garments) != 1 || garments[0].Name != "Cap" {
			t.Errorf("デコード結果が不正です: %+v", garments)
		}
	})

	t.Run("空の配列は有効な結果であること", func(t *testing.T) {
		garments, err := DecodeGarments("[]")
		if err != nil {
			t.Fatalf("空配列でエラーが発生しました: %v", err)
		}
		if len(garments) != 0 {
			t.Errorf("期待値 0 件, 実際の値 %d", len(garments))
		}
	})

	t.Run("異常系: 不正なJSONでエラーが返ること", func(t *testing.T) {
		if _, err := DecodeGarments("{ invalid json }"); err == nil {
			t.Error("不正なJSONでエラーが発生しませんでした")
		}
	})
}

func TestSeedFromGarment(t *testing.T) {
	t.Run("同じ名前から決定論的にSeedが生成されること", func(t *testing.T) {
		seed1 := SeedFromGarment("Denim Jacket")
		seed2 := SeedFromGarment("Denim Jacket")

		if seed1 != seed2 {
			t.Error("同じ名前から異なるSeedが生成されました。決定論的ではありません")
		}
	})

	t.Run("Seedが非負であること", func(t *testing.T) {
		if seed := SeedFromGarment("Sneakers"); seed < 0 {
			t.Errorf("負のSeedが生成されました: %d", seed)
		}
	})

	t.Run("異なる名前からは通常異なるSeedが生成されること", func(t *testing.T) {
		if SeedFromGarment("Cap") == SeedFromGarment("Scarf") {
			t.Error("異なる名前から同じSeedが生成されました")
		}
	})
}

func TestNewSourceImage(t *testing.T) {
	// PNG のマジックナンバーで始まるダミーデータ
	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

	t.Run("正常系: PNGデータを受け付けること", func(t *testing.T) {
		img, err := NewSourceImage("photo.png", pngHeader)
		if err != nil {
			t.Fatalf("正常なPNGでエラーが発生しました: %v", err)
		}
		if img.MimeType != "image/png" {
			t.Errorf("期待値 'image/png', 実際の値 '%s'", img.MimeType)
		}
	})

	t.Run("異常系: 空データを拒否すること", func(t *testing.T) {
		if _, err := NewSourceImage("empty.png", nil); err == nil {
			t.Error("空データでエラーが発生しませんでした")
		}
	})

	t.Run("異常系: 画像以外のデータを拒否すること", func(t *testing.T) {
		if _, err := NewSourceImage("note.txt", []byte("plain text data")); err == nil {
			t.Error("テキストデータでエラーが発生しませんでした")
		}
	})

	t.Run("異常系: サイズ上限超過を拒否すること", func(t *testing.T) {
		big := make([]byte, MaxSourceImageBytes+1)
		copy(big, pngHeader)
		if _, err := NewSourceImage("big.png", big); err == nil {
			t.Error("サイズ超過でエラーが発生しませんでした")
		}
	})
}
