package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxSourceImageBytes はソース画像として受け付ける最大サイズです。
const MaxSourceImageBytes = 10 << 20 // 10MiB

var (
	// ErrImageTooLarge はソース画像がサイズ上限を超えたことを示します。
	ErrImageTooLarge = errors.New("ソース画像がサイズ上限を超えています")
	// ErrUnsupportedImage はサポート外の画像形式であることを示します。
	ErrUnsupportedImage = errors.New("サポートされていない画像形式です")
	// ErrEmptyImage は画像データが空であることを示します。
	ErrEmptyImage = errors.New("画像データが空です")
)

// SourceImage はセッションが所有するソース画像です。
// 新しいアップロードで丸ごと置き換えられ、リセットで破棄されます。
type SourceImage struct {
	Path     string // 取得元のパス（ローカル or gs://...）
	MimeType string
	Data     []byte
}

// NewSourceImage はバイト列を検証してソース画像を生成します。
// 検証はリクエスト発行前に完結し、違反した入力は Gateway に送信されません。
func NewSourceImage(path string, data []byte) (SourceImage, error) {
	if len(data) == 0 {
		return SourceImage{}, ErrEmptyImage
	}
	if len(data) > MaxSourceImageBytes {
		return SourceImage{}, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(data))
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return SourceImage{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, mimeType)
	}

	return SourceImage{
		Path:     path,
		MimeType: mimeType,
		Data:     data,
	}, nil
}
