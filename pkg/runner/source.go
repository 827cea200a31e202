package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/shouni/go-outfit-kit/pkg/domain"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// loadSourceImage はローカルまたは GCS からソース画像を読み込み、検証して返します。
func loadSourceImage(ctx context.Context, reader remoteio.InputReader, imagePath string) (domain.SourceImage, error) {
	rc, err := reader.Open(ctx, imagePath)
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("ソース画像のオープンに失敗しました (%s): %w", imagePath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("ソース画像の読み込みに失敗しました (%s): %w", imagePath, err)
	}

	return domain.NewSourceImage(imagePath, data)
}
