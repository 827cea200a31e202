package gateway

import (
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var (
	// ErrCredentialRequired は、資格情報が無い・無効・枯渇している状態を示します。
	// 回復可能な条件であり、資格情報の再選択で再試行できます。
	ErrCredentialRequired = errors.New("有効な資格情報が必要です")

	// ErrEmptyResponse は、Gateway の応答に期待したペイロードが含まれていないことを示します。
	ErrEmptyResponse = errors.New("gateway の応答が空です")
)

// classify は genai のエラーを本キットのエラー分類に対応付けます。
// 認証・権限・クォータ系は ErrCredentialRequired 系として回復可能扱い、
// それ以外はそのままトランスポート障害として伝播します。
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403, 429:
			return fmt.Errorf("gateway が資格情報を拒否しました (%d %s): %w", apiErr.Code, apiErr.Status, ErrCredentialRequired)
		}
	}

	return err
}
