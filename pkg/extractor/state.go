package extractor

import (
	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
)

// Phase はアイテムインデックスごとの生成状態です。
// 遷移は Idle → Processing → {Succeeded | Failed} のみで、
// Succeeded / Failed は同一ラン内では終端です（手動の再生成は再び Processing に入ります）。
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseProcessing
	PhaseSucceeded
	PhaseFailed
)

// String は状態の表示名を返します。
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseProcessing:
		return "processing"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ItemState は検出インデックスに対応するアイテム1点の状態です。
// Image は Succeeded のときのみ非 nil になります。
type ItemState struct {
	Phase Phase
	Image *imagedom.ImageResponse
}

// beginProcessing は index を Processing に遷移させます。
// ランが既に無効化されている場合と、同じ index のリクエストが既に
// 実行中の場合は false を返し、状態テーブルには触れません。
func (e *Extractor) beginProcessing(runID uint64, index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if runID != e.run || index < 0 || index >= len(e.states) {
		return false
	}
	if e.states[index].Phase == PhaseProcessing {
		return false
	}

	e.states[index] = ItemState{Phase: PhaseProcessing}
	return true
}

// markSucceeded は index に生成画像を紐づけて Succeeded に遷移させます。
// 無効化済みランからの遅延応答は現在の状態テーブルを変更しません。
func (e *Extractor) markSucceeded(runID uint64, index int, img *imagedom.ImageResponse) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if runID != e.run || index < 0 || index >= len(e.states) {
		return false
	}

	e.states[index] = ItemState{Phase: PhaseSucceeded, Image: img}
	return true
}

// markFailed は index を Failed に遷移させます。この遷移は無条件であり、
// 合成に失敗したアイテムが Processing のまま残ることはありません。
func (e *Extractor) markFailed(runID uint64, index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if runID != e.run || index < 0 || index >= len(e.states) {
		return false
	}

	e.states[index] = ItemState{Phase: PhaseFailed}
	return true
}
