// Package journal は、オーケストレーターの状態遷移を記録する
// 追記専用のセッションジャーナルを提供します。
package journal

import (
	"sync"
	"time"
)

// Severity はジャーナルエントリーの重要度タグです。
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
	SeveritySystem
)

// String は重要度の表示名を返します。
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeveritySuccess:
		return "SUCCESS"
	case SeverityError:
		return "ERROR"
	case SeveritySystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Entry はジャーナルの1エントリーです。生成後は不変です。
type Entry struct {
	ID       int64
	At       time.Time
	Message  string
	Severity Severity
}

// Journal は追記専用・時系列順のエントリー列です。
// 追記順がそのまま時系列順であり、並べ替えや重複排除は行いません。
// 個別のエントリーが削除されることはなく、セッション全体のリセットのみが全消去します。
type Journal struct {
	mu      sync.Mutex
	nextID  int64
	entries []Entry
}

// New は空のジャーナルを生成します。
func New() *Journal {
	return &Journal{}
}

// Append は新しいエントリーを末尾に追記して返します。
// 並列の合成ゴルーチンから呼ばれるため、ID採番と追記はロック下で行います。
func (j *Journal) Append(sev Severity, message string) Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.nextID++
	e := Entry{
		ID:       j.nextID,
		At:       time.Now(),
		Message:  message,
		Severity: sev,
	}
	j.entries = append(j.entries, e)
	return e
}

// Entries は現在のエントリー列のコピーを返します。
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	copied := make([]Entry, len(j.entries))
	copy(copied, j.entries)
	return copied
}

// Len は現在のエントリー数を返します。
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Reset は全エントリーを破棄し、リセットを示す単一の SYSTEM エントリーだけを残します。
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = j.entries[:0]
	j.nextID++
	j.entries = append(j.entries, Entry{
		ID:       j.nextID,
		At:       time.Now(),
		Message:  "セッションをリセットしました",
		Severity: SeveritySystem,
	})
}
