// Package parser は、単一の AI 応答テキストをリテラル区切りマーカーで
// 名前付きセクションに分解する純粋関数群を提供します。
package parser

import "strings"

// Section は区切りマーカーで囲まれた名前付き部分文字列です。
// 応答テキストから描画時に導出されるだけで、どこにも保持されません。
type Section struct {
	Label string
	Body  string
}

// Pair はセクション本文の行指向 key:value ビューの1要素です。
type Pair struct {
	Key   string
	Value string
}

// Sections はテキスト全体と順序付きの区切りマーカーリストを受け取り、
// 各マーカーの直後から次のマーカーの直前（または末尾）までを本文として返します。
//
// マーカーの照合は完全一致の部分文字列検索です。マーカーが存在しない場合、
// そのセクションの本文は空文字列になります。エラーにはなりません。
// 同じ入力を同じマーカーで再解析しても常に同一の結果を返します（隠れた状態なし）。
func Sections(text string, delimiters []string) []Section {
	// 各マーカーの初出位置を先に求めます
	starts := make([]int, len(delimiters))
	for i, d := range delimiters {
		starts[i] = strings.Index(text, d)
	}

	sections := make([]Section, len(delimiters))
	for i, d := range delimiters {
		sections[i] = Section{Label: d}
		if starts[i] < 0 {
			continue
		}

		bodyStart := starts[i] + len(d)

		// 本文の終端は、本文開始位置より後ろに現れる最初の別マーカーです
		bodyEnd := len(text)
		for j, s := range starts {
			if j == i || s < 0 {
				continue
			}
			if s >= bodyStart && s < bodyEnd {
				bodyEnd = s
			}
		}

		sections[i].Body = strings.TrimSpace(text[bodyStart:bodyEnd])
	}

	return sections
}

// KeyValues はセクション本文を行指向の key:value ペアに分解します。
// 各行は最初のコロンのみで分割され、コロンを含まない行はこのビューからは
// 除外されます（生の本文には残ります）。キーと値の前後の空白は除去され、
// キーは大文字小文字の正規化をせずそのまま表示ラベルとして使われます。
func KeyValues(body string) []Pair {
	var pairs []Pair
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		// 値がコロンの後に無い場合も、空文字列として成立させます
		pairs = append(pairs, Pair{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}
	return pairs
}
