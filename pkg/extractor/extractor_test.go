package extractor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shouni/go-outfit-kit/pkg/domain"
	"github.com/shouni/go-outfit-kit/pkg/journal"
	"github.com/shouni/go-outfit-kit/pkg/prompts"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
)

// --- テスト用のフェイク実装 ---

type fakeGateway struct {
	garments domain.Garments
	err      error
}

func (f *fakeGateway) Detect(_ context.Context, _ string, _ domain.SourceImage) (domain.Garments, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.garments, nil
}

func (f *fakeGateway) Analyze(_ context.Context, _ string, _ domain.SourceImage) (string, error) {
	return "", errors.New("not implemented")
}

// fakeSynthesizer はインデックス単位で失敗を注入できる合成エンジンです。
// block が非 nil の場合、各呼び出しは block が閉じられるまで待機します。
type fakeSynthesizer struct {
	mu       sync.Mutex
	failOn   map[int]bool
	calls    int
	block    chan struct{}
	started  chan struct{}
	response []byte
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.failOn[call] {
		return nil, errors.New("synthesis exploded")
	}

	data := f.response
	if data == nil {
		data = []byte{0x89, 0x50, 0x4E, 0x47}
	}
	return &imagedom.ImageResponse{Data: data, MimeType: "image/png"}, nil
}

type fakeScriptPrompt struct{}

func (fakeScriptPrompt) Build(_ string, _ prompts.TemplateData) (string, error) {
	return "detect garments", nil
}

type fakeGarmentPrompt struct{}

func (fakeGarmentPrompt) BuildGarment(g domain.Garment, index int) (string, string, int64) {
	return fmt.Sprintf("render %s", g.Name), "system", int64(index + 1)
}

func testGarments(n int) domain.Garments {
	garments := make(domain.Garments, 0, n)
	for i := 0; i < n; i++ {
		garments = append(garments, domain.Garment{
			Name:  fmt.Sprintf("item-%d", i+1),
			Type:  "tops",
			Color: "navy",
		})
	}
	return garments
}

func newTestExtractor(t *testing.T, gw *fakeGateway, synth *fakeSynthesizer) *Extractor {
	t.Helper()
	e, err := New(gw, synth, nil, fakeScriptPrompt{}, fakeGarmentPrompt{}, journal.New(), nil)
	if err != nil {
		t.Fatalf("Extractor の初期化に失敗しました: %v", err)
	}
	return e
}

func testSource() domain.SourceImage {
	return domain.SourceImage{Path: "input/outfit.png", MimeType: "image/png"}
}

// --- 検出 ---

func TestDetect(t *testing.T) {
	ctx := context.Background()

	t.Run("検出件数と状態テーブルの件数が一致すること", func(t *testing.T) {
		e := newTestExtractor(t, &fakeGateway{garments: testGarments(3)}, &fakeSynthesizer{})

		garments, err := e.Detect(ctx, testSource())
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if len(garments) != 3 {
			t.Fatalf("期待値 3 件, 実際の値 %d", len(garments))
		}

		states := e.States()
		if len(states) != len(garments) {
			t.Errorf("状態テーブルの件数が検出件数と一致しません: %d != %d", len(states), len(garments))
		}
		for i, s := range states {
			if s.Phase != PhaseIdle {
				t.Errorf("index %d: 初期状態は Idle であるべきです: %v", i, s.Phase)
			}
		}
	})

	t.Run("0件の検出は有効な空のランであること", func(t *testing.T) {
		e := newTestExtractor(t, &fakeGateway{garments: domain.Garments{}}, &fakeSynthesizer{})

		garments, err := e.Detect(ctx, testSource())
		if err != nil {
			t.Fatalf("0件の検出はエラーではありません: %v", err)
		}
		if len(garments) != 0 {
			t.Errorf("期待値 0 件, 実際の値 %d", len(garments))
		}
		if err := e.SynthesizeAll(ctx); err != nil {
			t.Errorf("空のランの一括合成は即座に成功すべきです: %v", err)
		}
	})

	t.Run("検出の失敗でランが終端すること", func(t *testing.T) {
		e := newTestExtractor(t, &fakeGateway{err: errors.New("api down")}, &fakeSynthesizer{})

		if _, err := e.Detect(ctx, testSource()); err == nil {
			t.Fatal("エラーが返されるべきです")
		}
		if len(e.Garments()) != 0 || len(e.States()) != 0 {
			t.Error("検出失敗後のランに検出結果が残っています")
		}
		if err := e.SynthesizeAll(ctx); err != nil {
			t.Errorf("検出結果のない一括合成は何もせず成功すべきです: %v", err)
		}
	})
}

// --- 並列合成と失敗分離 ---

func TestSynthesizeAll(t *testing.T) {
	ctx := context.Background()

	t.Run("全アイテム成功", func(t *testing.T) {
		synth := &fakeSynthesizer{}
		e := newTestExtractor(t, &fakeGateway{garments: testGarments(3)}, synth)

		if _, err := e.Detect(ctx, testSource()); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if err := e.SynthesizeAll(ctx); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}

		for i, s := range e.States() {
			if s.Phase != PhaseSucceeded {
				t.Errorf("index %d: 期待値 Succeeded, 実際の値 %v", i, s.Phase)
			}
			if s.Image == nil || len(s.Image.Data) == 0 {
				t.Errorf("index %d: 成功したアイテムには画像が紐づくべきです", i)
			}
		}
	})

	t.Run("1アイテムの失敗が他のアイテムに影響しないこと", func(t *testing.T) {
		synth := &fakeSynthesizer{failOn: map[int]bool{1: true}}
		e := newTestExtractor(t, &fakeGateway{garments: testGarments(3)}, synth)

		if _, err := e.Detect(ctx, testSource()); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if err := e.SynthesizeAll(ctx); err != nil {
			t.Fatalf("アイテム単位の失敗はラン全体のエラーではありません: %v", err)
		}

		var succeeded, failed int
		for _, s := range e.States() {
			switch s.Phase {
			case PhaseSucceeded:
				succeeded++
			case PhaseFailed:
				failed++
			default:
				t.Errorf("非終端の状態が残っています: %v", s.Phase)
			}
		}
		if succeeded != 2 || failed != 1 {
			t.Errorf("期待値 成功2/失敗1, 実際の値 成功%d/失敗%d", succeeded, failed)
		}

		failedState := e.States()[0]
		for _, s := range e.States() {
			if s.Phase == PhaseFailed {
				failedState = s
			}
		}
		if failedState.Image != nil {
			t.Error("失敗したアイテムに画像が紐づいています")
		}
	})

	t.Run("空ペイロードの応答は失敗として扱われること", func(t *testing.T) {
		synth := &fakeSynthesizer{response: []byte{}}
		e := newTestExtractor(t, &fakeGateway{garments: testGarments(1)}, synth)

		if _, err := e.Detect(ctx, testSource()); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if err := e.SynthesizeAll(ctx); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}

		if got := e.States()[0].Phase; got != PhaseFailed {
			t.Errorf("期待値 Failed, 実際の値 %v", got)
		}
	})
}

// --- 手動の個別再生成 ---

func TestSynthesizeOne(t *testing.T) {
	ctx := context.Background()

	t.Run("失敗したアイテムを個別に再生成できること", func(t *testing.T) {
		synth := &fakeSynthesizer{failOn: map[int]bool{0: true}}
		e := newTestExtractor(t, &fakeGateway{garments: testGarments(1)}, synth)

		if _, err := e.Detect(ctx, testSource()); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if err := e.SynthesizeAll(ctx); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if got := e.States()[0].Phase; got != PhaseFailed {
			t.Fatalf("前提条件エラー: 期待値 Failed, 実際の値 %v", got)
		}

		// 2回目の呼び出し(call=1)は成功します
		if err := e.SynthesizeOne(ctx, 0); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if got := e.States()[0].Phase; got != PhaseSucceeded {
			t.Errorf("再生成後は Succeeded が期待されます。実際の値 %v", got)
		}
	})

	t.Run("範囲外のインデックスを拒否すること", func(t *testing.T) {
		e := newTestExtractor(t, &fakeGateway{garments: testGarments(2)}, &fakeSynthesizer{})

		if _, err := e.Detect(ctx, testSource()); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if err := e.SynthesizeOne(ctx, 5); err == nil {
			t.Error("範囲外のインデックスはエラーであるべきです")
		}
		if err := e.SynthesizeOne(ctx, -1); err == nil {
			t.Error("負のインデックスはエラーであるべきです")
		}
	})

	t.Run("検出前の合成要求を拒否すること", func(t *testing.T) {
		e := newTestExtractor(t, &fakeGateway{garments: testGarments(1)}, &fakeSynthesizer{})

		if err := e.SynthesizeOne(ctx, 0); !errors.Is(err, ErrNoDetection) {
			t.Errorf("期待値 ErrNoDetection, 実際の値 %v", err)
		}
	})
}

// --- 無効化済みランの破棄 ---

func TestStaleRunDiscard(t *testing.T) {
	ctx := context.Background()

	t.Run("リセット後に完了した合成が状態に反映されないこと", func(t *testing.T) {
		synth := &fakeSynthesizer{
			block:   make(chan struct{}),
			started: make(chan struct{}, 1),
		}
		e := newTestExtractor(t, &fakeGateway{garments: testGarments(1)}, synth)

		if _, err := e.Detect(ctx, testSource()); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}

		done := make(chan error, 1)
		go func() {
			done <- e.SynthesizeAll(ctx)
		}()

		// 合成リクエストが実際に飛んだのを待ってからランを無効化します
		<-synth.started
		e.Reset()
		close(synth.block)

		if err := <-done; err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}

		if len(e.States()) != 0 {
			t.Error("リセット後の状態テーブルは空であるべきです")
		}
		if e.Journal().Len() != 1 {
			t.Errorf("リセット後のジャーナルはリセットエントリー1件のみが期待されます。実際の値 %d", e.Journal().Len())
		}
	})

	t.Run("新しい検出が前のランの遅延応答を無効化すること", func(t *testing.T) {
		synth := &fakeSynthesizer{
			block:   make(chan struct{}),
			started: make(chan struct{}, 1),
		}
		e := newTestExtractor(t, &fakeGateway{garments: testGarments(1)}, synth)

		if _, err := e.Detect(ctx, testSource()); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}

		done := make(chan error, 1)
		go func() {
			done <- e.SynthesizeAll(ctx)
		}()
		<-synth.started

		// 前のランの合成が飛んでいる間に新しい検出を開始します
		if _, err := e.Detect(ctx, testSource()); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		close(synth.block)

		if err := <-done; err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}

		states := e.States()
		if len(states) != 1 {
			t.Fatalf("新しいランの状態テーブルは1件が期待されます。実際の値 %d", len(states))
		}
		if states[0].Phase != PhaseIdle {
			t.Errorf("前のランの遅延完了が新しいランに混入しています: %v", states[0].Phase)
		}
	})
}

// --- 遷移メソッド ---

func TestPhaseTransitions(t *testing.T) {
	ctx := context.Background()

	e := newTestExtractor(t, &fakeGateway{garments: testGarments(1)}, &fakeSynthesizer{})
	if _, err := e.Detect(ctx, testSource()); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	e.mu.RLock()
	runID := e.run
	e.mu.RUnlock()

	t.Run("Processing中の二重開始を拒否すること", func(t *testing.T) {
		if !e.beginProcessing(runID, 0) {
			t.Fatal("最初の遷移は成功すべきです")
		}
		if e.beginProcessing(runID, 0) {
			t.Error("Processing 中のアイテムに対する二重開始は拒否されるべきです")
		}
	})

	t.Run("無効化済みランからの遷移を拒否すること", func(t *testing.T) {
		if e.markSucceeded(runID-1, 0, &imagedom.ImageResponse{Data: []byte{1}}) {
			t.Error("古いランからの markSucceeded は拒否されるべきです")
		}
		if e.markFailed(runID-1, 0) {
			t.Error("古いランからの markFailed は拒否されるべきです")
		}
		if got := e.States()[0].Phase; got != PhaseProcessing {
			t.Errorf("拒否された遷移が状態を変更しています: %v", got)
		}
	})

	t.Run("Succeededへの遷移で画像が紐づくこと", func(t *testing.T) {
		img := &imagedom.ImageResponse{Data: []byte{1, 2, 3}, MimeType: "image/png"}
		if !e.markSucceeded(runID, 0, img) {
			t.Fatal("現行ランからの markSucceeded は成功すべきです")
		}
		state := e.States()[0]
		if state.Phase != PhaseSucceeded || state.Image == nil {
			t.Errorf("期待値 Succeeded+画像あり, 実際の値 %v", state.Phase)
		}
	})
}
