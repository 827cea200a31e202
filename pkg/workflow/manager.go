package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-outfit-kit/pkg/config"
	"github.com/shouni/go-outfit-kit/pkg/gateway"
	"github.com/shouni/go-outfit-kit/pkg/journal"
	"github.com/shouni/go-outfit-kit/pkg/prompts"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"
)

// ManagerArgs は Manager の構築に必要な依存関係です。
type ManagerArgs struct {
	Config     config.Config
	HTTPClient httpkit.ClientInterface
	Reader     remoteio.InputReader
	Writer     remoteio.OutputWriter

	// 省略時は既定のビルダーが使われます
	ScriptPrompt  prompts.ScriptPrompt
	GarmentPrompt prompts.GarmentPrompt
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg           config.Config
	httpClient    httpkit.ClientInterface
	reader        remoteio.InputReader
	writer        remoteio.OutputWriter
	aiClient      gemini.GenerativeModel
	vision        gateway.VisionGateway
	scriptPrompt  prompts.ScriptPrompt
	garmentPrompt prompts.GarmentPrompt
	journal       *journal.Journal
}

// New は、設定と依存関係を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	if args.HTTPClient == nil {
		return nil, fmt.Errorf("httpClient は必須です")
	}
	if args.Reader == nil {
		return nil, fmt.Errorf("InputReader は必須です")
	}
	if args.Writer == nil {
		return nil, fmt.Errorf("OutputWriter は必須です")
	}

	aiClient, err := initializeAIClient(ctx, args.Config.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	vision, err := gateway.NewClient(ctx, args.Config.GeminiAPIKey, args.Config.GeminiModel, prompts.GarmentListSchema())
	if err != nil {
		return nil, fmt.Errorf("vision gateway の初期化に失敗しました: %w", err)
	}

	sPrompt, err := initializeScriptPrompt(args.ScriptPrompt)
	if err != nil {
		return nil, err
	}

	gPrompt := args.GarmentPrompt
	if gPrompt == nil {
		gPrompt = prompts.NewGarmentPromptBuilder(args.Config.StyleSuffix)
	}

	return &Manager{
		cfg:           args.Config,
		httpClient:    args.HTTPClient,
		reader:        args.Reader,
		writer:        args.Writer,
		aiClient:      aiClient,
		vision:        vision,
		scriptPrompt:  sPrompt,
		garmentPrompt: gPrompt,
		journal:       journal.New(),
	}, nil
}

// Journal は、この Manager が構築するランナー群が共有するセッションジャーナルを返します。
func (m *Manager) Journal() *journal.Journal {
	return m.journal
}

// initializeAIClient は gemini クライアントを初期化します。
func initializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// initializeScriptPrompt は ScriptPrompt ビルダーを初期化します。
// 引数として既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializeScriptPrompt(scriptPrompt prompts.ScriptPrompt) (prompts.ScriptPrompt, error) {
	if scriptPrompt != nil {
		return scriptPrompt, nil
	}

	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
	}

	return pb, nil
}
