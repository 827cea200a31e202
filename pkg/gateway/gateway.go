// Package gateway は、リモート推論サービス（Gemini API）との境界を提供します。
// 本キットから見た Gateway は不透明で、リクエストを受け取りテキストまたは
// 画像バイト列を返すか、失敗するだけの存在です。
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/go-outfit-kit/pkg/domain"

	"google.golang.org/genai"
)

const defaultTemperature = float32(0.2)

// VisionGateway は、画像付きリクエストを発行する契約です。
type VisionGateway interface {
	// Detect は、ソース画像から衣料アイテムの順序付きリストを取得します。
	Detect(ctx context.Context, prompt string, img domain.SourceImage) (domain.Garments, error)
	// Analyze は、ソース画像の分析結果を単一のテキストとして取得します。
	Analyze(ctx context.Context, prompt string, img domain.SourceImage) (string, error)
}

// Client は Gemini API を用いた VisionGateway の実装です。
type Client struct {
	client *genai.Client
	model  string
	schema *genai.Schema
}

// NewClient は Gemini クライアントを初期化します。APIキーが空の場合は
// リクエストを発行せず、回復可能な資格情報エラーを返します。
func NewClient(ctx context.Context, apiKey, model string, detectionSchema *genai.Schema) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrCredentialRequired
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini クライアントの初期化に失敗しました: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
		schema: detectionSchema,
	}, nil
}

// Detect は構造化出力スキーマ付きの単一リクエストを発行し、
// 検出された衣料アイテムを Gateway が返した順序のまま返します。
func (c *Client) Detect(ctx context.Context, prompt string, img domain.SourceImage) (domain.Garments, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(defaultTemperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   c.schema,
	}

	text, err := c.generateText(ctx, prompt, img, config)
	if err != nil {
		return nil, err
	}

	garments, err := domain.DecodeGarments(text)
	if err != nil {
		return nil, err
	}

	return garments, nil
}

// Analyze は テキスト応答を返す単一のマルチモーダルリクエストを発行します。
func (c *Client) Analyze(ctx context.Context, prompt string, img domain.SourceImage) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(defaultTemperature),
	}
	return c.generateText(ctx, prompt, img, config)
}

func (c *Client) generateText(ctx context.Context, prompt string, img domain.SourceImage, config *genai.GenerateContentConfig) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(img.Data, img.MimeType),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", classify(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
