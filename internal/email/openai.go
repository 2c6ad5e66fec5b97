package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAIGeneratorConfig はOpenAIGeneratorの設定。
type OpenAIGeneratorConfig struct {
	APIKey  string
	Model   string
	BaseURL string // 空文字の場合は本番エンドポイント
	Timeout time.Duration
}

// OpenAIGenerator はOpenAIのchat completionsでメール下書きを生成する。
// 外部呼び出しが失敗した場合は必ずテンプレート生成へ切り替えるため、
// 呼び出し側にエラーが伝播することはない。
type OpenAIGenerator struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	fallback *TemplateGenerator
	logger   *slog.Logger
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator はOpenAIGeneratorを生成する。
func NewOpenAIGenerator(cfg OpenAIGeneratorConfig, logger *slog.Logger) *OpenAIGenerator {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &OpenAIGenerator{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		fallback: NewTemplateGenerator(),
		logger:   logger,
	}
}

// CredentialUsable はAPIキーが形式上有効かどうかを返す。
// 形式チェックに通らないキーではOpenAIGeneratorを構成しない。
func CredentialUsable(apiKey string) bool {
	return strings.HasPrefix(apiKey, "sk-")
}

// NewGenerator は設定に応じて生成器を選択する。
// 有効なAPIキーがなければテンプレート生成器を返し、
// その場合は外部呼び出しの経路自体が存在しない。
func NewGenerator(cfg OpenAIGeneratorConfig, logger *slog.Logger) Generator {
	if !CredentialUsable(cfg.APIKey) {
		return NewTemplateGenerator()
	}
	return NewOpenAIGenerator(cfg, logger)
}

// Status はOpenAI生成が利用可能であることを返す。
func (g *OpenAIGenerator) Status() (bool, string) {
	return true, "AI生成を利用できます。"
}

// Generate はOpenAIで下書きを生成する。失敗時はテンプレートに切り替える。
func (g *OpenAIGenerator) Generate(ctx context.Context, in Input) *Draft {
	raw, err := g.complete(ctx, in)
	if err != nil {
		g.logger.Warn("AI生成に失敗したためテンプレートに切り替えます",
			slog.String("type", string(in.Type)),
			slog.String("error", err.Error()),
		)
		draft := g.fallback.render(in)
		draft.Note = "AI生成が利用できなかったため、テンプレートから生成しました。"
		return draft
	}

	subject, body := parseCompletion(raw)
	if subject == "" {
		subject = fmt.Sprintf("Application for %s at %s", in.Role, in.CompanyName)
	}
	if body == "" {
		body = raw
	}

	return &Draft{
		Subject:     subject,
		Body:        body,
		GeneratedBy: GeneratedByAI,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *OpenAIGenerator) complete(ctx context.Context, in Input) (string, error) {
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(in)},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("リクエストのエンコードに失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenAI APIの呼び出しに失敗: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI APIがステータス%dを返却", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("レスポンスのデコードに失敗: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("レスポンスにchoicesが含まれていない")
	}

	content := strings.TrimSpace(cr.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("レスポンスの本文が空")
	}
	return content, nil
}

const systemPrompt = `You are a professional career assistant. Write a short, polite outreach email for a job seeker.

Respond in exactly this format:

Subject: <subject line>

<email body>

Keep the body under 200 words. Plain text only, no markdown.`

func userPrompt(in Input) string {
	var sb strings.Builder
	switch in.Type {
	case DraftTypeFollowup:
		sb.WriteString("Write a follow-up email checking on the status of a job application.\n")
	case DraftTypeReferral:
		sb.WriteString("Write an email asking a contact for a referral to a job opening.\n")
		if in.RecipientName != "" {
			fmt.Fprintf(&sb, "The recipient's name is %s.\n", in.RecipientName)
		}
	default:
		sb.WriteString("Write a cold outreach email expressing interest in a job opening.\n")
	}
	fmt.Fprintf(&sb, "Company: %s\nRole: %s\nSender's name: %s\n", in.CompanyName, in.Role, in.YourName)
	return sb.String()
}

// parseCompletion は応答から"Subject:"行と本文を取り出す。
// 契約どおりでない応答でも可能な範囲で解釈する。
func parseCompletion(raw string) (subject, body string) {
	lines := strings.Split(raw, "\n")
	bodyStart := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= len("subject:") && strings.EqualFold(trimmed[:len("subject:")], "subject:") {
			subject = strings.TrimSpace(trimmed[len("subject:"):])
			bodyStart = i + 1
			break
		}
	}

	// 件名直後の空行を読み飛ばす
	for bodyStart < len(lines) && strings.TrimSpace(lines[bodyStart]) == "" {
		bodyStart++
	}

	body = strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	return subject, body
}
