package email

import (
	"context"
	"fmt"
	"strings"
)

// TemplateGenerator は固定テンプレートからメール下書きを生成する。
// 外部サービスに依存しないフォールバック実装。
type TemplateGenerator struct{}

// NewTemplateGenerator はTemplateGeneratorを生成する。
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

var _ Generator = (*TemplateGenerator)(nil)

// Generate は種別ごとの定型文にパラメータを埋め込んで返す。
func (g *TemplateGenerator) Generate(_ context.Context, in Input) *Draft {
	return g.render(in)
}

// Status はAI生成が構成されていないことを返す。
// 下書き生成自体はテンプレートで引き続き利用できる。
func (g *TemplateGenerator) Status() (bool, string) {
	return false, "AI生成は構成されていません。テンプレートによる下書き生成のみ利用できます。"
}

func (g *TemplateGenerator) render(in Input) *Draft {
	var subject, body string

	switch in.Type {
	case DraftTypeFollowup:
		subject = fmt.Sprintf("Following up on my %s application at %s", in.Role, in.CompanyName)
		body = fmt.Sprintf(followupBody, in.Role, in.CompanyName, in.YourName)
	case DraftTypeReferral:
		subject = fmt.Sprintf("Referral request: %s at %s", in.Role, in.CompanyName)
		body = fmt.Sprintf(referralBody, salutation(in.RecipientName), in.CompanyName, in.Role, in.YourName)
	default:
		// cold
		subject = fmt.Sprintf("Application for %s at %s", in.Role, in.CompanyName)
		body = fmt.Sprintf(coldBody, in.Role, in.CompanyName, in.YourName)
	}

	return &Draft{
		Subject:     subject,
		Body:        body,
		GeneratedBy: GeneratedByTemplate,
	}
}

// salutation は宛名が空の場合に汎用の書き出しへ置き換える。
func salutation(recipient string) string {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "Hello,"
	}
	return fmt.Sprintf("Hi %s,", recipient)
}

const coldBody = `Dear Hiring Manager,

I hope this message finds you well. I am writing to express my strong interest in the %s position at %s. I believe my background and skills would allow me to contribute meaningfully to your team.

I would welcome the opportunity to discuss how my experience aligns with your needs. Thank you for your time and consideration.

Best regards,
%s`

const followupBody = `Dear Hiring Manager,

I recently applied for the %s position at %s and wanted to follow up on the status of my application. I remain very enthusiastic about the opportunity and would be glad to provide any additional information that would be helpful.

Thank you again for considering my application. I look forward to hearing from you.

Best regards,
%s`

const referralBody = `%s

I hope you are doing well. I noticed that %s is hiring for a %s position, and I am very interested in applying. Given your experience at the company, I was wondering if you would be open to referring me or sharing any advice about the role.

I would really appreciate any help, and I am happy to send over my resume and more details. Thank you so much!

Best regards,
%s`
