// mailer 封装两家 HTTP API 邮件服务（Brevo 优先，Resend 兜底）。
// 两个 key 都没配时退化为 dry-run：只打日志不发信，提醒任务照常跑。
package mailer

import (
	"context"
	"fmt"
	"log"
	"os"
)

type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// TransportError 发送失败，带上服务商返回的状态码和响应体方便排查
type TransportError struct {
	Provider string
	Status   int
	Body     string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed (%d): %s", e.Provider, e.Status, e.Body)
}

// NewFromEnv 根据环境变量挑服务商
func NewFromEnv(from string) Mailer {
	if key := os.Getenv("BREVO_API_KEY"); key != "" {
		return NewBrevo(key, from)
	}
	if key := os.Getenv("RESEND_API_KEY"); key != "" {
		return NewResend(key, from)
	}
	return &DryRun{}
}

// DryRun 没有凭据时的日志替身
type DryRun struct{}

func (d *DryRun) Send(_ context.Context, msg Message) error {
	log.Printf("[DRY-RUN] Would send to %v: %s\n%s", msg.To, msg.Subject, msg.Text)
	return nil
}
