// =============================================================================
// email.go - 取得失敗レポートのメール送信
// =============================================================================
//
// 更新実行の後に呼ばれ、取得に失敗したソースがあればGmail SMTPでレポートを送ります。
// 失敗が0件の実行ではメールを送りません。
//
// =============================================================================
// 【必要な環境変数】
// =============================================================================
//
//   EMAIL_FROM     - 送信元メールアドレス（Gmail）
//   EMAIL_PASSWORD - Gmailアプリパスワード（通常のパスワードではない）
//   EMAIL_TO       - 送信先メールアドレス（カンマ区切りで複数可）
//
// =============================================================================
// 【送信方式】
// =============================================================================
//
// - Gmail SMTP（ポート587, STARTTLS）にPLAIN認証で送信
// - 失敗時は指数バックオフ（2秒→4秒）で最大3回まで試す
// - メッセージはRFC 5322形式のプレーンテキスト
//
// =============================================================================
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"sharehouse-times/internal/pipeline"
)

// EmailConfig はメール送信の設定を保持する
type EmailConfig struct {
	From     string   // 送信元メールアドレス
	Password string   // Gmailアプリパスワード
	To       []string // 送信先メールアドレス（複数可）
	SMTPHost string   // SMTPサーバーホスト（"smtp.gmail.com"）
	SMTPPort string   // SMTPポート（"587"）
}

// sendMailFunc は smtp.SendMail と同じシグネチャ（テストで差し替える）
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier は取得失敗をメールで報告する
type EmailNotifier struct {
	config     EmailConfig
	sendMail   sendMailFunc
	sleep      func(time.Duration)
	maxRetries int
	logger     *slog.Logger
}

// NewEmailNotifier は新しいメール通知を作成する
func NewEmailNotifier(from, password string, to []string, logger *slog.Logger) (*EmailNotifier, error) {
	if from == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required")
	}
	if password == "" {
		return nil, fmt.Errorf("EMAIL_PASSWORD is required (use Gmail App Password)")
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("EMAIL_TO is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailNotifier{
		config: EmailConfig{
			From:     from,
			Password: password,
			To:       to,
			SMTPHost: "smtp.gmail.com",
			SMTPPort: "587",
		},
		sendMail:   smtp.SendMail,
		sleep:      time.Sleep,
		maxRetries: 3,
		logger:     logger,
	}, nil
}

// Name は Hook の名前
func (n *EmailNotifier) Name() string { return "email" }

// AfterRun は失敗したソースがあればレポートを送る
func (n *EmailNotifier) AfterRun(ctx context.Context, res *pipeline.RunResult) error {
	if res == nil || len(res.SourceErrors) == 0 {
		return nil
	}

	subject := fmt.Sprintf("[SHARE HOUSE TIMES] ニュース取得エラー %d件 - %s",
		len(res.SourceErrors),
		res.StartedAt.Format("2006-01-02 15:04"))
	msg := n.buildMessage(subject, n.reportBody(res))
	return n.sendWithRetry(ctx, msg)
}

// reportBody はレポート本文を作る
//
//	SHARE HOUSE TIMES News Update Report
//	Started: 2026-10-15 09:00:00
//
//	Published: 12 items (seed 8 / fetched 4)
//	Failed sources: 2
//
//	[1] google-news-akiya
//	    GET https://...: unexpected status 503
func (n *EmailNotifier) reportBody(res *pipeline.RunResult) string {
	var sb strings.Builder

	sb.WriteString("SHARE HOUSE TIMES News Update Report\n")
	sb.WriteString(fmt.Sprintf("Started: %s\n\n", res.StartedAt.Format("2006-01-02 15:04:05")))
	if res.Snapshot != nil {
		sb.WriteString(fmt.Sprintf("Published: %d items (seed %d / fetched %d)\n",
			res.Snapshot.UpdateCount, res.Seeded, len(res.Fetched)))
	}
	sb.WriteString(fmt.Sprintf("Failed sources: %d\n\n", len(res.SourceErrors)))

	for i, se := range res.SourceErrors {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, se.Source))
		sb.WriteString(fmt.Sprintf("    %v\n\n", se.Err))
	}
	return sb.String()
}

// buildMessage はRFC 5322形式のメッセージを組み立てる
func (n *EmailNotifier) buildMessage(subject, body string) []byte {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", n.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(n.config.To, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", mimeSubject(subject)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return []byte(msg.String())
}

// mimeSubject は非ASCIIの件名をRFC 2047形式にする
func mimeSubject(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.QEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// sendWithRetry は指数バックオフでリトライしながら送信する
func (n *EmailNotifier) sendWithRetry(ctx context.Context, msg []byte) error {
	var lastErr error

	for i := 0; i < n.maxRetries; i++ {
		if i > 0 {
			wait := time.Duration(math.Pow(2, float64(i))) * time.Second
			n.logger.Info("retrying email send", slog.Duration("wait", wait))
			n.sleep(wait)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := n.send(msg)
		if err == nil {
			n.logger.Info("failure report sent", slog.Int("recipients", len(n.config.To)))
			return nil
		}
		lastErr = err
		n.logger.Warn("email send failed",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", n.maxRetries),
			slog.Any("err", err),
		)
	}

	return fmt.Errorf("failed to send email after %d retries: %w", n.maxRetries, lastErr)
}

func (n *EmailNotifier) send(msg []byte) error {
	auth := smtp.PlainAuth("", n.config.From, n.config.Password, n.config.SMTPHost)
	addr := n.config.SMTPHost + ":" + n.config.SMTPPort

	if err := n.sendMail(addr, auth, n.config.From, n.config.To, msg); err != nil {
		return fmt.Errorf("SMTP send failed: %w (check EMAIL_PASSWORD is a Gmail App Password)", err)
	}
	return nil
}
