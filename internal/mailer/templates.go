package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"notevi/internal/config"
)

var registerTemplate = template.Must(template.New("register").Parse(
	`<div><h1>Hello {{.Username}}, thank you for registering at NoteVi.</h1>` +
		`<p>You can now create and share notes and summaries.</p></div>`))

var verifyTemplate = template.Must(template.New("verify").Parse(
	`<div><h1>Hello {{.Username}}, you requested verification at NoteVi.</h1>` +
		`<p>Confirm your email address by following the link.</p>` +
		`<a href="{{.AcceptURL}}">Confirm registration</a></div>`))

// RenderEmail 根据任务类型渲染完整的 MIME 邮件(头部 + HTML 正文)。
func RenderEmail(task EmailTask, cfg config.Config) ([]byte, error) {
	var subject string
	var body bytes.Buffer

	switch task.Kind {
	case TaskRegister:
		subject = "Welcome to NoteVi"
		if err := registerTemplate.Execute(&body, map[string]string{
			"Username": task.Username,
		}); err != nil {
			return nil, err
		}
	case TaskVerify:
		if task.Token == "" {
			return nil, fmt.Errorf("verify task without token")
		}
		subject = "NoteVi email verification"
		acceptURL := strings.TrimRight(cfg.AppURL, "/") + "/api/auth/accept?token=" + task.Token
		if err := verifyTemplate.Execute(&body, map[string]string{
			"Username":  task.Username,
			"AcceptURL": acceptURL,
		}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown email task kind: %s", task.Kind)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", cfg.SMTPUser)
	fmt.Fprintf(&msg, "To: %s\r\n", task.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
