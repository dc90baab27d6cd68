package mailer

import (
	"strings"
	"testing"

	"notevi/internal/config"
)

func TestRenderEmailRegister(t *testing.T) {
	cfg := config.Config{SMTPUser: "noreply@notevi.dev", AppURL: "https://notevi.dev"}
	msg, err := RenderEmail(EmailTask{
		Kind:      TaskRegister,
		Username:  "alice",
		Recipient: "alice@example.com",
	}, cfg)
	if err != nil {
		t.Fatalf("RenderEmail: %v", err)
	}

	text := string(msg)
	for _, want := range []string{
		"From: noreply@notevi.dev",
		"To: alice@example.com",
		"Subject: Welcome to NoteVi",
		"Hello alice",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}

func TestRenderEmailVerify(t *testing.T) {
	cfg := config.Config{SMTPUser: "noreply@notevi.dev", AppURL: "https://notevi.dev/"}
	msg, err := RenderEmail(EmailTask{
		Kind:      TaskVerify,
		Username:  "bob",
		Recipient: "bob@example.com",
		Token:     "tok-123",
	}, cfg)
	if err != nil {
		t.Fatalf("RenderEmail: %v", err)
	}

	text := string(msg)
	if !strings.Contains(text, "https://notevi.dev/api/auth/accept?token=tok-123") {
		t.Errorf("verification link missing or malformed:\n%s", text)
	}
	if !strings.Contains(text, "Subject: NoteVi email verification") {
		t.Error("subject missing")
	}
}

func TestRenderEmailVerifyRequiresToken(t *testing.T) {
	if _, err := RenderEmail(EmailTask{Kind: TaskVerify, Username: "bob"}, config.Config{}); err == nil {
		t.Fatal("expected error for verify task without token")
	}
}

func TestRenderEmailUnknownKind(t *testing.T) {
	if _, err := RenderEmail(EmailTask{Kind: "bogus"}, config.Config{}); err == nil {
		t.Fatal("expected error for unknown task kind")
	}
}

func TestRenderEmailEscapesUsername(t *testing.T) {
	msg, err := RenderEmail(EmailTask{
		Kind:      TaskRegister,
		Username:  "<script>alert(1)</script>",
		Recipient: "x@example.com",
	}, config.Config{})
	if err != nil {
		t.Fatalf("RenderEmail: %v", err)
	}
	if strings.Contains(string(msg), "<script>") {
		t.Fatal("username was not HTML-escaped")
	}
}
