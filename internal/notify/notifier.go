// Package notify delivers the activation and password reset emails. Delivery
// is fire-and-forget from the caller's point of view: the auth service logs a
// failed send and carries on.
package notify

import (
	"context"
	"net/url"
	"strings"
	"time"
)

const (
	KindActivation    = "account_activation"
	KindPasswordReset = "password_reset"
)

type Notifier interface {
	SendActivation(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

type MailEvent struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Link    string    `json:"link"`
	Token   string    `json:"token"`
	SentAt  time.Time `json:"sent_at"`
}

// Links builds the URLs embedded in outgoing mail.
type Links struct {
	BaseURL string
}

func (l Links) build(path, token string) string {
	base := strings.TrimRight(l.BaseURL, "/")
	if base == "" {
		base = "http://localhost"
	}
	return base + path + "?token=" + url.QueryEscape(token)
}

func (l Links) Activation(token string) string {
	return l.build("/activate", token)
}

func (l Links) PasswordReset(token string) string {
	return l.build("/reset-password", token)
}

func newActivationEvent(l Links, to, token string) MailEvent {
	return MailEvent{
		Type:    KindActivation,
		To:      to,
		Subject: "Account Activation",
		Link:    l.Activation(token),
		Token:   token,
		SentAt:  time.Now().UTC(),
	}
}

func newPasswordResetEvent(l Links, to, token string) MailEvent {
	return MailEvent{
		Type:    KindPasswordReset,
		To:      to,
		Subject: "Password Reset Request",
		Link:    l.PasswordReset(token),
		Token:   token,
		SentAt:  time.Now().UTC(),
	}
}
