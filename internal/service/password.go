package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/vayez/internal/notify"
	"github.com/Skotchmaster/vayez/internal/repo"
	pkg_hash "github.com/Skotchmaster/vayez/pkg/hash"
	"github.com/Skotchmaster/vayez/pkg/logging"
	"github.com/Skotchmaster/vayez/pkg/tokens"
	"github.com/google/uuid"
)

func (s *AuthService) ChangePassword(ctx context.Context, accountID uuid.UUID, oldPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "account_id", accountID)

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	account, err := s.Repo.FindAccountByID(ctx, accountID)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("change_password_error", "status", 404, "reason", "account not found")
			return notFound(MsgAccountNotFound)
		}
		l.Error("change_password_error", "status", 500, "error", err)
		return internal(err)
	}
	if account.PasswordHash == nil || !pkg_hash.CheckPassword(*account.PasswordHash, oldPassword) {
		l.Warn("change_password_error", "status", 401, "reason", "old password mismatch")
		return unauthorized(MsgWrongPassword)
	}

	pwHash, err := pkg_hash.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		l.Error("change_password_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return internal(err)
	}
	if err := s.Repo.UpdateAccountPassword(ctx, account.ID, pwHash); err != nil {
		if repo.IsNotFound(err) {
			return notFound(MsgAccountNotFound)
		}
		l.Error("change_password_error", "status", 500, "error", err)
		return internal(err)
	}

	l.Info("change_password_success")
	return nil
}

// ForgotPassword issues a reset token when the email belongs to an account.
// The returned message never depends on the outcome.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) string {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	account, err := s.Repo.FindAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !repo.IsNotFound(err) {
			l.Error("forgot_password_error", "error", err)
		}
		return MsgForgotPassword
	}
	if !account.IsActive {
		l.Warn("forgot_password_skipped", "reason", "account not active", "account_id", account.ID)
		return MsgForgotPassword
	}

	raw, err := tokens.NewOpaque()
	if err != nil {
		l.Error("forgot_password_error", "reason", "cannot generate reset token", "error", err)
		return MsgForgotPassword
	}
	expiresAt := s.now().Add(s.resetTTL())
	if err := s.resets().SaveReset(ctx, account.ID, tokens.HashOpaque(raw), expiresAt); err != nil {
		l.Error("forgot_password_error", "reason", "cannot store reset token", "error", err)
		return MsgForgotPassword
	}

	s.notify(ctx, notify.KindPasswordReset, func(nctx context.Context) error {
		return s.Notifier.SendPasswordReset(nctx, account.Email, raw)
	})

	l.Info("forgot_password_issued", "account_id", account.ID)
	return MsgForgotPassword
}

// ResetPassword consumes the reset token and sets the new password. A token
// works at most once.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if token == "" {
		return unauthorized(MsgInvalidToken)
	}

	accountID, err := s.resets().ConsumeReset(ctx, tokens.HashOpaque(token), s.now())
	if err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			l.Warn("reset_password_error", "status", 401, "reason", "reset token not found or expired")
			return unauthorized(MsgInvalidToken)
		}
		l.Error("reset_password_error", "status", 500, "error", err)
		return internal(err)
	}

	account, err := s.Repo.FindAccountByID(ctx, accountID)
	if err != nil {
		l.Error("reset_password_error", "status", 500, "reason", "reset token owner missing", "account_id", accountID, "error", err)
		return internal(err)
	}
	if !account.IsActive {
		l.Warn("reset_password_error", "status", 401, "reason", "account not active", "account_id", accountID)
		return unauthorized(MsgInvalidToken)
	}

	pwHash, err := pkg_hash.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		l.Error("reset_password_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return internal(err)
	}
	if err := s.Repo.ResetAccountPassword(ctx, accountID, pwHash); err != nil {
		l.Error("reset_password_error", "status", 500, "account_id", accountID, "error", err)
		return internal(err)
	}

	l.Info("reset_password_success", "account_id", accountID)
	return nil
}
