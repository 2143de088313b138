package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/Skotchmaster/vayez/internal/models"
	"github.com/Skotchmaster/vayez/internal/notify"
	"github.com/Skotchmaster/vayez/internal/repo"
	pkg_hash "github.com/Skotchmaster/vayez/pkg/hash"
	"github.com/Skotchmaster/vayez/pkg/logging"
	"github.com/Skotchmaster/vayez/pkg/tokens"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL     = 24 * time.Hour
	DefaultActivationTTL = 24 * time.Hour
	DefaultSessionTTL    = 72 * time.Hour
	DefaultResetTTL      = time.Hour

	minPasswordLen = 8
	notifyTimeout  = 5 * time.Second
)

type ResetStore interface {
	SaveReset(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeReset(ctx context.Context, tokenHash string, now time.Time) (uuid.UUID, error)
}

type AuthService struct {
	Repo       *repo.GormRepo
	Resets     ResetStore
	Tokens     *tokens.Issuer
	Notifier   notify.Notifier
	BcryptCost int
	SessionTTL time.Duration
	ResetTTL   time.Duration
	Now        func() time.Time

	pending sync.WaitGroup
}

type CreateAccountInput struct {
	FirstName string
	LastName  string
	Email     string
	RoleID    string
}

type CreateAccountResult struct {
	Account *models.Account
	Token   string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	AccountID    uuid.UUID
	Role         string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) resets() ResetStore {
	if s.Resets != nil {
		return s.Resets
	}
	return s.Repo
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

func (s *AuthService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return validation("password must be at least 8 characters long")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return validation("password must contain at least one number")
	}
	return nil
}

// notify hands send to a goroutine detached from the request's cancellation.
// The caller never waits for it and a failure is only logged.
func (s *AuthService) notify(ctx context.Context, kind string, send func(context.Context) error) {
	if s.Notifier == nil {
		return
	}
	l := logging.FromContext(ctx)
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := send(nctx); err != nil {
			l.Error("notify_failed", "kind", kind, "error", err)
		}
	}()
}

// WaitNotifications blocks until every notification started so far has
// finished. Call it before closing the notifier.
func (s *AuthService) WaitNotifications() {
	s.pending.Wait()
}

func (s *AuthService) CreateAccount(ctx context.Context, in CreateAccountInput) (*CreateAccountResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.create_account")

	email := normalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if email == "" || !strings.Contains(email, "@") {
		return nil, validation("invalid email")
	}
	if firstName == "" || lastName == "" {
		return nil, validation("first and last name are required")
	}

	if _, err := s.Repo.FindAccountByEmail(ctx, email); err == nil {
		l.Warn("create_account_error", "status", 409, "reason", "email in use")
		return nil, conflict(MsgEmailInUse)
	} else if !repo.IsNotFound(err) {
		l.Error("create_account_error", "status", 500, "reason", "cannot look up email", "error", err)
		return nil, internal(err)
	}

	roleID, err := uuid.Parse(strings.TrimSpace(in.RoleID))
	if err != nil {
		return nil, validation(MsgUnknownRole)
	}
	role, err := s.Repo.FindRoleByID(ctx, roleID)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("create_account_error", "status", 400, "reason", "unknown role", "role_id", roleID)
			return nil, validation(MsgUnknownRole)
		}
		l.Error("create_account_error", "status", 500, "reason", "cannot look up role", "error", err)
		return nil, internal(err)
	}

	account := &models.Account{
		ID:        uuid.New(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		RoleID:    role.ID,
		IsActive:  false,
	}
	if err := s.Repo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			l.Warn("create_account_error", "status", 409, "reason", "email in use")
			return nil, conflict(MsgEmailInUse)
		}
		l.Error("create_account_error", "status", 500, "reason", "cannot insert account", "error", err)
		return nil, internal(err)
	}
	account.Role = *role

	token, err := s.Tokens.SignActivation(account.ID.String())
	if err != nil {
		l.Error("create_account_error", "status", 500, "reason", "cannot sign activation token", "error", err)
		return nil, internal(err)
	}

	s.notify(ctx, notify.KindActivation, func(nctx context.Context) error {
		return s.Notifier.SendActivation(nctx, account.Email, token)
	})

	l.Info("create_account_success", "account_id", account.ID)
	return &CreateAccountResult{Account: account, Token: token}, nil
}

func (s *AuthService) ActivateAccount(ctx context.Context, token, password, confirmPassword string) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "auth.activate")

	if password != confirmPassword {
		return nil, validation(MsgPasswordMismatch)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	claims, err := s.Tokens.ParseActivation(token)
	if err != nil {
		l.Warn("activate_error", "status", 401, "reason", "token verification failed", "error", err)
		return nil, unauthorized(MsgInvalidToken)
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, unauthorized(MsgInvalidToken)
	}

	account, err := s.Repo.FindAccountByID(ctx, accountID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, unauthorized(MsgInvalidToken)
		}
		l.Error("activate_error", "status", 500, "error", err)
		return nil, internal(err)
	}
	if account.IsActive {
		l.Warn("activate_error", "status", 401, "reason", "account already active", "account_id", account.ID)
		return nil, unauthorized(MsgInvalidToken)
	}

	pwHash, err := pkg_hash.HashPassword(password, s.BcryptCost)
	if err != nil {
		l.Error("activate_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, internal(err)
	}
	if err := s.Repo.ActivateAccount(ctx, account.ID, pwHash); err != nil {
		if repo.IsNotFound(err) {
			return nil, unauthorized(MsgInvalidToken)
		}
		l.Error("activate_error", "status", 500, "error", err)
		return nil, internal(err)
	}

	account.IsActive = true
	account.PasswordHash = &pwHash
	l.Info("activate_success", "account_id", account.ID)
	return account, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	account, err := s.Repo.FindAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
			return nil, unauthorized(MsgInvalidCredentials)
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, internal(err)
	}
	if !account.IsActive || account.PasswordHash == nil || !pkg_hash.CheckPassword(*account.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
		return nil, unauthorized(MsgInvalidCredentials)
	}

	return s.IssueTokens(ctx, account)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return nil, unauthorized(MsgInvalidToken)
	}
	session, err := s.Repo.FindLiveSession(ctx, tokens.HashOpaque(refreshToken), s.now())
	if err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "refresh token not found or expired")
			return nil, unauthorized(MsgInvalidToken)
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, internal(err)
	}

	account, err := s.Repo.FindAccountByID(ctx, session.AccountID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, unauthorized(MsgInvalidToken)
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, internal(err)
	}

	return s.IssueTokens(ctx, account)
}

// IssueTokens signs an access token and replaces the account's refresh
// token. Any refresh token issued earlier for the account stops working.
func (s *AuthService) IssueTokens(ctx context.Context, account *models.Account) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.issue_tokens", "account_id", account.ID)

	accessToken, accessExp, err := s.Tokens.SignAccess(account.ID.String(), account.Role.Name)
	if err != nil {
		l.Error("issue_tokens_failed", "status", 500, "reason", "cannot sign access token", "error", err)
		return nil, internal(err)
	}

	refreshToken, err := tokens.NewOpaque()
	if err != nil {
		l.Error("issue_tokens_failed", "status", 500, "reason", "cannot generate refresh token", "error", err)
		return nil, internal(err)
	}
	refreshExp := s.now().Add(s.sessionTTL())

	if err := s.Repo.UpsertSession(ctx, account.ID, tokens.HashOpaque(refreshToken), refreshExp); err != nil {
		l.Error("issue_tokens_failed", "status", 500, "reason", "cannot store refresh token", "error", err)
		return nil, internal(err)
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		AccountID:    account.ID,
		Role:         account.Role.Name,
	}, nil
}

func (s *AuthService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.Repo.ListRoles(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_roles_failed", "error", err)
		return nil, internal(err)
	}
	return roles, nil
}
