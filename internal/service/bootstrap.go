package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/vayez/internal/models"
	"github.com/Skotchmaster/vayez/internal/repo"
	pkg_hash "github.com/Skotchmaster/vayez/pkg/hash"
	"github.com/Skotchmaster/vayez/pkg/logging"
	"github.com/google/uuid"
)

const AdminRole = "admin"

// BootstrapAdmin creates an already active account with the admin role. It
// is the only way to obtain the first admin, since create-user requires one.
func (s *AuthService) BootstrapAdmin(ctx context.Context, email, firstName, lastName, password string) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "auth.bootstrap_admin")

	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, validation("invalid email")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	role, err := s.Repo.FindRoleByName(ctx, AdminRole)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, validation(MsgUnknownRole)
		}
		return nil, internal(err)
	}

	pwHash, err := pkg_hash.HashPassword(password, s.BcryptCost)
	if err != nil {
		return nil, internal(err)
	}

	account := &models.Account{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		RoleID:       role.ID,
		IsActive:     true,
		PasswordHash: &pwHash,
	}
	if err := s.Repo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, conflict(MsgEmailInUse)
		}
		return nil, internal(err)
	}
	account.Role = *role

	l.Info("bootstrap_admin_success", "account_id", account.ID)
	return account, nil
}
