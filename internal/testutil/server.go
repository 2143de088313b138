package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/vayez/internal/httpserver"
	"github.com/Skotchmaster/vayez/internal/middleware/auth"
	"github.com/Skotchmaster/vayez/internal/repo"
	"github.com/Skotchmaster/vayez/internal/service"
	"github.com/Skotchmaster/vayez/pkg/tokens"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// Mailbox records the tokens the service would have mailed.
type Mailbox struct {
	mu         sync.Mutex
	activation map[string]string
	reset      map[string]string
	// Wait, when set, blocks until queued sends have been delivered.
	Wait func()
}

func NewMailbox() *Mailbox {
	return &Mailbox{activation: map[string]string{}, reset: map[string]string{}}
}

func (m *Mailbox) SendActivation(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activation[to] = token
	return nil
}

func (m *Mailbox) SendPasswordReset(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[to] = token
	return nil
}

func (m *Mailbox) flush() {
	if m.Wait != nil {
		m.Wait()
	}
}

func (m *Mailbox) ActivationToken(to string) string {
	m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activation[to]
}

func (m *Mailbox) ResetToken(to string) string {
	m.flush()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset[to]
}

type Server struct {
	Echo *echo.Echo
	Svc  *service.AuthService
	Mail *Mailbox
}

const AdminPassword = "adminpass1"

// NewServer wires the full HTTP stack over a fresh database and creates the
// admin account admin@example.com.
func NewServer(t *testing.T) *Server {
	t.Helper()

	issuer := &tokens.Issuer{
		Secret:        []byte("test-secret"),
		AccessTTL:     time.Hour,
		ActivationTTL: time.Hour,
	}
	mail := NewMailbox()
	svc := &service.AuthService{
		Repo:       &repo.GormRepo{DB: NewDB(t)},
		Tokens:     issuer,
		Notifier:   mail,
		BcryptCost: bcrypt.MinCost,
	}
	mail.Wait = svc.WaitNotifications

	if _, err := svc.BootstrapAdmin(context.Background(), "admin@example.com", "Admin", "Root", AdminPassword); err != nil {
		t.Fatalf("failed to bootstrap admin: %v", err)
	}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		Guard:       auth.NewGuard(issuer),
	})

	return &Server{Echo: e, Svc: svc, Mail: mail}
}
