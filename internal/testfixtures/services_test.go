package testfixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/service-order-scheduler/internal/application"
)

func plainVerify(hash, password string) error {
	if hash != password {
		return errors.New("mismatch")
	}
	return nil
}

func TestServiceFactoryNewAuthService(t *testing.T) {
	factory := NewServiceFactory()
	svc := factory.NewAuthService(AuthServiceDeps{
		Admin:          application.AdminCredentials{Email: "admin@example.com", PasswordHash: "segredo"},
		PasswordVerify: plainVerify,
		SessionTTL:     time.Hour,
	})

	session, err := svc.AuthenticateAdmin(context.Background(), application.AdminLoginParams{Email: "Admin@Example.com ", Password: "segredo"})
	if err != nil {
		t.Fatalf("AuthenticateAdmin returned error: %v", err)
	}
	if session.ID != "token-1" || session.Token != "token-2" {
		t.Fatalf("unexpected identifiers: %q, %q", session.ID, session.Token)
	}
	if got := factory.Tokens.Last(); got != session.Token {
		t.Fatalf("expected last token %q, got %q", session.Token, got)
	}
	if !session.ExpiresAt.Equal(factory.Clock.Now().Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", session.ExpiresAt)
	}
}

func TestServiceFactoryNewBoardService(t *testing.T) {
	factory := NewServiceFactory(WithSnapshot(ScenarioSnapshot()))
	svc := factory.NewBoardService(nil, nil)

	column, err := svc.Day(context.Background(), application.DayParams{Principal: AdminPrincipal(), Day: 1})
	if err != nil {
		t.Fatalf("Day returned error: %v", err)
	}
	if len(column.Orders) != 2 {
		t.Fatalf("expected both orders on monday, got %d", len(column.Orders))
	}
	if !svc.Freshness().Loaded {
		t.Fatalf("expected the seeded snapshot to be loaded")
	}
}

func TestTokenSequence(t *testing.T) {
	gen := NewTokenSequence("")
	first := gen.Next()
	second := gen.Next()

	if first != "token-1" || second != "token-2" {
		t.Fatalf("unexpected tokens: %q, %q", first, second)
	}
	if issued := gen.Issued(); len(issued) != 2 {
		t.Fatalf("expected two issued tokens, got %v", issued)
	}

	var nilGen *TokenSequence
	if got := nilGen.NextFunc()(); got != "" {
		t.Fatalf("nil sequence should produce empty tokens, got %q", got)
	}
}
