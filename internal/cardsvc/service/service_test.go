package service_test

import (
	"testing"
	"time"

	"github.com/avvvet/bizcard-services/internal/cardsvc/auth"
	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"github.com/avvvet/bizcard-services/internal/cardsvc/service"
	"github.com/avvvet/bizcard-services/internal/cardsvc/store"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(eventType string, payload interface{}) {
	m.Called(eventType, payload)
}

// fixture wires both services over one in-memory store.
type fixture struct {
	mem      *store.Memory
	users    *service.UserService
	cards    *service.CardService
	tokens   *auth.TokenIssuer
	notifier *mockNotifier
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	f := &fixture{
		mem:      store.NewMemory(),
		tokens:   auth.NewTokenIssuer("test-secret", time.Hour),
		notifier: &mockNotifier{},
		clock:    &now,
	}
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return()

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	f.users = service.NewUserService(f.mem, f.mem, hasher, f.tokens).
		WithNotifier(f.notifier).
		WithClock(func() time.Time { return *f.clock })
	f.cards = service.NewCardService(f.mem, f.mem).WithNotifier(f.notifier)
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func registerInput(email string, business bool) models.RegisterInput {
	return models.RegisterInput{
		Name:     &models.NameInput{First: "Test", Last: "User"},
		Phone:    "0501234567",
		Email:    email,
		Password: "Passw0rd!",
		Address: &models.AddressInput{
			Country: "Israel", City: "Tel Aviv", Street: "Rothschild", HouseNumber: 5, Zip: 6688101,
		},
		IsBusiness: business,
	}
}

func cardInput(title string) models.CardInput {
	return models.CardInput{
		Title:       title,
		Subtitle:    "Subtitle",
		Description: "A card used in tests",
		Phone:       "0501234567",
		Email:       "card@example.com",
		Address: &models.AddressInput{
			Country: "Israel", City: "Haifa", Street: "Herzl", HouseNumber: 1,
		},
	}
}

func identity(u *models.User) auth.Identity {
	return auth.Identity{ID: u.ID.Hex(), IsBusiness: u.IsBusiness, IsAdmin: u.IsAdmin}
}
