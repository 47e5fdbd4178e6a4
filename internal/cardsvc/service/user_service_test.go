package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"github.com/avvvet/bizcard-services/internal/comm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, token, err := f.users.Register(ctx, registerInput("John@Example.COM", false))
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", user.Email)
	assert.NotEqual(t, "Passw0rd!", user.PasswordHash)
	assert.Equal(t, models.DefaultImageURL, user.Image.URL)
	assert.Equal(t, models.DefaultUserImageAlt, user.Image.Alt)

	id, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), id.ID)

	f.notifier.AssertCalled(t, "Notify", comm.EventUserRegistered, mock.Anything)

	t.Run("duplicate email", func(t *testing.T) {
		_, _, err := f.users.Register(ctx, registerInput("john@example.com", true))
		assert.True(t, apperr.Is(err, apperr.KindDuplicateKey))

		n, err := f.mem.CountUsers(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("validation runs first", func(t *testing.T) {
		in := registerInput("bad", false)
		in.Password = "123"
		_, _, err := f.users.Register(ctx, in)
		require.True(t, apperr.Is(err, apperr.KindValidation))

		_, details := apperr.Public(err)
		assert.Contains(t, details, "email: Please enter a valid email address")
		assert.Contains(t, details, "password: the length must be between 7 and 20")
	})
}

func TestLoginLockout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.users.Register(ctx, registerInput("lock@example.com", false))
	require.NoError(t, err)

	wrong := models.LoginInput{Email: "lock@example.com", Password: "nope-nope"}
	right := models.LoginInput{Email: "lock@example.com", Password: "Passw0rd!"}

	for i := 0; i < models.MaxLoginAttempts; i++ {
		_, _, err := f.users.Login(ctx, wrong)
		require.True(t, apperr.Is(err, apperr.KindInvalidCredentials), "attempt %d", i+1)
	}
	f.notifier.AssertCalled(t, "Notify", comm.EventUserLocked, mock.Anything)

	_, _, err = f.users.Login(ctx, right)
	assert.True(t, apperr.Is(err, apperr.KindAccountLocked))
	assert.Equal(t, 423, apperr.KindOf(err).Status())

	f.advance(23 * time.Hour)
	_, _, err = f.users.Login(ctx, right)
	assert.True(t, apperr.Is(err, apperr.KindAccountLocked))

	f.advance(time.Hour)
	user, token, err := f.users.Login(ctx, right)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.Security{}, user.Security)

	stored, err := f.mem.GetByEmail(ctx, "lock@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Security.FailedAttempts)
	assert.Nil(t, stored.Security.LockedUntil)
}

func TestLoginResetsAfterSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.users.Register(ctx, registerInput("reset@example.com", false))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _, err := f.users.Login(ctx, models.LoginInput{Email: "reset@example.com", Password: "wrong-pass"})
		require.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
	}

	stored, err := f.mem.GetByEmail(ctx, "reset@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Security.FailedAttempts)

	_, _, err = f.users.Login(ctx, models.LoginInput{Email: "RESET@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	stored, err = f.mem.GetByEmail(ctx, "reset@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Security.FailedAttempts)

	// the counter starts over, two more failures do not lock
	for i := 0; i < 2; i++ {
		_, _, err := f.users.Login(ctx, models.LoginInput{Email: "reset@example.com", Password: "wrong-pass"})
		require.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
	}
	_, _, err = f.users.Login(ctx, models.LoginInput{Email: "reset@example.com", Password: "Passw0rd!"})
	assert.NoError(t, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.users.Login(context.Background(), models.LoginInput{Email: "ghost@example.com", Password: "whatever"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	john, _, err := f.users.Register(ctx, registerInput("john@example.com", false))
	require.NoError(t, err)
	_, _, err = f.users.Register(ctx, registerInput("jane@example.com", false))
	require.NoError(t, err)

	taken := "Jane@example.com"
	_, err = f.users.UpdateUser(ctx, john.ID.Hex(), models.UserUpdate{Email: &taken})
	require.True(t, apperr.Is(err, apperr.KindDuplicateKey))
	msg, _ := apperr.Public(err)
	assert.Equal(t, "Email already exists", msg)

	same := "JOHN@example.com"
	first := "Johnny"
	updated, err := f.users.UpdateUser(ctx, john.ID.Hex(), models.UserUpdate{
		Email: &same,
		Name:  &models.NameUpdate{First: &first},
	})
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", updated.Email)
	assert.Equal(t, "Johnny", updated.Name.First)
	assert.Equal(t, "User", updated.Name.Last)

	_, err = f.users.UpdateUser(ctx, john.ID.Hex(), models.UserUpdate{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.users.UpdateUser(ctx, "not-an-id", models.UserUpdate{Email: &same})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestChangeBusinessStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, _, err := f.users.Register(ctx, registerInput("biz@example.com", false))
	require.NoError(t, err)

	_, err = f.users.ChangeBusinessStatus(ctx, u.ID.Hex(), models.BusinessStatusInput{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	yes := true
	updated, err := f.users.ChangeBusinessStatus(ctx, u.ID.Hex(), models.BusinessStatusInput{IsBusiness: &yes})
	require.NoError(t, err)
	assert.True(t, updated.IsBusiness)
}

func TestDeleteUserCascadesCards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner, _, err := f.users.Register(ctx, registerInput("owner@example.com", true))
	require.NoError(t, err)
	other, _, err := f.users.Register(ctx, registerInput("other@example.com", true))
	require.NoError(t, err)

	for _, title := range []string{"one", "two", "three"} {
		_, err := f.cards.CreateCard(ctx, identity(owner), cardInput(title))
		require.NoError(t, err)
	}
	kept, err := f.cards.CreateCard(ctx, identity(other), cardInput("kept"))
	require.NoError(t, err)

	require.NoError(t, f.users.DeleteUser(ctx, owner.ID.Hex()))

	left, err := f.mem.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = f.mem.GetCard(ctx, kept.ID)
	assert.NoError(t, err)

	_, err = f.users.GetUser(ctx, owner.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	f.notifier.AssertCalled(t, "Notify", comm.EventUserDeleted, comm.UserEvent{
		UserId: owner.ID.Hex(), Email: "owner@example.com", CardsDeleted: 3,
	})

	assert.True(t, apperr.Is(f.users.DeleteUser(ctx, owner.ID.Hex()), apperr.KindNotFound))
}
