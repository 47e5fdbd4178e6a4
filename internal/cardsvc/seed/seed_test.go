package seed

import (
	"context"
	"testing"

	"github.com/avvvet/bizcard-services/internal/cardsvc/auth"
	"github.com/avvvet/bizcard-services/internal/cardsvc/service"
	"github.com/avvvet/bizcard-services/internal/cardsvc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRunSeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	s := NewSeeder(mem, mem, hasher, service.NewCardService(mem, mem))

	created, err := s.Run(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	users, err := mem.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)

	admin, err := mem.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.NoError(t, hasher.Compare(DefaultPassword, admin.PasswordHash))

	jane, err := mem.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	janeCards, err := mem.ListByOwner(ctx, jane.ID)
	require.NoError(t, err)
	assert.Len(t, janeCards, 2)

	cards, err := mem.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 3)

	likes := map[string]int{}
	for _, c := range cards {
		likes[c.Title] = len(c.Likes)
	}
	assert.Equal(t, map[string]int{"Pizza Palace": 2, "Coffee Corner": 1, "Tech Solutions": 0}, likes)

	created, err = s.Run(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	n, err := mem.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
