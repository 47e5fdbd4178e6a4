package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory keeps users and cards in process. It backs STORE_DRIVER=memory for
// local runs without a database and the service tests.
type Memory struct {
	mu    sync.Mutex
	seq   int64
	users map[primitive.ObjectID]*memUser
	cards map[primitive.ObjectID]*memCard
}

type memUser struct {
	seq  int64
	user models.User
}

type memCard struct {
	seq  int64
	card models.Card
}

func NewMemory() *Memory {
	return &Memory{
		users: map[primitive.ObjectID]*memUser{},
		cards: map[primitive.ObjectID]*memCard{},
	}
}

func (m *Memory) next() int64 {
	m.seq++
	return m.seq
}

func copyUser(u models.User) *models.User {
	if u.Security.LockedUntil != nil {
		t := *u.Security.LockedUntil
		u.Security.LockedUntil = &t
	}
	return &u
}

func copyCard(c models.Card) *models.Card {
	c.Likes = append([]primitive.ObjectID{}, c.Likes...)
	return &c
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.user.Email == user.Email {
			return apperr.Duplicate("email", nil)
		}
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.ID] = &memUser{seq: m.next(), user: *copyUser(*user)}
	return nil
}

func (m *Memory) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound(userNotFound)
	}
	return copyUser(u.user), nil
}

func (m *Memory) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.user.Email == email {
			return copyUser(u.user), nil
		}
	}
	return nil, apperr.NotFound(userNotFound)
}

func (m *Memory) ListUsers(_ context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]*memUser, 0, len(m.users))
	for _, u := range m.users {
		rows = append(rows, u)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	users := make([]*models.User, 0, len(rows))
	for _, u := range rows {
		users = append(users, copyUser(u.user))
	}
	return users, nil
}

func (m *Memory) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := []*models.User{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		u, ok := m.users[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		users = append(users, &models.User{ID: u.user.ID, Name: u.user.Name, Email: u.user.Email, Phone: u.user.Phone})
	}
	return users, nil
}

func (m *Memory) UpdateUser(_ context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound(userNotFound)
	}
	if upd.Email != nil {
		email := models.NormalizeEmail(*upd.Email)
		for oid, other := range m.users {
			if oid != id && other.user.Email == email {
				return nil, apperr.Duplicate("email", nil)
			}
		}
	}
	upd.ApplyTo(&u.user)
	u.user.UpdatedAt = time.Now().UTC()
	return copyUser(u.user), nil
}

func (m *Memory) SetBusiness(_ context.Context, id primitive.ObjectID, isBusiness bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound(userNotFound)
	}
	u.user.IsBusiness = isBusiness
	u.user.UpdatedAt = time.Now().UTC()
	return copyUser(u.user), nil
}

func (m *Memory) CompareAndSetSecurity(_ context.Context, id primitive.ObjectID, expected, next models.Security) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok || !u.user.Security.Equal(expected) {
		return false, nil
	}
	u.user.Security = copyUser(models.User{Security: next}).Security
	u.user.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *Memory) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return apperr.NotFound(userNotFound)
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) CountUsers(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *Memory) CreateCard(_ context.Context, card *models.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.cards {
		if c.card.BizNumber == card.BizNumber {
			return apperr.Duplicate("bizNumber", nil)
		}
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	if card.ID.IsZero() {
		card.ID = primitive.NewObjectID()
	}
	if card.Likes == nil {
		card.Likes = []primitive.ObjectID{}
	}
	card.CreatedAt, card.UpdatedAt = now, now
	m.cards[card.ID] = &memCard{seq: m.next(), card: *copyCard(*card)}
	return nil
}

func (m *Memory) GetCard(_ context.Context, id primitive.ObjectID) (*models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cards[id]
	if !ok {
		return nil, apperr.NotFound(cardNotFound)
	}
	return copyCard(c.card), nil
}

func (m *Memory) ListCards(_ context.Context) ([]*models.Card, error) {
	return m.filterCards(func(*models.Card) bool { return true }), nil
}

func (m *Memory) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]*models.Card, error) {
	return m.filterCards(func(c *models.Card) bool { return c.UserID == owner }), nil
}

func (m *Memory) filterCards(keep func(*models.Card) bool) []*models.Card {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]*memCard, 0, len(m.cards))
	for _, c := range m.cards {
		if keep(&c.card) {
			rows = append(rows, c)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	cards := make([]*models.Card, 0, len(rows))
	for _, c := range rows {
		cards = append(cards, copyCard(c.card))
	}
	return cards
}

func (m *Memory) UpdateCard(_ context.Context, id primitive.ObjectID, upd models.CardUpdate) (*models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cards[id]
	if !ok {
		return nil, apperr.NotFound(cardNotFound)
	}
	upd.ApplyTo(&c.card)
	c.card.UpdatedAt = time.Now().UTC()
	return copyCard(c.card), nil
}

func (m *Memory) ToggleLike(_ context.Context, id, userID primitive.ObjectID) (*models.Card, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cards[id]
	if !ok {
		return nil, false, apperr.NotFound(cardNotFound)
	}

	liked := !c.card.LikedBy(userID)
	if liked {
		c.card.Likes = append(c.card.Likes, userID)
	} else {
		likes := c.card.Likes[:0]
		for _, l := range c.card.Likes {
			if l != userID {
				likes = append(likes, l)
			}
		}
		c.card.Likes = likes
	}
	c.card.UpdatedAt = time.Now().UTC()
	return copyCard(c.card), liked, nil
}

func (m *Memory) SetBizNumber(_ context.Context, id primitive.ObjectID, bizNumber int64) (*models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cards[id]
	if !ok {
		return nil, apperr.NotFound(cardNotFound)
	}
	for oid, other := range m.cards {
		if oid != id && other.card.BizNumber == bizNumber {
			return nil, apperr.Duplicate("bizNumber", nil)
		}
	}
	c.card.BizNumber = bizNumber
	c.card.UpdatedAt = time.Now().UTC()
	return copyCard(c.card), nil
}

func (m *Memory) BizNumberTaken(_ context.Context, bizNumber int64, exclude primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for oid, c := range m.cards {
		if oid != exclude && c.card.BizNumber == bizNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DeleteCard(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cards[id]; !ok {
		return apperr.NotFound(cardNotFound)
	}
	delete(m.cards, id)
	return nil
}

func (m *Memory) DeleteByOwner(_ context.Context, owner primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for oid, c := range m.cards {
		if c.card.UserID == owner {
			delete(m.cards, oid)
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountCards(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.cards)), nil
}
