package service

import (
	"context"

	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore persists accounts. Lookups of missing documents fail with an
// apperr.KindNotFound error, unique email violations with KindDuplicateKey.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	// ListByIDs returns at least the name, email and phone of each known id.
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error)
	SetBusiness(ctx context.Context, id primitive.ObjectID, isBusiness bool) (*models.User, error)
	// CompareAndSetSecurity replaces the lockout state only when the stored
	// state still equals expected. It reports whether the swap happened.
	CompareAndSetSecurity(ctx context.Context, id primitive.ObjectID, expected, next models.Security) (bool, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	CountUsers(ctx context.Context) (int64, error)
}

// CardStore persists cards. Unique business number violations fail with an
// apperr.KindDuplicateKey error on field "bizNumber".
type CardStore interface {
	CreateCard(ctx context.Context, card *models.Card) error
	GetCard(ctx context.Context, id primitive.ObjectID) (*models.Card, error)
	ListCards(ctx context.Context) ([]*models.Card, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*models.Card, error)
	UpdateCard(ctx context.Context, id primitive.ObjectID, upd models.CardUpdate) (*models.Card, error)
	// ToggleLike removes userID from the card likes when present and adds it
	// otherwise. liked reports the resulting membership.
	ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (card *models.Card, liked bool, err error)
	SetBizNumber(ctx context.Context, id primitive.ObjectID, bizNumber int64) (*models.Card, error)
	// BizNumberTaken reports whether a card other than exclude holds bizNumber.
	BizNumberTaken(ctx context.Context, bizNumber int64, exclude primitive.ObjectID) (bool, error)
	DeleteCard(ctx context.Context, id primitive.ObjectID) error
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error)
	CountCards(ctx context.Context) (int64, error)
}

// Notifier receives domain events. Delivery is best effort.
type Notifier interface {
	Notify(eventType string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, interface{}) {}
