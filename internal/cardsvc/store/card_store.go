package store

import (
	"context"
	"time"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CardsCollection = "cards"

const cardNotFound = "Card not found"

type CardStore struct {
	col *mongo.Collection
}

func NewCardStore(db *mongo.Database) *CardStore {
	return &CardStore{col: db.Collection(CardsCollection)}
}

func (s *CardStore) CreateCard(ctx context.Context, card *models.Card) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if card.ID.IsZero() {
		card.ID = primitive.NewObjectID()
	}
	if card.Likes == nil {
		card.Likes = []primitive.ObjectID{}
	}
	card.CreatedAt, card.UpdatedAt = now, now

	_, err := s.col.InsertOne(ctx, card)
	return translate(err, cardNotFound, "could not create card")
}

func (s *CardStore) GetCard(ctx context.Context, id primitive.ObjectID) (*models.Card, error) {
	card := &models.Card{}
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(card); err != nil {
		return nil, translate(err, cardNotFound, "could not get card")
	}
	return card, nil
}

func (s *CardStore) ListCards(ctx context.Context) ([]*models.Card, error) {
	return s.find(ctx, bson.M{})
}

func (s *CardStore) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*models.Card, error) {
	return s.find(ctx, bson.M{"user_id": owner})
}

func (s *CardStore) find(ctx context.Context, filter bson.M) ([]*models.Card, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "could not list cards")
	}

	cards := []*models.Card{}
	if err := cur.All(ctx, &cards); err != nil {
		return nil, errors.Wrap(err, "could not decode cards")
	}
	return cards, nil
}

func (s *CardStore) UpdateCard(ctx context.Context, id primitive.ObjectID, upd models.CardUpdate) (*models.Card, error) {
	set := bson.M{}
	putString(set, "title", upd.Title)
	putString(set, "subtitle", upd.Subtitle)
	putString(set, "description", upd.Description)
	putString(set, "phone", upd.Phone)
	putString(set, "email", upd.Email)
	putString(set, "web", upd.Web)
	putImage(set, upd.Image)
	putAddress(set, upd.Address)

	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

// ToggleLike first tries to pull userID from a card that contains it; when
// nothing matched the user had not liked the card yet and is added.
func (s *CardStore) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Card, bool, error) {
	card, err := s.findOneAndUpdate(ctx,
		bson.M{"_id": id, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
	if err == nil {
		return card, false, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, false, err
	}

	card, err = s.findOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"likes": userID}},
	)
	if err != nil {
		return nil, false, err
	}
	return card, true, nil
}

func (s *CardStore) SetBizNumber(ctx context.Context, id primitive.ObjectID, bizNumber int64) (*models.Card, error) {
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"bizNumber": bizNumber}})
}

func (s *CardStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Card, error) {
	if set, ok := update["$set"].(bson.M); ok {
		set["updatedAt"] = time.Now().UTC()
	} else {
		update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	card := &models.Card{}
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(card); err != nil {
		return nil, translate(err, cardNotFound, "could not update card")
	}
	return card, nil
}

func (s *CardStore) BizNumberTaken(ctx context.Context, bizNumber int64, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"bizNumber": bizNumber}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}

	n, err := s.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "could not check biz number")
	}
	return n > 0, nil
}

func (s *CardStore) DeleteCard(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "could not delete card")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(cardNotFound)
	}
	return nil
}

func (s *CardStore) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"user_id": owner})
	if err != nil {
		return 0, errors.Wrap(err, "could not delete cards of owner")
	}
	return res.DeletedCount, nil
}

func (s *CardStore) CountCards(ctx context.Context) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "could not count cards")
}
