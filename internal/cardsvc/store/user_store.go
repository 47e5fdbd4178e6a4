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

const UsersCollection = "users"

const userNotFound = "User not found"

type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection(UsersCollection)}
}

func (s *UserStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := s.col.InsertOne(ctx, user)
	return translate(err, userNotFound, "could not create user")
}

func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	u := &models.User{}
	err := s.col.FindOne(ctx, filter).Decode(u)
	if err != nil {
		return nil, translate(err, userNotFound, "could not get user")
	}
	return u, nil
}

// ListByIDs returns the public fields of the users in ids. Unknown ids are
// skipped.
func (s *UserStore) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	users := []*models.User{}
	if len(ids) == 0 {
		return users, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "phone": 1})
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "could not list users by id")
	}
	if err := cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "could not decode users")
	}
	return users, nil
}

func (s *UserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "could not list users")
	}

	users := []*models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "could not decode users")
	}
	return users, nil
}

func (s *UserStore) UpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	return s.update(ctx, id, userSet(upd))
}

func (s *UserStore) SetBusiness(ctx context.Context, id primitive.ObjectID, isBusiness bool) (*models.User, error) {
	return s.update(ctx, id, bson.M{"isBusiness": isBusiness})
}

func (s *UserStore) update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	u := &models.User{}
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(u)
	if err != nil {
		return nil, translate(err, userNotFound, "could not update user")
	}
	return u, nil
}

// CompareAndSetSecurity swaps the lockout state in a single conditional
// update so concurrent logins can not lose an increment.
func (s *UserStore) CompareAndSetSecurity(ctx context.Context, id primitive.ObjectID, expected, next models.Security) (bool, error) {
	filter := securityFilter(id, expected)
	update := bson.M{"$set": bson.M{
		"security.failedAttempts": next.FailedAttempts,
		"security.lockedUntil":    next.LockedUntil,
		"updatedAt":               time.Now().UTC(),
	}}

	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Wrap(err, "could not update login attempts")
	}
	return res.MatchedCount == 1, nil
}

// securityFilter matches a user whose stored lockout state equals expected.
// A document without a security subdocument counts as the zero state.
func securityFilter(id primitive.ObjectID, expected models.Security) bson.M {
	var attempts interface{} = expected.FailedAttempts
	if expected.FailedAttempts == 0 {
		attempts = bson.M{"$in": bson.A{0, nil}}
	}
	return bson.M{
		"_id":                     id,
		"security.failedAttempts": attempts,
		"security.lockedUntil":    expected.LockedUntil,
	}
}

func (s *UserStore) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "could not delete user")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(userNotFound)
	}
	return nil
}

func (s *UserStore) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "could not count users")
}

// userSet turns the allow-listed update into a $set document with dotted
// paths so nested objects are merged, not replaced.
func userSet(upd models.UserUpdate) bson.M {
	set := bson.M{}
	if n := upd.Name; n != nil {
		putString(set, "name.first", n.First)
		putString(set, "name.middle", n.Middle)
		putString(set, "name.last", n.Last)
	}
	putString(set, "phone", upd.Phone)
	if upd.Email != nil {
		set["email"] = models.NormalizeEmail(*upd.Email)
	}
	putImage(set, upd.Image)
	putAddress(set, upd.Address)
	return set
}

func putImage(set bson.M, img *models.ImageUpdate) {
	if img == nil {
		return
	}
	putString(set, "image.url", img.URL)
	putString(set, "image.alt", img.Alt)
}

func putAddress(set bson.M, a *models.AddressUpdate) {
	if a == nil {
		return
	}
	putString(set, "address.state", a.State)
	putString(set, "address.country", a.Country)
	putString(set, "address.city", a.City)
	putString(set, "address.street", a.Street)
	putInt(set, "address.houseNumber", a.HouseNumber)
	putInt(set, "address.zip", a.Zip)
}

func putString(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = *v
	}
}

func putInt(set bson.M, key string, v *int) {
	if v != nil {
		set[key] = *v
	}
}
