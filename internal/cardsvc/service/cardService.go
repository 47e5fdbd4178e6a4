package service

import (
	"context"
	"math/rand"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/avvvet/bizcard-services/internal/cardsvc/auth"
	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"github.com/avvvet/bizcard-services/internal/comm"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// maxBizNumberDraws bounds the resampling of one business number.
	maxBizNumberDraws = 20
	// maxCreateAttempts bounds inserts that lose the unique index race.
	maxCreateAttempts = 3
)

type CardService struct {
	store    CardStore
	users    UserStore
	notifier Notifier
	draw     func() int64
}

func NewCardService(store CardStore, users UserStore) *CardService {
	return &CardService{
		store:    store,
		users:    users,
		notifier: nopNotifier{},
		draw:     randomBizNumber,
	}
}

func (s *CardService) WithNotifier(n Notifier) *CardService {
	if n != nil {
		s.notifier = n
	}
	return s
}

// WithBizNumberSource replaces the random business number generator.
func (s *CardService) WithBizNumberSource(draw func() int64) *CardService {
	s.draw = draw
	return s
}

func randomBizNumber() int64 {
	return models.MinBizNumber + rand.Int63n(models.MaxBizNumber-models.MinBizNumber+1)
}

func (s *CardService) ListCards(ctx context.Context) ([]*models.CardView, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, cards)
}

func (s *CardService) MyCards(ctx context.Context, caller auth.Identity) ([]*models.CardView, error) {
	owner, err := models.ParseID(caller.ID)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidToken, "Invalid token")
	}
	cards, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, cards)
}

func (s *CardService) GetCard(ctx context.Context, id string) (*models.CardView, error) {
	oid, err := parseCardID(id)
	if err != nil {
		return nil, err
	}
	card, err := s.store.GetCard(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, card)
}

// views resolves the owners and likers of cards with one user lookup.
func (s *CardService) views(ctx context.Context, cards []*models.Card) ([]*models.CardView, error) {
	views := make([]*models.CardView, 0, len(cards))
	if len(cards) == 0 {
		return views, nil
	}

	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, c := range cards {
		add(c.UserID)
		for _, id := range c.Likes {
			add(id)
		}
	}

	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, c := range cards {
		views = append(views, models.NewCardView(c, byID))
	}
	return views, nil
}

func (s *CardService) view(ctx context.Context, card *models.Card) (*models.CardView, error) {
	views, err := s.views(ctx, []*models.Card{card})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// CreateCard stores a new card owned by caller under a fresh business number.
func (s *CardService) CreateCard(ctx context.Context, caller auth.Identity, in models.CardInput) (*models.Card, error) {
	if err := auth.RequireBusiness(caller); err != nil {
		return nil, err
	}
	owner, err := models.ParseID(caller.ID)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidToken, "Invalid token")
	}
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(models.ValidationMessages(err)...)
	}

	card := &models.Card{
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Description: in.Description,
		Phone:       in.Phone,
		Email:       in.Email,
		Web:         in.Web,
		Image:       in.Image.Image(models.DefaultCardImageAlt),
		Address:     in.Address.Address(),
		Likes:       []primitive.ObjectID{},
		UserID:      owner,
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		bizNumber, err := s.availableBizNumber(ctx)
		if err != nil {
			return nil, err
		}

		card.ID = primitive.NewObjectID()
		card.BizNumber = bizNumber
		err = s.store.CreateCard(ctx, card)
		if err == nil {
			log.Infof("card %s created by %s with biz number %d", card.ID.Hex(), caller.ID, bizNumber)
			s.notifier.Notify(comm.EventCardCreated, comm.CardEvent{
				CardId:    card.ID.Hex(),
				OwnerId:   caller.ID,
				BizNumber: bizNumber,
			})
			return card, nil
		}
		if !apperr.IsDuplicateOf(err, "bizNumber") {
			return nil, err
		}
		log.Warnf("biz number %d taken concurrently, retrying", bizNumber)
	}

	return nil, apperr.New(apperr.KindUnexpected, "Failed to create card: no unique business number available")
}

func (s *CardService) availableBizNumber(ctx context.Context) (int64, error) {
	for i := 0; i < maxBizNumberDraws; i++ {
		n := s.draw()
		taken, err := s.store.BizNumberTaken(ctx, n, primitive.NilObjectID)
		if err != nil {
			return 0, err
		}
		if !taken {
			return n, nil
		}
	}
	return 0, apperr.New(apperr.KindUnexpected, "Failed to create card: no unique business number available")
}

// UpdateCard applies the allow-listed changes in upd for the owner or an admin.
func (s *CardService) UpdateCard(ctx context.Context, caller auth.Identity, id string, upd models.CardUpdate) (*models.CardView, error) {
	card, err := s.ownedCard(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := upd.Validate(); err != nil {
		return nil, apperr.Validation(models.ValidationMessages(err)...)
	}
	updated, err := s.store.UpdateCard(ctx, card.ID, upd)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, updated)
}

// ToggleLike flips the caller's like on the card. liked reports the new state.
func (s *CardService) ToggleLike(ctx context.Context, caller auth.Identity, id string) (*models.CardView, bool, error) {
	oid, err := parseCardID(id)
	if err != nil {
		return nil, false, err
	}
	userID, err := models.ParseID(caller.ID)
	if err != nil {
		return nil, false, apperr.New(apperr.KindInvalidToken, "Invalid token")
	}

	card, liked, err := s.store.ToggleLike(ctx, oid, userID)
	if err != nil {
		return nil, false, err
	}

	event := comm.EventCardUnliked
	if liked {
		event = comm.EventCardLiked
	}
	s.notifier.Notify(event, comm.CardEvent{
		CardId:     card.ID.Hex(),
		OwnerId:    card.UserID.Hex(),
		ActorId:    caller.ID,
		LikesCount: len(card.Likes),
	})

	view, err := s.view(ctx, card)
	if err != nil {
		return nil, false, err
	}
	return view, liked, nil
}

func (s *CardService) DeleteCard(ctx context.Context, caller auth.Identity, id string) error {
	card, err := s.ownedCard(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCard(ctx, card.ID); err != nil {
		return err
	}

	s.notifier.Notify(comm.EventCardDeleted, comm.CardEvent{
		CardId:    card.ID.Hex(),
		OwnerId:   card.UserID.Hex(),
		BizNumber: card.BizNumber,
		ActorId:   caller.ID,
	})
	return nil
}

// ChangeBizNumber lets an admin reassign a card's business number.
func (s *CardService) ChangeBizNumber(ctx context.Context, caller auth.Identity, id string, in models.BizNumberInput) (*models.Card, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(models.ValidationMessages(err)...)
	}

	oid, err := parseCardID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetCard(ctx, oid); err != nil {
		return nil, err
	}

	taken, err := s.store.BizNumberTaken(ctx, in.BizNumber, oid)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Duplicate("bizNumber", nil).WithMessage("Business number is already taken")
	}

	card, err := s.store.SetBizNumber(ctx, oid, in.BizNumber)
	if apperr.IsDuplicateOf(err, "bizNumber") {
		return nil, apperr.Duplicate("bizNumber", err).WithMessage("Business number is already taken")
	}
	return card, err
}

func (s *CardService) ownedCard(ctx context.Context, caller auth.Identity, id string) (*models.Card, error) {
	oid, err := parseCardID(id)
	if err != nil {
		return nil, err
	}
	card, err := s.store.GetCard(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnershipOrAdmin(caller, card.UserID.Hex()); err != nil {
		return nil, err
	}
	return card, nil
}

func parseCardID(id string) (primitive.ObjectID, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("Card not found")
	}
	return oid, nil
}
