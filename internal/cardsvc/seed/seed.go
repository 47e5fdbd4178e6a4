// Package seed loads the demo accounts and cards into an empty database.
package seed

import (
	"context"

	"github.com/avvvet/bizcard-services/internal/cardsvc/auth"
	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"github.com/avvvet/bizcard-services/internal/cardsvc/service"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "1234567"

type Seeder struct {
	users  service.UserStore
	cards  service.CardStore
	hasher *auth.PasswordHasher
	cardSv *service.CardService
}

func NewSeeder(users service.UserStore, cards service.CardStore, hasher *auth.PasswordHasher, cardSv *service.CardService) *Seeder {
	return &Seeder{users: users, cards: cards, hasher: hasher, cardSv: cardSv}
}

// Run creates the demo data when both collections are empty. It reports
// whether anything was written.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	userCount, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	cardCount, err := s.cards.CountCards(ctx)
	if err != nil {
		return false, err
	}
	if userCount > 0 || cardCount > 0 {
		log.Info("initial data already exists, skipping seed")
		return false, nil
	}

	log.Info("creating initial data ...")

	hash, err := s.hasher.Hash(DefaultPassword)
	if err != nil {
		return false, errors.Wrap(err, "hashing seed password")
	}

	users := seedUsers()
	for _, u := range users {
		u.PasswordHash = hash
		if err := s.users.CreateUser(ctx, u); err != nil {
			return false, errors.Wrapf(err, "seeding user %s", u.Email)
		}
	}
	john, jane, admin := users[0], users[1], users[2]

	owners := []*models.User{jane, jane, admin}
	var cards []*models.Card
	for i, in := range seedCards() {
		card, err := s.cardSv.CreateCard(ctx, identityOf(owners[i]), in)
		if err != nil {
			return false, errors.Wrapf(err, "seeding card %q", in.Title)
		}
		cards = append(cards, card)
	}

	likes := []struct {
		card *models.Card
		user *models.User
	}{
		{cards[0], john},
		{cards[0], admin},
		{cards[1], john},
	}
	for _, l := range likes {
		if _, _, err := s.cardSv.ToggleLike(ctx, identityOf(l.user), l.card.ID.Hex()); err != nil {
			return false, errors.Wrap(err, "seeding likes")
		}
	}

	log.Infof("initial data created: %d users, %d cards", len(users), len(cards))
	for _, u := range users {
		log.Infof("seed account %s (business=%t admin=%t)", u.Email, u.IsBusiness, u.IsAdmin)
	}
	return true, nil
}

func identityOf(u *models.User) auth.Identity {
	return auth.Identity{ID: u.ID.Hex(), IsBusiness: u.IsBusiness, IsAdmin: u.IsAdmin}
}

func userImage() models.Image {
	return models.Image{URL: models.DefaultImageURL, Alt: models.DefaultUserImageAlt}
}

func seedUsers() []*models.User {
	return []*models.User{
		{
			ID:    primitive.NewObjectID(),
			Name:  models.Name{First: "John", Last: "Doe"},
			Phone: "0501234567",
			Email: "john@example.com",
			Image: userImage(),
			Address: models.Address{
				Country: "Israel", City: "Tel Aviv", Street: "Dizengoff", HouseNumber: 100, Zip: 64332,
			},
		},
		{
			ID:    primitive.NewObjectID(),
			Name:  models.Name{First: "Jane", Last: "Smith"},
			Phone: "0507654321",
			Email: "jane@example.com",
			Image: userImage(),
			Address: models.Address{
				Country: "Israel", City: "Haifa", Street: "Herzl", HouseNumber: 50, Zip: 31000,
			},
			IsBusiness: true,
		},
		{
			ID:    primitive.NewObjectID(),
			Name:  models.Name{First: "Admin", Last: "User"},
			Phone: "0509999999",
			Email: "admin@example.com",
			Image: userImage(),
			Address: models.Address{
				Country: "Israel", City: "Jerusalem", Street: "King George", HouseNumber: 1, Zip: 91000,
			},
			IsBusiness: true,
			IsAdmin:    true,
		},
	}
}

func seedCards() []models.CardInput {
	return []models.CardInput{
		{
			Title:       "Pizza Palace",
			Subtitle:    "Best Pizza in Town",
			Description: "Authentic Italian pizza made with fresh ingredients and traditional recipes. We offer delivery and takeout services.",
			Phone:       "0501234567",
			Email:       "info@pizzapalace.com",
			Web:         "https://pizzapalace.com",
			Image: &models.ImageInput{
				URL: "https://images.unsplash.com/photo-1513104890138-7c749659a591?w=500",
				Alt: "Delicious pizza",
			},
			Address: &models.AddressInput{
				Country: "Israel", City: "Tel Aviv", Street: "Dizengoff", HouseNumber: 100, Zip: 64332,
			},
		},
		{
			Title:       "Coffee Corner",
			Subtitle:    "Artisan Coffee & Pastries",
			Description: "Specialty coffee roasted daily, fresh pastries, and a cozy atmosphere perfect for work or relaxation.",
			Phone:       "0507654321",
			Email:       "hello@coffeecorner.co.il",
			Web:         "https://coffeecorner.co.il",
			Image: &models.ImageInput{
				URL: "https://images.unsplash.com/photo-1501339847302-ac426a4a7cbb?w=500",
				Alt: "Coffee and pastries",
			},
			Address: &models.AddressInput{
				Country: "Israel", City: "Haifa", Street: "Herzl", HouseNumber: 50, Zip: 31000,
			},
		},
		{
			Title:       "Tech Solutions",
			Subtitle:    "Professional IT Services",
			Description: "Complete IT solutions for businesses: web development, system administration, cloud services, and technical support.",
			Phone:       "0509999999",
			Email:       "contact@techsolutions.co.il",
			Web:         "https://techsolutions.co.il",
			Image: &models.ImageInput{
				URL: "https://images.unsplash.com/photo-1518709268805-4e9042af2176?w=500",
				Alt: "Technology services",
			},
			Address: &models.AddressInput{
				Country: "Israel", City: "Jerusalem", Street: "King George", HouseNumber: 1, Zip: 91000,
			},
		},
	}
}
