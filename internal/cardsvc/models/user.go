package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultImageURL     = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_960_720.png"
	DefaultUserImageAlt = "User profile image"
	DefaultCardImageAlt = "Card image"
)

type Name struct {
	First  string `bson:"first" json:"first"`
	Middle string `bson:"middle" json:"middle"`
	Last   string `bson:"last" json:"last"`
}

func (n Name) Full() string {
	return n.First + " " + n.Last
}

type Image struct {
	URL string `bson:"url" json:"url"`
	Alt string `bson:"alt" json:"alt"`
}

type Address struct {
	State       string `bson:"state,omitempty" json:"state,omitempty"`
	Country     string `bson:"country" json:"country"`
	City        string `bson:"city" json:"city"`
	Street      string `bson:"street" json:"street"`
	HouseNumber int    `bson:"houseNumber" json:"houseNumber"`
	Zip         int    `bson:"zip" json:"zip"`
}

// User represents the users collection in the database.
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Name         Name               `bson:"name" json:"name"`
	Phone        string             `bson:"phone" json:"phone"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Image        Image              `bson:"image" json:"image"`
	Address      Address            `bson:"address" json:"address"`
	IsBusiness   bool               `bson:"isBusiness" json:"isBusiness"`
	IsAdmin      bool               `bson:"isAdmin" json:"isAdmin"`
	Security     Security           `bson:"security" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseID converts a hex object id coming from a URL or a token.
func ParseID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}
