package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinBizNumber = 100000000
	MaxBizNumber = 999999999
)

type Card struct {
	ID          primitive.ObjectID   `bson:"_id" json:"_id"`
	Title       string               `bson:"title" json:"title"`
	Subtitle    string               `bson:"subtitle" json:"subtitle"`
	Description string               `bson:"description" json:"description"`
	Phone       string               `bson:"phone" json:"phone"`
	Email       string               `bson:"email" json:"email"`
	Web         string               `bson:"web,omitempty" json:"web,omitempty"`
	Image       Image                `bson:"image" json:"image"`
	Address     Address              `bson:"address" json:"address"`
	BizNumber   int64                `bson:"bizNumber" json:"bizNumber"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	UserID      primitive.ObjectID   `bson:"user_id" json:"user_id"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (c *Card) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (c Card) MarshalJSON() ([]byte, error) {
	type card Card
	likes := c.Likes
	if likes == nil {
		likes = []primitive.ObjectID{}
	}
	c.Likes = likes
	return json.Marshal(struct {
		card
		LikesCount int `json:"likesCount"`
	}{card(c), len(likes)})
}

// CardUser is the slice of an account shown on card reads.
type CardUser struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  Name               `json:"name"`
	Email string             `json:"email"`
	Phone string             `json:"phone,omitempty"`
}

// CardView is a card with its owner and likers resolved to accounts.
type CardView struct {
	*Card
	Owner  *CardUser
	Likers []CardUser
}

// NewCardView resolves owner and likers of c from users. Likes of unknown
// accounts are left out; an unknown owner is rendered as its id.
func NewCardView(c *Card, users map[primitive.ObjectID]*User) *CardView {
	v := &CardView{Card: c, Likers: []CardUser{}}
	if u, ok := users[c.UserID]; ok {
		v.Owner = &CardUser{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
	}
	for _, id := range c.Likes {
		if u, ok := users[id]; ok {
			v.Likers = append(v.Likers, CardUser{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return v
}

func (v CardView) MarshalJSON() ([]byte, error) {
	type card Card
	var owner interface{} = v.Card.UserID
	if v.Owner != nil {
		owner = v.Owner
	}
	likers := v.Likers
	if likers == nil {
		likers = []CardUser{}
	}
	return json.Marshal(struct {
		card
		UserID     interface{} `json:"user_id"`
		Likes      []CardUser  `json:"likes"`
		LikesCount int         `json:"likesCount"`
	}{card(*v.Card), owner, likers, len(likers)})
}
