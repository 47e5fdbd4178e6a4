package comm

import (
	"encoding/json"
	"time"
)

// Event types published by the card service.
const (
	EventUserRegistered = "user.registered"
	EventUserDeleted    = "user.deleted"
	EventUserLocked     = "user.locked"
	EventCardCreated    = "card.created"
	EventCardLiked      = "card.liked"
	EventCardUnliked    = "card.unliked"
	EventCardDeleted    = "card.deleted"
)

// Event is the envelope every message on the bus is wrapped in.
type Event struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	InstanceId string          `json:"instanceid"`
	Timestamp  time.Time       `json:"timestamp"`
}

type UserEvent struct {
	UserId string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	// CardsDeleted is set on user.deleted.
	CardsDeleted int64 `json:"cards_deleted,omitempty"`
}

type CardEvent struct {
	CardId    string `json:"card_id"`
	OwnerId   string `json:"owner_id,omitempty"`
	BizNumber int64  `json:"biz_number,omitempty"`
	// ActorId is the user that liked or unliked the card.
	ActorId    string `json:"actor_id,omitempty"`
	LikesCount int    `json:"likes_count,omitempty"`
}
