package broker

import (
	"encoding/json"
	"time"

	"github.com/avvvet/bizcard-services/internal/comm"
	log "github.com/sirupsen/logrus"
)

// SubjectPrefix is prepended to the event type to form the NATS subject,
// e.g. cardsvc.card.created.
const SubjectPrefix = "cardsvc."

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subj string, data []byte) error
}

type Broker struct {
	Conn       Publisher
	InstanceId string
	now        func() time.Time
}

func NewBroker(conn Publisher, instanceId string) *Broker {
	return &Broker{
		Conn:       conn,
		InstanceId: instanceId,
		now:        time.Now,
	}
}

// Notify wraps payload in a comm.Event and publishes it. Publishing is best
// effort, failures are logged and never reach the caller.
func (b *Broker) Notify(eventType string, payload interface{}) {
	if b == nil || b.Conn == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("unable to marshal %s event: %s", eventType, err)
		return
	}

	msg := &comm.Event{
		Type:       eventType,
		Data:       data,
		InstanceId: b.InstanceId,
		Timestamp:  b.now().UTC(),
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.Publish(SubjectPrefix+eventType, raw)
}

func (b *Broker) Publish(topic string, payload []byte) {
	if err := b.Conn.Publish(topic, payload); err != nil {
		log.Errorf("unable to publish to %s: %s", topic, err)
		return
	}
	log.Debugf("published %s", topic)
}
