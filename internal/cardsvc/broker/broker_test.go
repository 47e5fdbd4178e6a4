package broker

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/avvvet/bizcard-services/internal/comm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(subj string, data []byte) error {
	args := m.Called(subj, data)
	return args.Error(0)
}

func TestNotifyPublishesEnvelope(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", "cardsvc.card.created", mock.Anything).Return(nil).Once()

	b := NewBroker(pub, "instance-1")
	stamp := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return stamp }

	b.Notify(comm.EventCardCreated, comm.CardEvent{CardId: "c1", OwnerId: "u1", BizNumber: 123456789})
	pub.AssertExpectations(t)

	raw := pub.Calls[0].Arguments.Get(1).([]byte)
	var ev comm.Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, comm.EventCardCreated, ev.Type)
	assert.Equal(t, "instance-1", ev.InstanceId)
	assert.True(t, ev.Timestamp.Equal(stamp))

	var data comm.CardEvent
	require.NoError(t, json.Unmarshal(ev.Data, &data))
	assert.Equal(t, "c1", data.CardId)
	assert.EqualValues(t, 123456789, data.BizNumber)
}

func TestNotifySwallowsPublishErrors(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", "cardsvc.user.deleted", mock.Anything).Return(errors.New("nats: connection closed"))

	b := NewBroker(pub, "instance-1")
	assert.NotPanics(t, func() {
		b.Notify(comm.EventUserDeleted, comm.UserEvent{UserId: "u1"})
	})
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestNotifyWithoutConnection(t *testing.T) {
	var nilBroker *Broker
	assert.NotPanics(t, func() {
		nilBroker.Notify(comm.EventUserLocked, comm.UserEvent{UserId: "u1"})
		NewBroker(nil, "x").Notify(comm.EventUserLocked, comm.UserEvent{UserId: "u1"})
	})
}
