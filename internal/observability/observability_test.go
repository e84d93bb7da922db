package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	args := m.Called(ctx, routingKey, event, headers)
	return args.Error(0)
}

func TestPublishEventWithoutPublisher(t *testing.T) {
	SetPublisher(nil)
	assert.NoError(t, PublishEvent(context.Background(), RoutingMatchCreated, NewEnvelope("x", nil), nil))
}

func TestPublishEventDelegates(t *testing.T) {
	pub := new(publisherMock)
	SetPublisher(pub)
	defer SetPublisher(nil)

	env := NewEnvelope("message_sent", map[string]string{"chat_id": "c1"})
	headers := BuildHeaders("req-1", "")
	pub.On("Publish", mock.Anything, RoutingMessageSent, env, headers).Return(assert.AnError).Once()

	err := PublishEvent(context.Background(), RoutingMessageSent, env, headers)
	require.ErrorIs(t, err, assert.AnError)
	pub.AssertExpectations(t)
}

func TestBuildHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"x-request-id": "r", "trace_id": "t"}, BuildHeaders("r", "t"))
	assert.Empty(t, BuildHeaders("", ""))
}
