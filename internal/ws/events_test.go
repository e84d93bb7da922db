package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	payload, err := decodePayload(inboundFrame{Event: EventJoinChat, Data: json.RawMessage(` "chat-1"`)})
	require.NoError(t, err)
	assert.Equal(t, "chat-1", payload.ChatID)

	payload, err = decodePayload(inboundFrame{Event: EventJoinChat, Data: json.RawMessage(`{"chatId":"chat-2"}`)})
	require.NoError(t, err)
	assert.Equal(t, "chat-2", payload.ChatID)

	payload, err = decodePayload(inboundFrame{Event: EventSendMessage, Data: json.RawMessage(`{"chatId":"chat-3","message":"hi"}`)})
	require.NoError(t, err)
	assert.Equal(t, "hi", payload.Message)

	_, err = decodePayload(inboundFrame{Event: EventSendMessage, Data: json.RawMessage(`"chat-4"`)})
	assert.Error(t, err)

	payload, err = decodePayload(inboundFrame{Event: EventTypingStart})
	require.NoError(t, err)
	assert.Empty(t, payload.ChatID)
}
