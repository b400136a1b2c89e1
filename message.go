package main

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// maxChatMessageLen is counted in characters, not bytes.
const maxChatMessageLen = 128

// chatMessage is what subscribers receive. User is always set by the relay.
type chatMessage struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

type inboundFrame struct {
	message string
	hasUser bool
}

func decodeChatFrame(data []byte) (inboundFrame, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return inboundFrame{}, fmt.Errorf("%w: %v", errMalformedFrame, err)
	}
	raw, ok := fields["message"]
	if !ok {
		return inboundFrame{}, fmt.Errorf("%w: missing message", errMalformedFrame)
	}
	var text string
	if bytes.Equal(raw, []byte("null")) || json.Unmarshal(raw, &text) != nil {
		return inboundFrame{}, fmt.Errorf("%w: message is not a string", errMalformedFrame)
	}
	_, hasUser := fields["user"]
	return inboundFrame{message: text, hasUser: hasUser}, nil
}

func encodeChatMessage(user, message string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(chatMessage{User: user, Message: message}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
