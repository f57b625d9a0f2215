package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Visibility(t *testing.T) {
	req := require.New(t)
	room := "all"
	at := time.Now().UTC()

	public := Message{ID: uuid.New(), Sender: "alice", Receiver: room, Body: "hello", At: at}
	direct := Message{ID: uuid.New(), Sender: "bob", Receiver: "alice", Body: "psst", At: at}

	tests := []struct {
		description string
		message     Message
		viewer      string
		visible     bool
	}{
		{"Public message visible to its sender", public, "alice", true},
		{"Public message visible to another viewer", public, "bob", true},
		{"Public message visible to a stranger", public, "carol", true},
		{"Direct message visible to its receiver", direct, "alice", true},
		{"Direct message hidden from its sender", direct, "bob", false},
		{"Direct message hidden from a third party", direct, "carol", false},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req.Equal(tt.visible, IsVisible(tt.message, room, tt.viewer))
		})
	}
}
