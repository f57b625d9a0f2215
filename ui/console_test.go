package ui

import (
	"bytes"
	"testing"
	"time"

	"tempchat/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Message_Line_Format(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	render := NewConsoleRenderer(&out, false)

	render.Message(domain.Message{
		ID:       uuid.New(),
		Sender:   "alice",
		Receiver: "all",
		Body:     "hello world",
		At:       time.Date(2026, 8, 31, 14, 3, 5, 0, time.Local),
	})

	req.Equal("14:03:05 alice: hello world\n", out.String())
}

func Test_Prompt_Has_No_Newline(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	render := NewConsoleRenderer(&out, false)

	render.Prompt("> ")
	req.Equal("> ", out.String())
}

func Test_Status_Lines(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	render := NewConsoleRenderer(&out, false)

	render.Notice("— recent messages —")
	render.Status("connected")
	render.Alert("send failed")
	render.Farewell()

	req.Equal("— recent messages —\nconnected\nsend failed\nGoodbye!\n", out.String())
}

func Test_Colours_Keep_The_Text(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	render := NewConsoleRenderer(&out, true)

	render.Alert("send failed")
	req.Contains(out.String(), "send failed")
}
