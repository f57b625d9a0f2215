package workers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tempchat/contract"
	"tempchat/domain"
)

const (
	quitCommand   = "/quit"
	directCommand = "/dm"
	inputPrompt   = "> "
)

// InputWorker reads lines typed by the user and writes them to the store.
// A line is one of:
//   - "/quit"            end the session
//   - "/dm <user> <text>" direct message to one handle
//   - anything else      public room message
//
// Empty lines are skipped and a failed send is reported without ending the
// loop. EOF terminates like /quit. Returning nil is always a normal quit.
type InputWorker struct {
	in       io.Reader
	store    contract.IMessageStore
	render   contract.Renderer
	log      *slog.Logger
	room     string
	username string
}

func NewInputWorker(in io.Reader, store contract.IMessageStore, render contract.Renderer, log *slog.Logger, room, username string) InputWorker {
	return InputWorker{in: in, store: store, render: render, log: log, room: room, username: username}
}

func (w InputWorker) Run(ctx context.Context) error {
	w.render.Status(fmt.Sprintf("Type your message. %s or Ctrl+C to exit.", quitCommand))

	// The blocking read lives in its own goroutine so cancellation never
	// waits on the terminal. After cancel the goroutine stays parked in
	// Scan until process exit; it holds nothing but the reader.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(w.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		close(lines)
	}()

	for {
		w.render.Prompt(inputPrompt)
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping input loop")
			return nil
		case line, ok := <-lines:
			if !ok {
				// EOF behaves like /quit.
				return nil
			}
			if done := w.handle(line); done {
				return nil
			}
		}
	}
}

// handle processes one line and reports whether the session should end.
func (w InputWorker) handle(line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return false
	case trimmed == quitCommand:
		return true
	}

	receiver, body := w.room, line
	if strings.HasPrefix(trimmed, directCommand) {
		target, rest, ok := parseDirect(trimmed)
		if !ok {
			w.render.Alert(fmt.Sprintf("Usage: %s <user> <text>", directCommand))
			return false
		}
		receiver, body = target, rest
	}

	_, err := w.store.StoreMessage(domain.Message{
		Sender:   w.username,
		Receiver: receiver,
		Body:     body,
	})
	if err != nil {
		w.render.Alert(fmt.Sprintf("Send failed: %v", err))
	}
	return false
}

// parseDirect extracts "/dm <user> <text>".
func parseDirect(trimmed string) (receiver, body string, ok bool) {
	if !strings.HasPrefix(trimmed, directCommand+" ") {
		return "", "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, directCommand+" "))
	receiver, body, found := strings.Cut(rest, " ")
	if !found || receiver == "" || strings.TrimSpace(body) == "" {
		return "", "", false
	}
	return receiver, body, true
}
