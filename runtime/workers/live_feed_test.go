package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"tempchat/contract"
	"tempchat/domain"
	"tempchat/errors"
	"tempchat/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	mu       sync.Mutex
	messages []domain.Message
	alerts   []string
}

func (r *recordingRenderer) Message(m domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

func (r *recordingRenderer) Alert(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, text)
}

func (r *recordingRenderer) Notice(string) {}
func (r *recordingRenderer) Status(string) {}
func (r *recordingRenderer) Prompt(string) {}
func (r *recordingRenderer) Farewell()     {}

func (r *recordingRenderer) Messages() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Message(nil), r.messages...)
}

func publicMessage(sender, body string) domain.Message {
	return domain.Message{ID: uuid.New(), Sender: sender, Receiver: "all", Body: body, At: time.Now().UTC()}
}

func startLiveFeed(t *testing.T, feed contract.IChangeFeed, render contract.Renderer, username string) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	worker := NewLiveFeedWorker(feed, render, slog.Default(), "all", username)
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()
	return cancel, done
}

func Test_LiveFeed_Renders_Only_Visible_Inserts(t *testing.T) {
	req := require.New(t)
	feed := repositories.NewChangeFeed(slog.Default())
	render := &recordingRenderer{}
	cancel, done := startLiveFeed(t, feed, render, "bob")
	defer cancel()

	// Wait for Listening before publishing.
	req.Eventually(func() bool {
		feed.Publish(domain.ChangeEvent{Operation: domain.OpInsert, Document: publicMessage("alice", "hello")})
		return len(render.Messages()) > 0
	}, time.Second, 10*time.Millisecond)

	direct := domain.ChangeEvent{Operation: domain.OpInsert, Document: domain.Message{
		ID: uuid.New(), Sender: "alice", Receiver: "carol", Body: "secret", At: time.Now().UTC(),
	}}
	feed.Publish(direct)
	feed.Publish(domain.ChangeEvent{Operation: domain.OpDelete, Document: publicMessage("alice", "expired")})
	feed.Publish(domain.ChangeEvent{Operation: "replace", Document: publicMessage("alice", "edited")})
	feed.Publish(domain.ChangeEvent{Operation: domain.OpInsert, Document: publicMessage("alice", "for bob too")})

	req.Eventually(func() bool {
		rendered := render.Messages()
		return rendered[len(rendered)-1].Body == "for bob too"
	}, time.Second, 10*time.Millisecond)

	// Of everything after the handshake, only the visible insert made it out.
	bodies := []string{}
	for _, m := range render.Messages() {
		if m.Body != "hello" {
			bodies = append(bodies, m.Body)
		}
	}
	req.Equal([]string{"for bob too"}, bodies)

	cancel()
	req.NoError(<-done)
}

func Test_LiveFeed_Stops_On_Cancellation_While_Suspended(t *testing.T) {
	req := require.New(t)
	feed := repositories.NewChangeFeed(slog.Default())
	render := &recordingRenderer{}
	cancel, done := startLiveFeed(t, feed, render, "bob")

	req.Eventually(func() bool {
		feed.Publish(domain.ChangeEvent{Operation: domain.OpInsert, Document: publicMessage("alice", "ping")})
		return len(render.Messages()) > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("live feed did not stop after cancellation")
	}

	// Its subscription is released: publishing reaches nobody and nothing
	// more is rendered.
	before := len(render.Messages())
	feed.Publish(domain.ChangeEvent{Operation: domain.OpInsert, Document: publicMessage("alice", "too late")})
	time.Sleep(50 * time.Millisecond)
	req.Len(render.Messages(), before)
}

func Test_LiveFeed_Fails_When_Stream_Dies(t *testing.T) {
	req := require.New(t)
	feed := repositories.NewChangeFeed(slog.Default())
	render := &recordingRenderer{}
	cancel, done := startLiveFeed(t, feed, render, "bob")
	defer cancel()

	req.Eventually(func() bool {
		feed.Publish(domain.ChangeEvent{Operation: domain.OpInsert, Document: publicMessage("alice", "ping")})
		return len(render.Messages()) > 0
	}, time.Second, 10*time.Millisecond)

	feed.Close()
	select {
	case err := <-done:
		req.ErrorIs(err, errors.ErrStreamUnavailable)
	case <-time.After(time.Second):
		t.Fatal("live feed did not fail after stream loss")
	}
}

func Test_LiveFeed_Fails_When_Subscribing_Is_Impossible(t *testing.T) {
	req := require.New(t)
	feed := repositories.NewChangeFeed(slog.Default())
	feed.Close()

	worker := NewLiveFeedWorker(feed, &recordingRenderer{}, slog.Default(), "all", "bob")
	req.ErrorIs(worker.Run(context.Background()), errors.ErrStreamUnavailable)
}
