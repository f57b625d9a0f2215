package runtime

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"tempchat/contract"
	"tempchat/errors"
	"tempchat/runtime/workers"
	"tempchat/services"
)

// Session drives one connected participant: store preconditions, rejoin-safe
// registration, history backfill, then the live feed and the input loop
// racing on one shared cancellation.
//
// Either side ending, for any reason, ends the whole session: a chat client
// with a dead live feed but a working prompt would just be lying.
type Session struct {
	log             *slog.Logger
	users           contract.IUserStore
	messages        contract.IMessageStore
	feed            contract.IChangeFeed
	history         services.IHistoryService
	render          contract.Renderer
	input           io.Reader
	room            string
	recentLimit     int
	shutdownTimeout time.Duration
}

func NewSession(
	log *slog.Logger,
	users contract.IUserStore,
	messages contract.IMessageStore,
	feed contract.IChangeFeed,
	history services.IHistoryService,
	render contract.Renderer,
	input io.Reader,
	room string,
	recentLimit int,
	shutdownTimeout time.Duration,
) *Session {
	return &Session{
		log:             log,
		users:           users,
		messages:        messages,
		feed:            feed,
		history:         history,
		render:          render,
		input:           input,
		room:            room,
		recentLimit:     recentLimit,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run blocks until the participant quits, the live feed dies, or ctx is
// cancelled. A normal quit returns nil; a dead live feed returns its error.
func (s *Session) Run(ctx context.Context, username string) error {
	if err := s.messages.EnsureRetentionPolicy(); err != nil {
		return fmt.Errorf("retention policy setup: %w", err)
	}

	// An existing handle is a rejoin, not a failure.
	if _, err := s.users.RegisterUser(username); err != nil && !goerrors.Is(err, errors.ErrUserAlreadyExists) {
		return fmt.Errorf("register %q: %w", username, err)
	}

	if err := s.history.ShowRecent(username, s.recentLimit); err != nil {
		return fmt.Errorf("history backfill: %w", err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	liveFeed := workers.NewLiveFeedWorker(s.feed, s.render, s.log, s.room, username)
	input := workers.NewInputWorker(s.input, s.messages, s.render, s.log, s.room, username)

	var wg sync.WaitGroup
	outcome := make(chan error, 2)
	for _, worker := range []contract.Worker{liveFeed, input} {
		wg.Add(1)
		go func(w contract.Worker) {
			defer wg.Done()
			outcome <- w.Run(sessionCtx)
		}(worker)
	}

	// First terminal worker decides the session outcome; cancelling twice is
	// harmless, so no bookkeeping about which one it was.
	first := <-outcome
	cancel()

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(s.shutdownTimeout):
		s.log.Warn("Session tasks did not stop in time", "timeout", s.shutdownTimeout)
	}

	s.render.Farewell()

	if first != nil && !goerrors.Is(first, context.Canceled) {
		return first
	}
	return nil
}
