package workers

import (
	"context"
	"log/slog"

	"tempchat/contract"
	"tempchat/domain"
	"tempchat/errors"
)

// LiveFeedWorker consumes the store's change subscription and renders every
// insert the session's user may see. Delete events, including retention
// expiry, are consumed silently: expiry is not surfaced to the user.
//
// Returning nil means the worker was cancelled; any error means the live
// feed died and the session must end with it.
type LiveFeedWorker struct {
	feed     contract.IChangeFeed
	render   contract.Renderer
	log      *slog.Logger
	room     string
	username string
}

func NewLiveFeedWorker(feed contract.IChangeFeed, render contract.Renderer, log *slog.Logger, room, username string) LiveFeedWorker {
	return LiveFeedWorker{feed: feed, render: render, log: log, room: room, username: username}
}

func (w LiveFeedWorker) Run(ctx context.Context) error {
	sub, err := w.feed.Subscribe()
	if err != nil {
		return err
	}
	// Released on every exit path, cancelled or failed alike.
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping live feed")
			return nil
		case evt, ok := <-sub.Events():
			if !ok {
				return errors.ErrStreamUnavailable
			}
			// Cancellation wins over an already-buffered event: nothing may
			// be rendered once the session is shutting down.
			if ctx.Err() != nil {
				w.log.Debug("Stopping live feed")
				return nil
			}
			w.consume(evt)
		}
	}
}

func (w LiveFeedWorker) consume(evt domain.ChangeEvent) {
	switch evt.Operation {
	case domain.OpInsert:
		// Visibility is evaluated once, here, at delivery time.
		if domain.IsVisible(evt.Document, w.room, w.username) {
			w.render.Message(evt.Document)
		}
	case domain.OpDelete:
		// Messages disappear quietly when they expire.
	default:
		w.log.Debug("Ignoring unknown change operation", "operation", string(evt.Operation))
	}
}
