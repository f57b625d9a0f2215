//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=../mocks/mock_history_service.go -package=mocks
package services

import (
	"log/slog"

	"tempchat/contract"

	"github.com/samber/lo"
)

const (
	historyHeader = "— recent messages —"
	historyFooter = "———————————————"
)

type IHistoryService interface {
	ShowRecent(viewer string, limit int) error
}

// HistoryService renders the backfill a participant sees on join: the most
// recent visible messages, oldest first, bracketed by markers. It reads
// through the same store query the live feed's visibility rule mirrors, so
// history and live feed can never disagree on who sees what.
type HistoryService struct {
	store  contract.IMessageStore
	render contract.Renderer
	log    *slog.Logger
}

func NewHistoryService(store contract.IMessageStore, render contract.Renderer, log *slog.Logger) *HistoryService {
	return &HistoryService{store: store, render: render, log: log}
}

// ShowRecent renders up to limit messages. Fewer than limit means all of
// them; none at all means no output, not even the markers.
func (s *HistoryService) ShowRecent(viewer string, limit int) error {
	visible, err := s.store.VisibleMessages(viewer)
	if err != nil {
		return err
	}

	// VisibleMessages is ascending, so the tail is the most recent.
	recent := lo.Subset(visible, -limit, uint(limit))
	if len(recent) == 0 {
		return nil
	}

	s.render.Notice(historyHeader)
	for _, m := range recent {
		s.render.Message(m)
	}
	s.render.Notice(historyFooter)
	return nil
}
