package services

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"tempchat/domain"
	cherrors "tempchat/errors"
	"tempchat/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func backfill(count int) []domain.Message {
	at := time.Now().UTC().Add(-time.Hour)
	messages := make([]domain.Message, 0, count)
	for i := 0; i < count; i++ {
		messages = append(messages, domain.Message{
			ID:       uuid.New(),
			Sender:   "alice",
			Receiver: "all",
			Body:     fmt.Sprintf("message %d", i),
			At:       at.Add(time.Duration(i) * time.Minute),
		})
	}
	return messages
}

func Test_ShowRecent_Truncates_To_Most_Recent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIMessageStore(ctrl)
	render := mocks.NewMockRenderer(ctrl)

	messages := backfill(40)
	store.EXPECT().VisibleMessages("bob").Return(messages, nil)

	// Last 30 of 40, oldest of the kept set first.
	calls := []any{render.EXPECT().Notice(historyHeader)}
	for _, m := range messages[10:] {
		calls = append(calls, render.EXPECT().Message(m))
	}
	calls = append(calls, render.EXPECT().Notice(historyFooter))
	gomock.InOrder(calls...)

	service := NewHistoryService(store, render, slog.Default())
	req.NoError(service.ShowRecent("bob", 30))
}

func Test_ShowRecent_Keeps_Everything_Under_Limit(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIMessageStore(ctrl)
	render := mocks.NewMockRenderer(ctrl)

	messages := backfill(3)
	store.EXPECT().VisibleMessages("bob").Return(messages, nil)

	render.EXPECT().Notice(historyHeader)
	for _, m := range messages {
		render.EXPECT().Message(m)
	}
	render.EXPECT().Notice(historyFooter)

	service := NewHistoryService(store, render, slog.Default())
	req.NoError(service.ShowRecent("bob", 30))
}

func Test_ShowRecent_Renders_Nothing_When_Empty(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIMessageStore(ctrl)
	// No renderer expectations: not even the markers may appear.
	render := mocks.NewMockRenderer(ctrl)

	store.EXPECT().VisibleMessages("bob").Return(nil, nil)

	service := NewHistoryService(store, render, slog.Default())
	req.NoError(service.ShowRecent("bob", 30))
}

func Test_ShowRecent_Propagates_Store_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIMessageStore(ctrl)
	render := mocks.NewMockRenderer(ctrl)

	store.EXPECT().VisibleMessages("bob").Return(nil, cherrors.ErrStoreUnavailable)

	service := NewHistoryService(store, render, slog.Default())
	req.ErrorIs(service.ShowRecent("bob", 30), cherrors.ErrStoreUnavailable)
}
