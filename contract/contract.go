//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"tempchat/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IMessageStore is the message half of the store boundary.
// StoreMessage assigns the ID and timestamp; callers never pick them.
type IMessageStore interface {
	StoreMessage(m domain.Message) (domain.Message, error)
	VisibleMessages(viewer string) ([]domain.Message, error)
	DeleteExpired(now time.Time) ([]domain.Message, error)
	EnsureRetentionPolicy() error
}

type IUserStore interface {
	RegisterUser(username string) (domain.User, error)
	GetUser(username string) (domain.User, error)
}

// Subscription is a live, order-preserving sequence of change events.
// The channel is closed when the subscription terminates, whether by
// Close, by feed shutdown, or because the subscriber fell too far behind.
type Subscription interface {
	Events() <-chan domain.ChangeEvent
	Close()
}

type IChangeFeed interface {
	Subscribe() (Subscription, error)
}

// Renderer is the terminal output boundary. One method per kind of line so
// workers never deal with colors or formats.
type Renderer interface {
	Message(m domain.Message)
	Notice(text string)
	Status(text string)
	Alert(text string)
	Prompt(text string)
	Farewell()
}
