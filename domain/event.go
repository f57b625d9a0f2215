package domain

// Operation is the kind of change applied to the message collection.
type Operation string

const (
	OpInsert Operation = "insert"
	OpDelete Operation = "delete"
)

// ChangeEvent describes a single insert or delete on the message collection,
// delivered in occurrence order. Events are ephemeral: consumers own one for
// the duration of processing it and never retain it.
type ChangeEvent struct {
	Operation Operation
	Document  Message
}
