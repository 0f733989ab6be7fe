package domain

import "context"

// Message is one outbound notification. Transport mechanics live behind the
// Sender; the scheduler only consumes send-succeeded or send-failed.
type Message struct {
	ToName         string
	ToEmail        string
	Subject        string
	Body           string
	AttachmentPath string
}

// Sender delivers a message. A nil error means the collaborator accepted it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
