package ports

import (
	"context"

	"github.com/eventreg/registration-system/internal/core/domain"
)

// InboundEvent is one turn received from the chat transport.
type InboundEvent struct {
	// UpdateID is the transport's delivery identifier, used for webhook
	// redelivery deduplication.
	UpdateID int64
	CallerID int64
	Text     string
	// Contact is set when the caller shared a phone number through the
	// transport's contact mechanism.
	Contact *ContactPayload
}

// ContactPayload is a structured phone share. OwnerID is the transport's
// declared owner of the number; the registration flow rejects contacts that
// name someone other than the caller.
type ContactPayload struct {
	PhoneNumber string
	OwnerID     int64
}

// Button is one tappable quick reply.
type Button struct {
	Text string
	// RequestContact asks the transport to render a contact-sharing button.
	RequestContact bool
}

// Keyboard is a suggested quick-reply layout. The core never depends on how
// the transport renders it.
type Keyboard struct {
	Rows    [][]Button
	OneTime bool
}

// File is a downloadable artifact produced by the export collaborator.
type File struct {
	Name    string
	Caption string
	Content []byte
}

// Reply is one outbound message emitted by a protocol handler.
type Reply struct {
	Text           string
	Keyboard       *Keyboard
	RemoveKeyboard bool
	Document       *File
}

// Sender delivers outbound replies back through the chat transport.
type Sender interface {
	Send(ctx context.Context, callerID int64, replies []Reply) error
}

// Exporter renders a filtered participant set into a downloadable tabular
// artifact. The core supplies rows and the filter; the exporter owns all
// file-format details.
type Exporter interface {
	Render(participants []domain.Participant, r domain.Range) (File, error)
}

// EventProcessor consumes inbound events dequeued by the dispatcher.
type EventProcessor interface {
	Process(ctx context.Context, ev InboundEvent) error
}
