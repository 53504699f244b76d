// Package notify defines the outbound notification boundary. The core
// produces structured messages; a transport adapter (Telegram in this
// deployment) delivers them.
package notify

import "context"

// Message is one outbound notification payload.
type Message struct {
	Text string

	// PNG, when set, is an image to attach (payment QR codes).
	PNG []byte

	// Document, when set, is a file to deliver alongside the text
	// (calendar artifacts, spreadsheet exports).
	Document *Document

	// ForwardID references an artifact already held by the transport
	// (a payment-proof upload) to pass through to the recipient.
	ForwardID string
}

// Document is a named file attachment.
type Document struct {
	Name string
	Data []byte
}

// Notifier delivers a message to a recipient. Implementations must not be
// assumed reliable; delivery failure never rolls back the state transition
// that produced the message.
type Notifier interface {
	Send(ctx context.Context, chatID int64, msg Message) error
}
