package outlook

import (
	"errors"
	"strings"
)

var (
	// ErrNoMessageID indicates an operation was called without a message id.
	ErrNoMessageID = errors.New("outlook: message id is required")
	// ErrNoDestination indicates a move was requested without a target folder.
	ErrNoDestination = errors.New("outlook: destination folder id is required")
	// ErrNoRecipients indicates an outgoing message has nobody to go to.
	ErrNoRecipients = errors.New("outlook: message has no recipients")
	// ErrEmptyQuery indicates a search was requested with no terms.
	ErrEmptyQuery = errors.New("outlook: search query is empty")
)

// Message represents an Outlook message from Microsoft Graph API.
type Message struct {
	ID                string       `json:"id"`
	Subject           string       `json:"subject"`
	BodyPreview       string       `json:"bodyPreview"`
	Body              *MessageBody `json:"body,omitempty"`
	From              *Recipient   `json:"from,omitempty"`
	ToRecipients      []Recipient  `json:"toRecipients,omitempty"`
	CcRecipients      []Recipient  `json:"ccRecipients,omitempty"`
	BccRecipients     []Recipient  `json:"bccRecipients,omitempty"`
	ReceivedDateTime  string       `json:"receivedDateTime"`
	SentDateTime      string       `json:"sentDateTime"`
	IsRead            bool         `json:"isRead"`
	IsDraft           bool         `json:"isDraft"`
	Importance        string       `json:"importance"`
	ConversationID    string       `json:"conversationId"`
	ParentFolderID    string       `json:"parentFolderId"`
	WebLink           string       `json:"webLink"`
	HasAttachments    bool         `json:"hasAttachments"`
	InternetMessageID string       `json:"internetMessageId"`
}

// MessageBody represents the body of an email.
type MessageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// EmailAddress represents an email address with optional display name.
type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// String renders the address as "Name <address>", or the bare address
// when no display name is set.
func (e EmailAddress) String() string {
	if e.Name != "" && e.Address != "" {
		return e.Name + " <" + e.Address + ">"
	}
	if e.Address != "" {
		return e.Address
	}
	return e.Name
}

// Recipient wraps an email address the way Microsoft Graph nests it.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// MessageResult pairs a requested message id with its individual outcome.
// Batched lookups succeed or fail per entry rather than as a whole.
type MessageResult struct {
	ID      string
	Message *Message
	Err     error
}

// Draft describes an outgoing message before submission.
type Draft struct {
	// Subject is the message subject line.
	Subject string
	// Body is the message content.
	Body string
	// BodyType is "Text" or "HTML". Defaults to Text.
	BodyType string
	// To, Cc and Bcc are plain email addresses.
	To  []string
	Cc  []string
	Bcc []string
	// SaveToSentItems controls whether a copy lands in Sent Items.
	SaveToSentItems bool
}

// sendMailPayload matches the Graph /me/sendMail request shape.
type sendMailPayload struct {
	Message         outgoingMessage `json:"message"`
	SaveToSentItems bool            `json:"saveToSentItems"`
}

type outgoingMessage struct {
	Subject       string      `json:"subject"`
	Body          MessageBody `json:"body"`
	ToRecipients  []Recipient `json:"toRecipients"`
	CcRecipients  []Recipient `json:"ccRecipients,omitempty"`
	BccRecipients []Recipient `json:"bccRecipients,omitempty"`
}

// payload validates the draft and renders it into the Graph shape.
func (d *Draft) payload() (*sendMailPayload, error) {
	to := makeRecipients(d.To)
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}
	return &sendMailPayload{
		Message: outgoingMessage{
			Subject:       d.Subject,
			Body:          MessageBody{ContentType: normaliseBodyType(d.BodyType), Content: d.Body},
			ToRecipients:  to,
			CcRecipients:  makeRecipients(d.Cc),
			BccRecipients: makeRecipients(d.Bcc),
		},
		SaveToSentItems: d.SaveToSentItems,
	}, nil
}

// makeRecipients converts plain addresses into Graph recipient objects.
func makeRecipients(addresses []string) []Recipient {
	if len(addresses) == 0 {
		return nil
	}
	recipients := make([]Recipient, 0, len(addresses))
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		recipients = append(recipients, Recipient{EmailAddress: EmailAddress{Address: addr}})
	}
	return recipients
}

// normaliseBodyType maps caller input onto the content types Graph accepts.
func normaliseBodyType(bodyType string) string {
	if strings.EqualFold(bodyType, "html") {
		return "HTML"
	}
	return "Text"
}
