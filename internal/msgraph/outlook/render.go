package outlook

import (
	"fmt"
	"strings"
	"time"
)

// FormatMessage renders a full message, headers then body, for display.
func FormatMessage(msg *Message) string {
	var sb strings.Builder

	// Subject
	sb.WriteString("Subject: ")
	sb.WriteString(msg.Subject)
	sb.WriteString("\n")

	// From
	if msg.From != nil {
		sb.WriteString("From: ")
		sb.WriteString(msg.From.EmailAddress.String())
		sb.WriteString("\n")
	}

	// To
	if len(msg.ToRecipients) > 0 {
		sb.WriteString("To: ")
		sb.WriteString(formatRecipients(msg.ToRecipients))
		sb.WriteString("\n")
	}

	// Cc
	if len(msg.CcRecipients) > 0 {
		sb.WriteString("Cc: ")
		sb.WriteString(formatRecipients(msg.CcRecipients))
		sb.WriteString("\n")
	}

	// Date
	if msg.ReceivedDateTime != "" {
		if t, err := time.Parse(time.RFC3339, msg.ReceivedDateTime); err == nil {
			sb.WriteString("Date: ")
			sb.WriteString(t.Format(time.RFC1123Z))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("Message ID: ")
	sb.WriteString(msg.ID)
	sb.WriteString("\n")

	if msg.HasAttachments {
		sb.WriteString("Attachments: yes\n")
	}

	sb.WriteString("\n")

	// Body
	switch {
	case msg.Body != nil && msg.Body.Content != "":
		content := msg.Body.Content
		if strings.EqualFold(msg.Body.ContentType, "html") {
			content = stripHTMLTags(content)
		}
		sb.WriteString(content)
	case msg.BodyPreview != "":
		sb.WriteString(msg.BodyPreview)
	}

	return sb.String()
}

// FormatMessageSummary renders the one-paragraph form used in listings.
func FormatMessageSummary(msg *Message) string {
	var sb strings.Builder

	marker := " "
	if !msg.IsRead {
		marker = "*"
	}

	from := ""
	if msg.From != nil {
		from = msg.From.EmailAddress.String()
	}

	sb.WriteString(fmt.Sprintf("%s %s\n", marker, msg.Subject))
	if from != "" {
		sb.WriteString(fmt.Sprintf("  From: %s\n", from))
	}
	if msg.ReceivedDateTime != "" {
		sb.WriteString(fmt.Sprintf("  Received: %s\n", msg.ReceivedDateTime))
	}
	if msg.BodyPreview != "" {
		sb.WriteString(fmt.Sprintf("  Preview: %s\n", firstLine(msg.BodyPreview)))
	}
	sb.WriteString(fmt.Sprintf("  ID: %s", msg.ID))

	return sb.String()
}

// FormatMessageList renders a listing with a count header. Unread messages
// are marked with an asterisk.
func FormatMessageList(messages []Message) string {
	if len(messages) == 0 {
		return "No messages found."
	}

	parts := make([]string, 0, len(messages)+1)
	parts = append(parts, fmt.Sprintf("%d message(s):", len(messages)))
	for i := range messages {
		parts = append(parts, FormatMessageSummary(&messages[i]))
	}
	return strings.Join(parts, "\n\n")
}

// FormatFolderList renders the mailbox folder tree as a flat listing.
func FormatFolderList(folders []MailFolder) string {
	if len(folders) == 0 {
		return "No mail folders found."
	}

	parts := make([]string, 0, len(folders)+1)
	parts = append(parts, fmt.Sprintf("%d folder(s):", len(folders)))
	for _, folder := range folders {
		parts = append(parts, fmt.Sprintf("%s (%d items, %d unread)\n  ID: %s",
			folder.DisplayName, folder.TotalItemCount, folder.UnreadItemCount, folder.ID))
	}
	return strings.Join(parts, "\n")
}

// formatRecipients formats a list of recipients for display.
func formatRecipients(recipients []Recipient) string {
	names := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if s := r.EmailAddress.String(); s != "" {
			names = append(names, s)
		}
	}
	return strings.Join(names, ", ")
}

// stripHTMLTags removes HTML tags from a string (simple implementation).
func stripHTMLTags(s string) string {
	var result strings.Builder
	var inTag bool

	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// firstLine truncates preview text at the first line break.
func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
