// Package outlook exposes the Outlook mail surface of Microsoft Graph:
// listing, searching, reading, sending and filing messages under /me.
package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/outlook-mcp/internal/msgraph"
)

const (
	// defaultTop is the page size used when the caller does not ask for one.
	defaultTop = 25
	// maxTop caps page sizes at the Graph API limit.
	maxTop = 1000
	// defaultOrder returns newest messages first.
	defaultOrder = "receivedDateTime desc"
)

// listFields keeps list payloads small; full bodies come from GetMessage.
var listFields = []string{
	"id", "subject", "bodyPreview", "from", "toRecipients", "ccRecipients",
	"receivedDateTime", "sentDateTime", "isRead", "isDraft", "importance",
	"conversationId", "parentFolderId", "webLink", "hasAttachments",
}

// detailFields adds the body and delivery metadata for single-message reads.
var detailFields = []string{
	"id", "subject", "bodyPreview", "body", "from", "toRecipients", "ccRecipients",
	"bccRecipients", "receivedDateTime", "sentDateTime", "isRead", "isDraft",
	"importance", "conversationId", "parentFolderId", "webLink", "hasAttachments",
	"internetMessageId",
}

// folderFields covers what the folder listing renders.
var folderFields = []string{
	"id", "displayName", "parentFolderId", "childFolderCount",
	"unreadItemCount", "totalItemCount",
}

// ListOptions shapes a mailbox listing.
type ListOptions struct {
	// FolderID scopes the listing to one folder. Accepts a folder id or a
	// well-known name such as FolderInbox. Empty means the whole mailbox.
	FolderID string
	// Top is the maximum number of messages to return.
	Top int
	// Filter is a raw OData $filter clause, e.g. "isRead eq false".
	Filter string
	// OrderBy is a raw OData $orderby clause.
	OrderBy string
}

// Service provides mail operations on the signed-in user's mailbox.
type Service struct {
	client *msgraph.Client
}

// NewService creates a mail service backed by the given Graph client.
func NewService(client *msgraph.Client) *Service {
	return &Service{client: client}
}

// ListMessages returns one page of messages, newest first unless the caller
// orders otherwise.
func (s *Service) ListMessages(ctx context.Context, opts ListOptions) ([]Message, error) {
	reqOpts := &msgraph.RequestOptions{
		Select:  listFields,
		Top:     clampTop(opts.Top),
		Filter:  opts.Filter,
		OrderBy: opts.OrderBy,
	}
	// Graph rejects $orderby combined with most $filter clauses, so the
	// default ordering only applies to unfiltered listings.
	if reqOpts.OrderBy == "" && reqOpts.Filter == "" {
		reqOpts.OrderBy = defaultOrder
	}

	raw, err := s.client.MakeRequest(ctx, messagesPath(opts.FolderID), reqOpts)
	if err != nil {
		return nil, err
	}
	return decodeMessages(raw)
}

// SearchMessages runs a full-text search across the mailbox. Search results
// come back in relevance order; Graph does not allow reordering them.
func (s *Service) SearchMessages(ctx context.Context, query string, top int) ([]Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	reqOpts := &msgraph.RequestOptions{
		Select: listFields,
		Top:    clampTop(top),
		Search: query,
	}
	raw, err := s.client.MakeRequest(ctx, "/me/messages", reqOpts)
	if err != nil {
		return nil, err
	}
	return decodeMessages(raw)
}

// GetMessage fetches a single message including its full body.
func (s *Service) GetMessage(ctx context.Context, id string) (*Message, error) {
	if id == "" {
		return nil, ErrNoMessageID
	}

	raw, err := s.client.MakeRequest(ctx, messagePath(id), &msgraph.RequestOptions{Select: detailFields})
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &msg, nil
}

// GetMessages fetches up to twenty messages in a single batched round trip.
// Results come back in the order ids were given; lookups succeed or fail
// per entry.
func (s *Service) GetMessages(ctx context.Context, ids []string) ([]MessageResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	selectClause := strings.Join(detailFields, ",")
	requests := make([]msgraph.BatchRequest, len(ids))
	for i, id := range ids {
		if id == "" {
			return nil, ErrNoMessageID
		}
		requests[i] = msgraph.BatchRequest{
			Method: http.MethodGet,
			URL:    fmt.Sprintf("%s?$select=%s", messagePath(id), selectClause),
		}
	}

	responses, err := s.client.MakeBatchRequest(ctx, requests)
	if err != nil {
		return nil, err
	}

	results := make([]MessageResult, len(responses))
	for i, resp := range responses {
		results[i].ID = ids[i]
		if resp.Status >= http.StatusBadRequest {
			results[i].Err = msgraph.Classify(resp.Status, resp.Body, "")
			continue
		}
		var msg Message
		if err := json.Unmarshal(resp.Body, &msg); err != nil {
			results[i].Err = fmt.Errorf("decode message %s: %w", ids[i], err)
			continue
		}
		results[i].Message = &msg
	}
	return results, nil
}

// SendMessage submits a draft for delivery.
func (s *Service) SendMessage(ctx context.Context, draft *Draft) error {
	payload, err := draft.payload()
	if err != nil {
		return err
	}

	// Graph replies 202 Accepted with an empty body on success.
	_, err = s.client.PostWithRetry(ctx, "/me/sendMail", payload)
	return err
}

// MoveMessage files a message into another folder and returns the moved
// copy, which carries a new id.
func (s *Service) MoveMessage(ctx context.Context, id, destinationID string) (*Message, error) {
	if id == "" {
		return nil, ErrNoMessageID
	}
	if destinationID == "" {
		return nil, ErrNoDestination
	}

	body := map[string]string{"destinationId": destinationID}
	raw, err := s.client.PostWithRetry(ctx, messagePath(id)+"/move", body)
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decode moved message: %w", err)
	}
	return &msg, nil
}

// DeleteMessage moves a message to Deleted Items.
func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	if id == "" {
		return ErrNoMessageID
	}

	_, err := s.client.DeleteWithRetry(ctx, messagePath(id))
	return err
}

// SetRead marks a message read or unread and returns the updated message.
func (s *Service) SetRead(ctx context.Context, id string, read bool) (*Message, error) {
	if id == "" {
		return nil, ErrNoMessageID
	}

	raw, err := s.client.PatchWithRetry(ctx, messagePath(id), map[string]bool{"isRead": read})
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decode updated message: %w", err)
	}
	return &msg, nil
}

// ListFolders returns every mail folder in the mailbox, walking all pages.
func (s *Service) ListFolders(ctx context.Context) ([]MailFolder, error) {
	it := s.client.IterateAllPages("/me/mailFolders", &msgraph.RequestOptions{
		Select: folderFields,
		Top:    defaultTop,
	})

	items, err := it.Collect(ctx)
	if err != nil {
		return nil, err
	}

	folders := make([]MailFolder, 0, len(items))
	for _, item := range items {
		var folder MailFolder
		if err := json.Unmarshal(item, &folder); err != nil {
			return nil, fmt.Errorf("decode mail folder: %w", err)
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

// messagesPath returns the collection path, folder-scoped when asked.
func messagesPath(folderID string) string {
	if folderID == "" {
		return "/me/messages"
	}
	return fmt.Sprintf("/me/mailFolders/%s/messages", url.PathEscape(folderID))
}

// messagePath returns the path of a single message.
func messagePath(id string) string {
	return "/me/messages/" + url.PathEscape(id)
}

// clampTop keeps page sizes positive and inside the Graph API limit.
func clampTop(top int) int {
	switch {
	case top <= 0:
		return defaultTop
	case top > maxTop:
		return maxTop
	default:
		return top
	}
}

// decodeMessages unwraps a Graph collection envelope.
func decodeMessages(raw json.RawMessage) ([]Message, error) {
	var envelope struct {
		Value []Message `json:"value"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode message list: %w", err)
	}
	return envelope.Value, nil
}
