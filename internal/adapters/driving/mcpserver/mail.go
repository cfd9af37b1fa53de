package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/outlook-mcp/internal/msgraph/outlook"
)

type listMailInput struct {
	Folder  string `json:"folder,omitempty" jsonschema:"Folder id or well-known name: inbox, sentitems, drafts, deleteditems, junkemail or archive. Empty lists the whole mailbox."`
	Top     int    `json:"top,omitempty" jsonschema:"Maximum number of messages to return. Defaults to 25."`
	Filter  string `json:"filter,omitempty" jsonschema:"OData $filter clause, e.g. 'isRead eq false'."`
	OrderBy string `json:"orderBy,omitempty" jsonschema:"OData $orderby clause. Graph rejects ordering combined with most filters."`
}

type searchMailInput struct {
	Query string `json:"query" jsonschema:"Free-text search across subjects, senders and bodies."`
	Top   int    `json:"top,omitempty" jsonschema:"Maximum number of results. Defaults to 25."`
}

type getMailMessageInput struct {
	MessageID string `json:"messageId" jsonschema:"Id of the message to fetch, as returned by the listing tools."`
}

type getMailMessagesInput struct {
	MessageIDs []string `json:"messageIds" jsonschema:"Up to 20 message ids to fetch in one round trip."`
}

type sendMailInput struct {
	To              []string `json:"to" jsonschema:"Recipient email addresses."`
	Cc              []string `json:"cc,omitempty" jsonschema:"Cc email addresses."`
	Bcc             []string `json:"bcc,omitempty" jsonschema:"Bcc email addresses."`
	Subject         string   `json:"subject,omitempty" jsonschema:"Subject line."`
	Body            string   `json:"body,omitempty" jsonschema:"Message content."`
	BodyType        string   `json:"bodyType,omitempty" jsonschema:"Body content type: Text or HTML. Defaults to Text."`
	SaveToSentItems *bool    `json:"saveToSentItems,omitempty" jsonschema:"Whether to keep a copy in Sent Items. Defaults to true."`
}

type moveMailInput struct {
	MessageID     string `json:"messageId" jsonschema:"Id of the message to move."`
	DestinationID string `json:"destinationId" jsonschema:"Target folder id or well-known name such as archive."`
}

type deleteMailInput struct {
	MessageID string `json:"messageId" jsonschema:"Id of the message to delete."`
}

type markMailInput struct {
	MessageID string `json:"messageId" jsonschema:"Id of the message to update."`
	Read      bool   `json:"read" jsonschema:"True marks the message read, false marks it unread."`
}

func (s *Server) registerMailTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list-mail-messages",
		Description: "List messages in the mailbox or one folder, newest first.",
	}, s.handleListMail)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search-mail",
		Description: "Search the mailbox with free text, returning results in relevance order.",
	}, s.handleSearchMail)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get-mail-message",
		Description: "Read a single message including its full body.",
	}, s.handleGetMailMessage)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get-mail-messages",
		Description: "Read up to 20 messages by id in a single batched request.",
	}, s.handleGetMailMessages)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "send-mail",
		Description: "Send an email as the signed-in user.",
	}, s.handleSendMail)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "move-mail-message",
		Description: "Move a message to another folder. The message gets a new id.",
	}, s.handleMoveMail)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete-mail-message",
		Description: "Delete a message (it moves to Deleted Items).",
	}, s.handleDeleteMail)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mark-mail-message",
		Description: "Mark a message as read or unread.",
	}, s.handleMarkMail)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list-mail-folders",
		Description: "List every mail folder with its unread and total counts.",
	}, s.handleListMailFolders)
}

func (s *Server) handleListMail(ctx context.Context, _ *mcp.CallToolRequest, in listMailInput) (*mcp.CallToolResult, any, error) {
	messages, err := s.mail.ListMessages(ctx, outlook.ListOptions{
		FolderID: in.Folder,
		Top:      in.Top,
		Filter:   in.Filter,
		OrderBy:  in.OrderBy,
	})
	if err != nil {
		return nil, nil, err
	}

	return textResult(outlook.FormatMessageList(messages)), nil, nil
}

func (s *Server) handleSearchMail(ctx context.Context, _ *mcp.CallToolRequest, in searchMailInput) (*mcp.CallToolResult, any, error) {
	messages, err := s.mail.SearchMessages(ctx, in.Query, in.Top)
	if err != nil {
		return nil, nil, err
	}

	return textResult(outlook.FormatMessageList(messages)), nil, nil
}

func (s *Server) handleGetMailMessage(ctx context.Context, _ *mcp.CallToolRequest, in getMailMessageInput) (*mcp.CallToolResult, any, error) {
	msg, err := s.mail.GetMessage(ctx, in.MessageID)
	if err != nil {
		return nil, nil, err
	}

	return textResult(outlook.FormatMessage(msg)), nil, nil
}

func (s *Server) handleGetMailMessages(ctx context.Context, _ *mcp.CallToolRequest, in getMailMessagesInput) (*mcp.CallToolResult, any, error) {
	results, err := s.mail.GetMessages(ctx, in.MessageIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(results) == 0 {
		return textResult("No message ids given."), nil, nil
	}

	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		if res.Err != nil {
			fmt.Fprintf(&b, "Message %s: %v", res.ID, res.Err)
			continue
		}
		b.WriteString(outlook.FormatMessage(res.Message))
	}

	return textResult(b.String()), nil, nil
}

func (s *Server) handleSendMail(ctx context.Context, _ *mcp.CallToolRequest, in sendMailInput) (*mcp.CallToolResult, any, error) {
	save := true
	if in.SaveToSentItems != nil {
		save = *in.SaveToSentItems
	}

	draft := &outlook.Draft{
		Subject:         in.Subject,
		Body:            in.Body,
		BodyType:        in.BodyType,
		To:              in.To,
		Cc:              in.Cc,
		Bcc:             in.Bcc,
		SaveToSentItems: save,
	}
	if err := s.mail.SendMessage(ctx, draft); err != nil {
		return nil, nil, err
	}

	return textResult(fmt.Sprintf("Message sent to %s.", strings.Join(in.To, ", "))), nil, nil
}

func (s *Server) handleMoveMail(ctx context.Context, _ *mcp.CallToolRequest, in moveMailInput) (*mcp.CallToolResult, any, error) {
	moved, err := s.mail.MoveMessage(ctx, in.MessageID, in.DestinationID)
	if err != nil {
		return nil, nil, err
	}

	return textResult(fmt.Sprintf("Message moved.\nNew ID: %s", moved.ID)), nil, nil
}

func (s *Server) handleDeleteMail(ctx context.Context, _ *mcp.CallToolRequest, in deleteMailInput) (*mcp.CallToolResult, any, error) {
	if err := s.mail.DeleteMessage(ctx, in.MessageID); err != nil {
		return nil, nil, err
	}

	return textResult("Message moved to Deleted Items."), nil, nil
}

func (s *Server) handleMarkMail(ctx context.Context, _ *mcp.CallToolRequest, in markMailInput) (*mcp.CallToolResult, any, error) {
	msg, err := s.mail.SetRead(ctx, in.MessageID, in.Read)
	if err != nil {
		return nil, nil, err
	}

	status := "unread"
	if msg.IsRead {
		status = "read"
	}
	return textResult(fmt.Sprintf("Message %s marked as %s.", msg.ID, status)), nil, nil
}

func (s *Server) handleListMailFolders(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	folders, err := s.mail.ListFolders(ctx)
	if err != nil {
		return nil, nil, err
	}

	return textResult(outlook.FormatFolderList(folders)), nil, nil
}
