// Package mcpserver exposes the mailbox to AI agents over the Model
// Context Protocol. Tools cover mail and calendar operations; the
// protocol travels on stdout, so all logging goes to stderr.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/outlook-mcp/internal/msgraph"
	"github.com/custodia-labs/outlook-mcp/internal/msgraph/calendar"
	"github.com/custodia-labs/outlook-mcp/internal/msgraph/outlook"
)

// serverName identifies this server to MCP clients.
const serverName = "outlook-mcp"

// Deps are the services the tools call into.
type Deps struct {
	Graph    *msgraph.Client
	Mail     *outlook.Service
	Calendar *calendar.Service
	Version  string
}

// Server is the MCP driving adapter.
type Server struct {
	mcp      *mcp.Server
	graph    *msgraph.Client
	mail     *outlook.Service
	calendar *calendar.Service
}

// New builds the server and registers every tool.
func New(deps Deps) *Server {
	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Title:   "Outlook Mail & Calendar",
			Version: deps.Version,
		}, nil),
		graph:    deps.Graph,
		mail:     deps.Mail,
		calendar: deps.Calendar,
	}

	s.registerMailTools()
	s.registerCalendarTools()
	s.registerUserTools()

	return s
}

// Run serves the protocol over stdio until the context is cancelled or
// the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// textResult wraps plain text in a tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

type emptyInput struct{}

func (s *Server) registerUserTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get-current-user",
		Description: "Get the signed-in user's display name and email address.",
	}, s.handleGetCurrentUser)
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	user, err := s.graph.GetMe(ctx)
	if err != nil {
		return nil, nil, err
	}

	return textResult(fmt.Sprintf("Signed in as %s (%s)", user.DisplayName, user.Email())), nil, nil
}
