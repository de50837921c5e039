package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adpilothq/adpilot-cli/internal/api"
	"github.com/adpilothq/adpilot-cli/internal/profiles"
	"github.com/adpilothq/adpilot-cli/internal/workingctx"
)

// Package-level collaborators for tool handlers, set by ServeStdio.
var (
	apiClient *api.Client
	ctxStore  workingctx.Store
	resolver  *profiles.Resolver
)

const serverInstructions = `AdPilot - Amazon Advertising data for AI agents

You are connected to AdPilot, which imports Amazon Advertising data
(profiles, campaigns, keywords, performance) and makes it queryable here.

## Profile workflow
1. Call list_profiles to see the account's profiles. Each gets a transient
   number (#1, #2, ...) you can use in every other tool. Numbers are only
   valid against the latest listing - re-list rather than guessing.
2. A profile must be activated before its data can be queried. Call
   activate_profile once; the import takes a while. Use check_profile_status
   to see progress.
3. Call set_current_profile to remember a profile across calls. Tools that
   take an optional 'profile' argument fall back to it.

## Rules
- When data is reported as still importing, tell the user the estimated
  wait instead of treating it as an error.
- Never invent profile numbers or identifiers; list first.
- Bid and state changes are live changes to the user's advertising account.
  Confirm with the user before calling update_campaign_state or
  update_keyword_bid unless they already gave explicit values.`

// ServeStdio starts the MCP server over stdio using the official go-sdk.
func ServeStdio(client *api.Client, store workingctx.Store) error {
	if client == nil {
		return errors.New("api client is required")
	}
	if store == nil {
		return errors.New("working context store is required")
	}
	apiClient = client
	ctxStore = store
	resolver = profiles.NewResolver(client)

	// Restore agent attribution from a previous stdio run, if any.
	if LoadPersistedSession() {
		setAgentInfoFromSession(client)
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "adpilot",
			Version: "1.4.0",
		},
		&mcp.ServerOptions{
			CompletionHandler: completionHandler,
			Instructions:      serverInstructions,
		},
	)

	registerTools(server)
	registerResources(server)
	registerPrompts(server)

	return server.Run(context.Background(), &mcp.StdioTransport{})
}

// textResult wraps formatted prose in a successful CallToolResult. Every
// tool outcome, including soft warnings and try-later conditions, travels
// as text content.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult flags the result as an error while still returning well-formed
// content, so tool failures never surface as protocol faults.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}

// renderAPIError maps a backend failure into user-facing text. The
// distinguished not-ready shape is informational with a wait estimate,
// never an error.
func renderAPIError(err error) (*mcp.CallToolResult, any, error) {
	var notReady *api.NotReadyError
	if errors.As(err, &notReady) {
		return textResult(notReady.Hint())
	}
	return errorResult("Error: " + err.Error())
}
