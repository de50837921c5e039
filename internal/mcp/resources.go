package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerResources adds MCP resources to the server.
func registerResources(server *mcp.Server) {
	server.AddResource(&mcp.Resource{
		URI:         "adpilot://profiles",
		Name:        "profiles",
		Description: "The account's profile directory with listing numbers and activation status",
		MIMEType:    "application/json",
	}, handleProfilesResource)

	server.AddResource(&mcp.Resource{
		URI:         "adpilot://context",
		Name:        "working-context",
		Description: "The locally persisted current working profile, if any",
		MIMEType:    "application/json",
	}, handleContextResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "adpilot://profiles/{id}/status",
		Name:        "profile-status",
		Description: "Import/activation status of a specific profile",
		MIMEType:    "application/json",
	}, handleProfileStatusResource)
}

func jsonResource(uri string, data interface{}) (*mcp.ReadResourceResult, error) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}

func handleProfilesResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	list, err := apiClient.ListProfiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return jsonResource(req.Params.URI, list)
}

func handleContextResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	wc, ok := ctxStore.Read()
	if !ok {
		return jsonResource(req.Params.URI, map[string]interface{}{"set": false})
	}
	return jsonResource(req.Params.URI, wc)
}

func handleProfileStatusResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id := strings.TrimSuffix(strings.TrimPrefix(req.Params.URI, "adpilot://profiles/"), "/status")
	if id == "" {
		return nil, fmt.Errorf("profile id missing in resource URI")
	}

	status, err := apiClient.ProfileStatus(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile status: %w", err)
	}
	return jsonResource(req.Params.URI, status)
}
