package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// completionHandler provides autocomplete suggestions for prompt and
// resource arguments.
func completionHandler(_ context.Context, req *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	argName := req.Params.Argument.Name
	argValue := strings.ToLower(req.Params.Argument.Value)

	var values []string
	switch argName {
	case "profile":
		values = completeProfileRefs(argValue)
	case "state":
		values = completeStaticValues(argValue, []string{"enabled", "paused", "archived"})
	case "days":
		values = completeStaticValues(argValue, []string{"7", "14", "30", "60"})
	default:
		values = []string{}
	}

	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values:  values,
			Total:   len(values),
			HasMore: false,
		},
	}, nil
}

// completeProfileRefs suggests "#N" refs with the profile name for context.
// Suggestions come from a fresh listing so the numbers are current.
func completeProfileRefs(prefix string) []string {
	if apiClient == nil {
		return []string{}
	}

	list, err := apiClient.ListProfiles()
	if err != nil {
		return []string{}
	}

	var matches []string
	for _, p := range list.Profiles {
		ref := fmt.Sprintf("#%d", p.Number)
		if prefix == "" ||
			strings.HasPrefix(ref, prefix) ||
			strings.HasPrefix(strings.ToLower(p.Name), prefix) {
			matches = append(matches, ref)
		}
		if len(matches) >= 20 {
			break
		}
	}
	return matches
}

// completeStaticValues filters a static list of values by prefix.
func completeStaticValues(prefix string, options []string) []string {
	if prefix == "" {
		return options
	}

	var matches []string
	for _, opt := range options {
		if strings.HasPrefix(strings.ToLower(opt), prefix) {
			matches = append(matches, opt)
		}
	}
	return matches
}
