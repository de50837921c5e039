package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts adds MCP prompt templates to the server.
func registerPrompts(server *mcp.Server) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "onboard_profile",
		Title:       "Onboard Profile",
		Description: "Activate a profile, wait for its import, and set it as the working profile",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "profile",
				Description: "Listing number (\"#2\") or profile id to onboard",
				Required:    true,
			},
		},
	}, handleOnboardProfilePrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "campaign_review",
		Title:       "Campaign Review",
		Description: "Review campaign performance and suggest bid or state changes",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "profile",
				Description: "Listing number or profile id (defaults to the current working profile)",
				Required:    false,
			},
			{
				Name:        "days",
				Description: "How many trailing days of performance to review (default 14)",
				Required:    false,
			},
		},
	}, handleCampaignReviewPrompt)
}

func handleOnboardProfilePrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	profile := req.Params.Arguments["profile"]
	if profile == "" {
		return nil, fmt.Errorf("profile is required")
	}

	promptText := fmt.Sprintf(`Onboard Amazon Advertising profile %q for querying:

1. Call list_profiles and confirm %q appears in the current listing. If it
   is a number, use the id from the same listing row from here on.
2. If the profile is marked "not activated", call activate_profile and tell
   the user the estimated import time.
3. Poll check_profile_status (no more than once a minute) until it reports
   ready, relaying the progress percentage and remaining minutes.
4. Once ready, call set_current_profile so follow-up questions default to
   this profile, and confirm to the user what was selected.

If any step reports that data is still importing, that is expected - report
the estimate and continue instead of treating it as an error.`, profile, profile)

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Onboard profile %s", profile),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText},
			},
		},
	}, nil
}

func handleCampaignReviewPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	profile := req.Params.Arguments["profile"]
	days := req.Params.Arguments["days"]
	if days == "" {
		days = "14"
	}

	profileClause := "the current working profile (call get_current_profile to confirm which one that is)"
	if profile != "" {
		profileClause = fmt.Sprintf("profile %q", profile)
	}

	promptText := fmt.Sprintf(`Review advertising performance for %s over the last %s days:

1. Call get_performance for the date range and summarize spend, sales and
   ACOS trends.
2. Call list_campaigns and flag campaigns that are paused but converting,
   or enabled with spend and no sales.
3. For the worst performer, call list_keywords and identify keywords whose
   bid looks out of line with their results.
4. Propose concrete changes (state or bid) with reasons, but make no
   update_campaign_state or update_keyword_bid call until the user approves
   the specific values.`, profileClause, days)

	return &mcp.GetPromptResult{
		Description: "Review campaign performance",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText},
			},
		},
	}, nil
}
