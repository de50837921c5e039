package mcp

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adpilothq/adpilot-cli/internal/models"
	"github.com/adpilothq/adpilot-cli/internal/profiles"
)

func boolPtr(b bool) *bool { return &b }

// registerTools registers all MCP tools with the server. The SDK infers
// each InputSchema from the handler's input struct type.
func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "setup_agent",
		Description: "Initialize the agent session. Provide your agent name and model so backend changes can be attributed. Optional but recommended as the first call.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Initialize Agent Session",
			IdempotentHint:  true,
			DestructiveHint: boolPtr(false),
		},
	}, handleSetupAgent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_profiles",
		Description: "List the account's Amazon Advertising profiles with their transient numbers (#1, #2, ...), activation state and import status. Numbers are only valid against this listing - re-list before reusing one from an earlier session.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "List Profiles",
			ReadOnlyHint: true,
		},
	}, handleListProfiles)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_current_profile",
		Description: "Remember a profile as the current working profile for subsequent calls. Accepts a listing number (\"2\" or \"#2\") or a profile id. The profile must already be activated; a profile whose import is still running is accepted with a warning.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Set Current Profile",
			DestructiveHint: boolPtr(false),
		},
	}, handleSetCurrentProfile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_current_profile",
		Description: "Show the remembered working profile, if any.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "Get Current Profile",
			ReadOnlyHint: true,
		},
	}, handleGetCurrentProfile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "activate_profile",
		Description: "Request data import (MCP activation) for a profile so it becomes queryable. Accepts a listing number or profile id. Import runs in the background; poll check_profile_status for progress.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Activate Profile",
			DestructiveHint: boolPtr(false),
		},
	}, handleActivateProfile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "deactivate_profile",
		Description: "Remove a profile from MCP querying. Accepts a listing number or profile id. Safe to repeat.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Deactivate Profile",
			IdempotentHint: true,
		},
	}, handleDeactivateProfile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_profile_status",
		Description: "Check the import/activation status of a profile: current phase, estimated minutes remaining and import progress. Defaults to the current working profile when no profile is given.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "Check Profile Status",
			ReadOnlyHint: true,
		},
	}, handleCheckProfileStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_campaigns",
		Description: "List campaigns for a profile, optionally filtered by state (enabled, paused, archived). Defaults to the current working profile when no profile is given.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "List Campaigns",
			ReadOnlyHint: true,
		},
	}, handleListCampaigns)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_campaign_state",
		Description: "Change a campaign's state to enabled, paused or archived. This is a live change to the user's advertising account - confirm before calling.",
		Annotations: &mcp.ToolAnnotations{
			Title: "Update Campaign State",
		},
	}, handleUpdateCampaignState)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_keywords",
		Description: "List the keywords of a campaign with match type, state and bid.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "List Keywords",
			ReadOnlyHint: true,
		},
	}, handleListKeywords)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_keyword_bid",
		Description: "Change a keyword's bid. This is a live change to the user's advertising account - confirm before calling.",
		Annotations: &mcp.ToolAnnotations{
			Title: "Update Keyword Bid",
		},
	}, handleUpdateKeywordBid)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_performance",
		Description: "Get daily performance metrics (impressions, clicks, spend, sales, orders, ACOS) for a profile over a date range (YYYY-MM-DD, inclusive). Defaults to the current working profile when no profile is given.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "Get Performance",
			ReadOnlyHint: true,
		},
	}, handleGetPerformance)
}

// ToolDefinition is a name/description pair for `adpilot mcp tools`.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolDefinitions lists the tools this server exposes.
func ToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{"setup_agent", "Initialize the agent session"},
		{"list_profiles", "List profiles with numbers, activation state and import status"},
		{"set_current_profile", "Remember a profile as the current working profile"},
		{"get_current_profile", "Show the remembered working profile"},
		{"activate_profile", "Request data import for a profile"},
		{"deactivate_profile", "Remove a profile from MCP querying"},
		{"check_profile_status", "Check import progress of a profile"},
		{"list_campaigns", "List campaigns for a profile"},
		{"update_campaign_state", "Change a campaign's state"},
		{"list_keywords", "List the keywords of a campaign"},
		{"update_keyword_bid", "Change a keyword's bid"},
		{"get_performance", "Get daily performance metrics for a profile"},
	}
}

const resolutionGuidance = "No profile matches %q in the current listing. Profile numbers change between listings - call list_profiles and pick a number or id from the latest result."

// profileStatusLabel renders a profile's lifecycle phase for listings.
func profileStatusLabel(p models.Profile) string {
	if !p.MCPActivated {
		return "not activated"
	}
	if p.MCPDataStatus == models.StatusReady {
		return "ready"
	}
	if p.EstimatedMinutes != nil {
		return fmt.Sprintf("%s (~%d min remaining)", p.MCPDataStatus, *p.EstimatedMinutes)
	}
	return string(p.MCPDataStatus)
}

// resolveOrDefault resolves an explicit profile reference, falling back to
// the working context when ref is empty. The second return value is
// guidance text for the caller when resolution fails.
func resolveOrDefault(ref string) (profiles.Identity, string, bool) {
	ref = strings.TrimSpace(ref)
	if ref != "" {
		id, ok := resolver.Resolve(ref)
		if !ok {
			return profiles.Identity{}, fmt.Sprintf(resolutionGuidance, ref), false
		}
		return id, "", true
	}

	if wc, ok := ctxStore.Read(); ok {
		return profiles.Identity{ID: wc.ProfileID, Name: wc.ProfileName, Region: wc.Region}, "", true
	}
	return profiles.Identity{}, "No profile specified and no current profile is set. Pass a profile (e.g. \"#2\") or call set_current_profile first.", false
}

type EmptyInput struct{}

type SetupAgentInput struct {
	AgentName  string `json:"agent_name"`
	AgentModel string `json:"agent_model,omitempty"`
}

func handleSetupAgent(_ context.Context, _ *mcp.CallToolRequest, input SetupAgentInput) (*mcp.CallToolResult, any, error) {
	agentName := strings.TrimSpace(input.AgentName)
	if agentName == "" {
		agentName = "unknown-agent"
	}

	session := InitializeSession(agentName, strings.TrimSpace(input.AgentModel))
	setAgentInfoFromSession(apiClient)

	var b strings.Builder
	fmt.Fprintf(&b, "Session initialized for %s", session.AgentName)
	if session.AgentModel != "" {
		fmt.Fprintf(&b, " (%s)", session.AgentModel)
	}
	b.WriteString(".\n")

	if wc, ok := ctxStore.Read(); ok {
		fmt.Fprintf(&b, "Current working profile: #%d %s (%s), selected %s.\n",
			wc.ProfileNumber, wc.ProfileName, wc.Region, wc.SetAt.Format("2006-01-02 15:04"))
	} else {
		b.WriteString("No working profile is set yet.\n")
	}
	b.WriteString("Call list_profiles to see the account's profiles.")

	return textResult(b.String())
}

func handleListProfiles(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, any, error) {
	list, err := apiClient.ListProfiles()
	if err != nil {
		return renderAPIError(err)
	}

	if len(list.Profiles) == 0 {
		return textResult("No profiles found for this account.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Profiles (%d):\n\n", list.Count)
	for _, p := range list.Profiles {
		fmt.Fprintf(&b, "  #%d  %s [%s]  id=%s  — %s\n", p.Number, p.Name, p.Region, p.ID, profileStatusLabel(p))
	}
	b.WriteString("\nUse set_current_profile with a number (e.g. \"#2\") to choose a working profile.")
	b.WriteString(" Profiles marked \"not activated\" need activate_profile before their data can be queried.")

	return textResult(b.String())
}

type SetCurrentProfileInput struct {
	Profile string `json:"profile"`
}

func handleSetCurrentProfile(_ context.Context, _ *mcp.CallToolRequest, input SetCurrentProfileInput) (*mcp.CallToolResult, any, error) {
	ref := strings.TrimSpace(input.Profile)
	if ref == "" {
		return errorResult("profile is required (a listing number like \"#2\" or a profile id)")
	}

	p, ok := resolver.Lookup(ref)
	if !ok {
		return errorResult(fmt.Sprintf(resolutionGuidance, ref))
	}

	// Never adopt a profile that was never activated; the working context
	// exists to default data queries, and those would all fail.
	if !p.MCPActivated {
		return errorResult(fmt.Sprintf(
			"Profile #%d %s (%s) has not been activated for MCP querying. Call activate_profile with \"#%d\" first, then set it as current.",
			p.Number, p.Name, p.Region, p.Number))
	}

	wc := &models.WorkingContext{
		ProfileID:     p.ID,
		ProfileNumber: p.Number,
		ProfileName:   p.Name,
		Region:        p.Region,
		SetAt:         time.Now().UTC(),
	}

	var persistNote string
	if err := ctxStore.Write(wc); err != nil {
		// The working context is a convenience; a write failure must not
		// abort the selection the user asked for.
		log.Printf("failed to persist working context: %v", err)
		persistNote = fmt.Sprintf("\nNote: the selection could not be saved to disk (%v); it may not survive until the next call.", err)
	}

	if p.MCPDataStatus != models.StatusReady {
		msg := fmt.Sprintf("⚠️ Current profile set to #%d %s (%s), but its data import is not finished (status: %s",
			p.Number, p.Name, p.Region, p.MCPDataStatus)
		if p.EstimatedMinutes != nil {
			msg += fmt.Sprintf(", ~%d minutes remaining", *p.EstimatedMinutes)
		}
		msg += "). Queries may return partial or no data until the import completes."
		return textResult(msg + persistNote)
	}

	return textResult(fmt.Sprintf("✅ Current profile set to #%d %s (%s).", p.Number, p.Name, p.Region) + persistNote)
}

func handleGetCurrentProfile(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, any, error) {
	wc, ok := ctxStore.Read()
	if !ok {
		return textResult("No current profile is set. Call list_profiles, then set_current_profile with a number like \"#2\".")
	}

	return textResult(fmt.Sprintf(
		"Current working profile: #%d %s (%s)\nid: %s\nselected: %s\n\nThe number was valid when the profile was selected; the latest listing may order profiles differently.",
		wc.ProfileNumber, wc.ProfileName, wc.Region, wc.ProfileID, wc.SetAt.Format(time.RFC3339)))
}

type ProfileRefInput struct {
	Profile string `json:"profile"`
}

func handleActivateProfile(_ context.Context, _ *mcp.CallToolRequest, input ProfileRefInput) (*mcp.CallToolResult, any, error) {
	ref := strings.TrimSpace(input.Profile)
	if ref == "" {
		return errorResult("profile is required (a listing number like \"#1\" or a profile id)")
	}

	id, ok := resolver.Resolve(ref)
	if !ok {
		return errorResult(fmt.Sprintf(resolutionGuidance, ref))
	}

	// No local state pre-check: the backend is the single source of truth
	// and answers already-activated profiles itself.
	res, err := apiClient.ActivateProfile(id.ID)
	if err != nil {
		return renderAPIError(err)
	}

	msg := fmt.Sprintf("Activation requested for profile %s. Import status: %s.", id.Label(), res.Status)
	if res.EstimatedMinutes != nil {
		msg += fmt.Sprintf(" Estimated import time: ~%d minutes.", *res.EstimatedMinutes)
	}
	msg += " Use check_profile_status to follow progress."
	return textResult(msg)
}

func handleDeactivateProfile(_ context.Context, _ *mcp.CallToolRequest, input ProfileRefInput) (*mcp.CallToolResult, any, error) {
	ref := strings.TrimSpace(input.Profile)
	if ref == "" {
		return errorResult("profile is required (a listing number like \"#1\" or a profile id)")
	}

	id, ok := resolver.Resolve(ref)
	if !ok {
		return errorResult(fmt.Sprintf(resolutionGuidance, ref))
	}

	res, err := apiClient.DeactivateProfile(id.ID)
	if err != nil {
		return renderAPIError(err)
	}

	if res.Message != "" {
		return textResult(res.Message)
	}
	return textResult(fmt.Sprintf("Profile %s removed from MCP querying.", id.Label()))
}

type OptionalProfileInput struct {
	Profile string `json:"profile,omitempty"`
}

func handleCheckProfileStatus(_ context.Context, _ *mcp.CallToolRequest, input OptionalProfileInput) (*mcp.CallToolResult, any, error) {
	id, guidance, ok := resolveOrDefault(input.Profile)
	if !ok {
		return errorResult(guidance)
	}

	status, err := apiClient.ProfileStatus(id.ID)
	if err != nil {
		return renderAPIError(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Profile %s\n", id.Label())
	if status.Available {
		b.WriteString("Status: ready — data is imported and queryable.")
		return textResult(b.String())
	}

	fmt.Fprintf(&b, "Status: %s", status.Reason)
	if status.EstimatedMinutes != nil {
		fmt.Fprintf(&b, " (~%d minutes remaining)", *status.EstimatedMinutes)
	}
	b.WriteString("\n")
	if status.Message != "" {
		b.WriteString(status.Message + "\n")
	}
	if ip := status.ImportProgress; ip != nil {
		fmt.Fprintf(&b, "Import progress: %d of %d days (%.0f%%)\n", ip.UniqueDates, ip.ExpectedDays, ip.ProgressPercent)
	}
	b.WriteString("Data queries will report \"not ready\" until the import completes.")

	return textResult(b.String())
}

type ListCampaignsInput struct {
	Profile string `json:"profile,omitempty"`
	State   string `json:"state,omitempty"`
}

func handleListCampaigns(_ context.Context, _ *mcp.CallToolRequest, input ListCampaignsInput) (*mcp.CallToolResult, any, error) {
	id, guidance, ok := resolveOrDefault(input.Profile)
	if !ok {
		return errorResult(guidance)
	}

	state := strings.ToLower(strings.TrimSpace(input.State))
	if state != "" && !validCampaignState(state) {
		return errorResult("state must be one of: enabled, paused, archived")
	}

	campaigns, err := apiClient.ListCampaigns(id.ID, state)
	if err != nil {
		return renderAPIError(err)
	}

	if len(campaigns) == 0 {
		return textResult(fmt.Sprintf("No campaigns found for profile %s.", id.Label()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Campaigns for profile %s (%d):\n\n", id.Label(), len(campaigns))
	for _, c := range campaigns {
		fmt.Fprintf(&b, "  %s  %s  [%s]", c.ID, c.Name, c.State)
		if c.DailyBudget > 0 {
			fmt.Fprintf(&b, "  budget %.2f/day", c.DailyBudget)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nUse list_keywords with a campaign id to inspect keywords.")

	return textResult(b.String())
}

func validCampaignState(state string) bool {
	switch state {
	case "enabled", "paused", "archived":
		return true
	}
	return false
}

type UpdateCampaignStateInput struct {
	CampaignID string `json:"campaign_id"`
	State      string `json:"state"`
}

func handleUpdateCampaignState(_ context.Context, _ *mcp.CallToolRequest, input UpdateCampaignStateInput) (*mcp.CallToolResult, any, error) {
	campaignID := strings.TrimSpace(input.CampaignID)
	if campaignID == "" {
		return errorResult("campaign_id is required")
	}
	state := strings.ToLower(strings.TrimSpace(input.State))
	if !validCampaignState(state) {
		return errorResult("state must be one of: enabled, paused, archived")
	}

	campaign, err := apiClient.UpdateCampaignState(campaignID, state)
	if err != nil {
		return renderAPIError(err)
	}

	return textResult(fmt.Sprintf("✅ Campaign %s (%s) is now %s.", campaign.Name, campaign.ID, campaign.State))
}

type ListKeywordsInput struct {
	CampaignID string `json:"campaign_id"`
}

func handleListKeywords(_ context.Context, _ *mcp.CallToolRequest, input ListKeywordsInput) (*mcp.CallToolResult, any, error) {
	campaignID := strings.TrimSpace(input.CampaignID)
	if campaignID == "" {
		return errorResult("campaign_id is required")
	}

	keywords, err := apiClient.ListKeywords(campaignID)
	if err != nil {
		return renderAPIError(err)
	}

	if len(keywords) == 0 {
		return textResult(fmt.Sprintf("No keywords found for campaign %s.", campaignID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Keywords for campaign %s (%d):\n\n", campaignID, len(keywords))
	for _, k := range keywords {
		fmt.Fprintf(&b, "  %s  %q  %s/%s  bid %.2f\n", k.ID, k.Text, k.MatchType, k.State, k.Bid)
	}

	return textResult(b.String())
}

type UpdateKeywordBidInput struct {
	KeywordID string  `json:"keyword_id"`
	Bid       float64 `json:"bid"`
}

func handleUpdateKeywordBid(_ context.Context, _ *mcp.CallToolRequest, input UpdateKeywordBidInput) (*mcp.CallToolResult, any, error) {
	keywordID := strings.TrimSpace(input.KeywordID)
	if keywordID == "" {
		return errorResult("keyword_id is required")
	}
	if input.Bid <= 0 {
		return errorResult("bid must be a positive amount")
	}

	keyword, err := apiClient.UpdateKeywordBid(keywordID, input.Bid)
	if err != nil {
		return renderAPIError(err)
	}

	return textResult(fmt.Sprintf("✅ Keyword %q (%s) bid is now %.2f.", keyword.Text, keyword.ID, keyword.Bid))
}

type PerformanceInput struct {
	Profile   string `json:"profile,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func handleGetPerformance(_ context.Context, _ *mcp.CallToolRequest, input PerformanceInput) (*mcp.CallToolResult, any, error) {
	id, guidance, ok := resolveOrDefault(input.Profile)
	if !ok {
		return errorResult(guidance)
	}

	start, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		return errorResult("start_date must be formatted YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", input.EndDate)
	if err != nil {
		return errorResult("end_date must be formatted YYYY-MM-DD")
	}
	if end.Before(start) {
		return errorResult("end_date must not be before start_date")
	}

	report, err := apiClient.GetPerformance(id.ID, input.StartDate, input.EndDate)
	if err != nil {
		return renderAPIError(err)
	}

	if len(report.Rows) == 0 {
		return textResult(fmt.Sprintf("No performance data for profile %s between %s and %s.", id.Label(), input.StartDate, input.EndDate))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Performance for profile %s, %s to %s:\n\n", id.Label(), report.StartDate, report.EndDate)
	b.WriteString("  date        impressions  clicks  spend     sales     orders  acos\n")

	var impressions, clicks, orders int64
	var spend, sales float64
	for _, row := range report.Rows {
		fmt.Fprintf(&b, "  %s  %11d  %6d  %8.2f  %8.2f  %6d  %.1f%%\n",
			row.Date, row.Impressions, row.Clicks, row.Spend, row.Sales, row.Orders, row.ACOS)
		impressions += row.Impressions
		clicks += row.Clicks
		orders += row.Orders
		spend += row.Spend
		sales += row.Sales
	}

	fmt.Fprintf(&b, "\nTotals: %d impressions, %d clicks, %.2f spend, %.2f sales, %d orders.",
		impressions, clicks, spend, sales, orders)

	return textResult(b.String())
}
