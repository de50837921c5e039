package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/adpilothq/adpilot-cli/internal/auth"
	"github.com/adpilothq/adpilot-cli/internal/config"
	"github.com/adpilothq/adpilot-cli/internal/models"
)

const defaultBaseURL = "https://api.adpilot.io/v1"

// Client talks to the AdPilot backend. Every method issues one fresh HTTP
// request; nothing is cached locally and nothing is retried.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string

	// Agent metadata for all requests (set via SetAgentInfo)
	AgentName      string
	AgentModel     string
	AgentSessionID string

	limiter *rate.Limiter
}

// NewClient creates a client using the environment, keyring and config file
// for the base URL and bearer token.
func NewClient() *Client {
	baseURL := os.Getenv("ADPILOT_API_URL")
	token := auth.Token()

	cfg, err := config.LoadConfig()
	if err == nil {
		if baseURL == "" && cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		if token == "" && cfg.APIKey != "" {
			token = cfg.APIKey
		}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return newClient(baseURL, token)
}

// NewClientWith creates a client against an explicit base URL and token.
// Used by tests and by tooling pointed at a local backend.
func NewClientWith(baseURL, token string) *Client {
	return newClient(baseURL, token)
}

func newClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// The backend throttles aggressively; stay under its limit.
		limiter: rate.NewLimiter(rate.Limit(8), 4),
	}
}

// SetAgentInfo sets agent metadata that will be included in all subsequent
// requests so backend events can be attributed to the agent session.
func (c *Client) SetAgentInfo(name, model, sessionID string) {
	c.AgentName = name
	c.AgentModel = model
	c.AgentSessionID = sessionID
}

// envelope is the failure/not-ready portion every backend response may carry
// in addition to its domain payload.
type envelope struct {
	Success          *bool  `json:"success,omitempty"`
	Error            string `json:"error,omitempty"`
	DataNotReady     bool   `json:"data_not_ready,omitempty"`
	Message          string `json:"message,omitempty"`
	EstimatedMinutes *int   `json:"estimated_minutes,omitempty"`
}

// makeRequest issues an HTTP request and normalizes the response: the
// data_not_ready shape becomes *NotReadyError, any other failure becomes
// *APIError, and the raw body is returned on success.
func (c *Client) makeRequest(method, endpoint string, body interface{}) ([]byte, error) {
	reqURL := c.BaseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	// Agent headers enable event attribution in the backend.
	if c.AgentName != "" {
		req.Header.Set("X-Created-Via", "mcp")
		req.Header.Set("X-Agent-Name", c.AgentName)
	}
	if c.AgentModel != "" {
		req.Header.Set("X-Agent-Model", c.AgentModel)
	}
	if c.AgentSessionID != "" {
		req.Header.Set("X-Agent-Session-ID", c.AgentSessionID)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(context.Background()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// The envelope may ride along with any status code; decode failures are
	// ignored because most success payloads are plain domain objects.
	var env envelope
	_ = json.Unmarshal(respBody, &env)

	if env.DataNotReady {
		return nil, &NotReadyError{Message: env.Message, EstimatedMinutes: env.EstimatedMinutes}
	}

	if resp.StatusCode >= 400 {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = string(respBody)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if env.Success != nil && !*env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}

	return respBody, nil
}

// ListProfiles fetches the current profile directory. Listing numbers are
// only meaningful within this one response.
func (c *Client) ListProfiles() (*models.ProfileList, error) {
	respBody, err := c.makeRequest("GET", "/mcp/profiles", nil)
	if err != nil {
		return nil, err
	}

	var list models.ProfileList
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile list: %w", err)
	}
	return &list, nil
}

// ActivateProfile asks the backend to begin importing a profile's data. The
// backend is the single source of truth for activation state; no local
// pre-check is performed, its answer is surfaced as-is.
func (c *Client) ActivateProfile(profileID string) (*models.ActivationResult, error) {
	reqBody := map[string]string{"profile_id": profileID}

	respBody, err := c.makeRequest("POST", "/mcp/profiles/activate", reqBody)
	if err != nil {
		return nil, err
	}

	var result models.ActivationResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activation result: %w", err)
	}
	return &result, nil
}

// ProfileStatus reads the current import lifecycle phase of a profile.
func (c *Client) ProfileStatus(profileID string) (*models.ProfileStatus, error) {
	respBody, err := c.makeRequest("GET", "/mcp/profiles/"+url.PathEscape(profileID)+"/status", nil)
	if err != nil {
		return nil, err
	}

	var status models.ProfileStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile status: %w", err)
	}
	return &status, nil
}

// DeactivateProfile removes a profile from MCP querying. Idempotent on the
// backend side.
func (c *Client) DeactivateProfile(profileID string) (*models.DeactivationResult, error) {
	reqBody := map[string]string{"profile_id": profileID}

	respBody, err := c.makeRequest("POST", "/mcp/profiles/deactivate", reqBody)
	if err != nil {
		return nil, err
	}

	var result models.DeactivationResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deactivation result: %w", err)
	}
	return &result, nil
}

// ListCampaigns fetches campaigns for a profile, optionally filtered by
// state (enabled, paused, archived).
func (c *Client) ListCampaigns(profileID, state string) ([]models.Campaign, error) {
	endpoint := "/mcp/profiles/" + url.PathEscape(profileID) + "/campaigns"
	if state != "" {
		endpoint += "?state=" + url.QueryEscape(state)
	}

	respBody, err := c.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	var campaigns []models.Campaign
	if err := json.Unmarshal(respBody, &campaigns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal campaigns: %w", err)
	}
	return campaigns, nil
}

// UpdateCampaignState patches a campaign's state.
func (c *Client) UpdateCampaignState(campaignID, state string) (*models.Campaign, error) {
	reqBody := map[string]string{"state": state}

	respBody, err := c.makeRequest("PATCH", "/mcp/campaigns/"+url.PathEscape(campaignID), reqBody)
	if err != nil {
		return nil, err
	}

	var campaign models.Campaign
	if err := json.Unmarshal(respBody, &campaign); err != nil {
		return nil, fmt.Errorf("failed to unmarshal campaign: %w", err)
	}
	return &campaign, nil
}

// ListKeywords fetches the keywords of a campaign.
func (c *Client) ListKeywords(campaignID string) ([]models.Keyword, error) {
	respBody, err := c.makeRequest("GET", "/mcp/campaigns/"+url.PathEscape(campaignID)+"/keywords", nil)
	if err != nil {
		return nil, err
	}

	var keywords []models.Keyword
	if err := json.Unmarshal(respBody, &keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}
	return keywords, nil
}

// UpdateKeywordBid patches a keyword's bid.
func (c *Client) UpdateKeywordBid(keywordID string, bid float64) (*models.Keyword, error) {
	reqBody := map[string]float64{"bid": bid}

	respBody, err := c.makeRequest("PATCH", "/mcp/keywords/"+url.PathEscape(keywordID), reqBody)
	if err != nil {
		return nil, err
	}

	var keyword models.Keyword
	if err := json.Unmarshal(respBody, &keyword); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keyword: %w", err)
	}
	return &keyword, nil
}

// GetPerformance fetches daily performance metrics for a profile over an
// inclusive date range (YYYY-MM-DD).
func (c *Client) GetPerformance(profileID, startDate, endDate string) (*models.PerformanceReport, error) {
	q := url.Values{}
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	endpoint := "/mcp/profiles/" + url.PathEscape(profileID) + "/performance?" + q.Encode()

	respBody, err := c.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	var report models.PerformanceReport
	if err := json.Unmarshal(respBody, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal performance report: %w", err)
	}
	return &report, nil
}
