package mockads

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adpilothq/adpilot-cli/internal/models"
)

// expectedDays is how many days of history one import covers.
const expectedDays = 30

// profileRecord is the mutable backend-side state of one profile. The import
// lifecycle is not stored as a status field; it is derived from the elapsed
// time since activation so the mock progresses on its own.
type profileRecord struct {
	id          string
	name        string
	region      string
	activatedAt *time.Time
	campaigns   []models.Campaign
	keywords    map[string][]models.Keyword
}

// Server is an in-memory stand-in for the AdPilot backend, used for local
// development and end-to-end tests.
type Server struct {
	cfg *Config

	// now is overridable so tests can drive the import clock.
	now func() time.Time

	mu       sync.Mutex
	profiles []*profileRecord
}

// New creates a server seeded with demo profiles. One profile starts already
// activated and ready so reads work out of the box.
func New(cfg *Config) *Server {
	s := &Server{
		cfg: cfg,
		now: time.Now,
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	ready := s.now().Add(-2 * s.cfg.ImportDuration)

	s.profiles = []*profileRecord{
		{
			id:     "prof-na-1001",
			name:   "Acme Storefront US",
			region: "NA",
		},
		{
			id:          "prof-eu-2001",
			name:        "Acme Storefront EU",
			region:      "EU",
			activatedAt: &ready,
			campaigns: []models.Campaign{
				{ID: "camp-2001-a", Name: "Brand Defense", State: "enabled", Type: "sponsoredProducts", DailyBudget: 45, StartDate: "2026-01-15"},
				{ID: "camp-2001-b", Name: "Category Conquest", State: "paused", Type: "sponsoredProducts", DailyBudget: 120, StartDate: "2026-03-02"},
			},
			keywords: map[string][]models.Keyword{
				"camp-2001-a": {
					{ID: "kw-1", CampaignID: "camp-2001-a", Text: "acme widgets", MatchType: "exact", State: "enabled", Bid: 1.25},
					{ID: "kw-2", CampaignID: "camp-2001-a", Text: "widgets", MatchType: "broad", State: "enabled", Bid: 0.45},
				},
			},
		},
		{
			id:     "prof-fe-3001",
			name:   "Acme Storefront JP",
			region: "FE",
		},
	}
}

// phase derives the lifecycle phase and completion fraction of a record at
// time t. Thresholds mirror the real import pipeline: a short pending window,
// then retrieval from the ads API, then the bulk of the time importing.
func (s *Server) phase(rec *profileRecord, t time.Time) (models.DataStatus, float64) {
	if rec.activatedAt == nil {
		return models.StatusNotActivated, 0
	}
	frac := float64(t.Sub(*rec.activatedAt)) / float64(s.cfg.ImportDuration)
	switch {
	case frac >= 1:
		return models.StatusReady, 1
	case frac >= 0.4:
		return models.StatusImporting, frac
	case frac >= 0.1:
		return models.StatusRetrieving, frac
	default:
		return models.StatusPending, frac
	}
}

func (s *Server) remainingMinutes(rec *profileRecord, t time.Time) *int {
	remaining := s.cfg.ImportDuration - t.Sub(*rec.activatedAt)
	if remaining < 0 {
		remaining = 0
	}
	m := int(math.Ceil(remaining.Minutes()))
	if m < 1 {
		m = 1
	}
	return &m
}

func (s *Server) findProfile(id string) *profileRecord {
	for _, rec := range s.profiles {
		if rec.id == id {
			return rec
		}
	}
	return nil
}

func (s *Server) findCampaign(id string) (*profileRecord, *models.Campaign) {
	for _, rec := range s.profiles {
		for i := range rec.campaigns {
			if rec.campaigns[i].ID == id {
				return rec, &rec.campaigns[i]
			}
		}
	}
	return nil, nil
}

func (s *Server) findKeyword(id string) (*profileRecord, *models.Keyword) {
	for _, rec := range s.profiles {
		for _, kws := range rec.keywords {
			for i := range kws {
				if kws[i].ID == id {
					return rec, &kws[i]
				}
			}
		}
	}
	return nil, nil
}

// authMiddleware rejects requests without the configured bearer token. A
// blank token disables the check.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.Token == "" {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+s.cfg.Token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	v1 := r.Group("/v1", s.authMiddleware())
	{
		v1.GET("/mcp/profiles", s.listProfiles)
		v1.POST("/mcp/profiles/activate", s.activateProfile)
		v1.POST("/mcp/profiles/deactivate", s.deactivateProfile)
		v1.GET("/mcp/profiles/:id/status", s.profileStatus)
		v1.GET("/mcp/profiles/:id/campaigns", s.listCampaigns)
		v1.GET("/mcp/profiles/:id/performance", s.getPerformance)
		v1.PATCH("/mcp/campaigns/:id", s.updateCampaign)
		v1.GET("/mcp/campaigns/:id/keywords", s.listKeywords)
		v1.PATCH("/mcp/keywords/:id", s.updateKeyword)
	}

	return r
}

// listProfiles returns all profiles with listing numbers assigned in response
// order. Numbers restart from 1 on every call; they are not durable keys.
func (s *Server) listProfiles(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now()
	out := make([]models.Profile, 0, len(s.profiles))
	for i, rec := range s.profiles {
		status, _ := s.phase(rec, t)
		p := models.Profile{
			Number:        i + 1,
			ID:            rec.id,
			Name:          rec.name,
			Region:        rec.region,
			MCPActivated:  rec.activatedAt != nil,
			MCPDataStatus: status,
			IsReady:       status == models.StatusReady,
		}
		if rec.activatedAt != nil && status != models.StatusReady {
			p.EstimatedMinutes = s.remainingMinutes(rec, t)
		}
		out = append(out, p)
	}

	c.JSON(http.StatusOK, models.ProfileList{Profiles: out, Count: len(out)})
}

// ActivateInput DTO for profile activation
type ActivateInput struct {
	ProfileID string `json:"profile_id" binding:"required"`
}

// activateProfile stamps the activation time and starts the import clock.
// Re-activating an already activated profile is an error.
func (s *Server) activateProfile(c *gin.Context) {
	var input ActivateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "profile_id is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findProfile(input.ProfileID)
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "profile not found"})
		return
	}
	if rec.activatedAt != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "profile already activated"})
		return
	}

	t := s.now()
	rec.activatedAt = &t
	if rec.campaigns == nil {
		rec.campaigns = defaultCampaigns(rec.id)
		rec.keywords = defaultKeywords(rec.campaigns)
	}

	c.JSON(http.StatusOK, models.ActivationResult{
		ProfileID:        rec.id,
		Status:           models.StatusPending,
		EstimatedMinutes: s.remainingMinutes(rec, t),
	})
}

// DeactivateInput DTO for profile deactivation
type DeactivateInput struct {
	ProfileID string `json:"profile_id" binding:"required"`
}

// deactivateProfile clears the activation state. Deactivating a profile that
// was never activated succeeds with the same message.
func (s *Server) deactivateProfile(c *gin.Context) {
	var input DeactivateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "profile_id is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findProfile(input.ProfileID)
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "profile not found"})
		return
	}
	rec.activatedAt = nil

	c.JSON(http.StatusOK, models.DeactivationResult{Message: "Profile removed from MCP querying"})
}

// profileStatus reports the availability of a profile's data along with
// import progress while the import is running.
func (s *Server) profileStatus(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findProfile(c.Param("id"))
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "profile not found"})
		return
	}

	t := s.now()
	status, frac := s.phase(rec, t)

	switch status {
	case models.StatusNotActivated:
		c.JSON(http.StatusOK, models.ProfileStatus{
			Available: false,
			Reason:    string(models.StatusNotActivated),
			Message:   "Profile is not activated for MCP querying",
		})
	case models.StatusReady:
		c.JSON(http.StatusOK, models.ProfileStatus{Available: true})
	default:
		days := int(frac * expectedDays)
		c.JSON(http.StatusOK, models.ProfileStatus{
			Available:        false,
			Reason:           string(status),
			Message:          "Data import is in progress",
			EstimatedMinutes: s.remainingMinutes(rec, t),
			ImportProgress: &models.ImportProgress{
				UniqueDates:     days,
				ExpectedDays:    expectedDays,
				ProgressPercent: math.Round(frac * 100),
			},
		})
	}
}

// notReady writes the data_not_ready envelope for a profile whose import has
// not finished. Returns false when the profile is ready and the caller should
// proceed.
func (s *Server) notReady(c *gin.Context, rec *profileRecord, t time.Time) bool {
	status, _ := s.phase(rec, t)
	if status == models.StatusReady {
		return false
	}
	resp := gin.H{
		"data_not_ready": true,
		"message":        fmt.Sprintf("Profile data is not ready (status: %s)", status),
	}
	if status != models.StatusNotActivated {
		resp["estimated_minutes"] = s.remainingMinutes(rec, t)
	}
	c.JSON(http.StatusOK, resp)
	return true
}

// listCampaigns returns a profile's campaigns, optionally filtered by state.
func (s *Server) listCampaigns(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findProfile(c.Param("id"))
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "profile not found"})
		return
	}
	if s.notReady(c, rec, s.now()) {
		return
	}

	state := c.Query("state")
	out := make([]models.Campaign, 0, len(rec.campaigns))
	for _, camp := range rec.campaigns {
		if state == "" || camp.State == state {
			out = append(out, camp)
		}
	}

	c.JSON(http.StatusOK, out)
}

// UpdateCampaignInput DTO for campaign updates
type UpdateCampaignInput struct {
	State string `json:"state" binding:"required"`
}

// updateCampaign changes a campaign's state. State writes go straight to the
// ads API, so they work even while the history import is still running.
func (s *Server) updateCampaign(c *gin.Context) {
	var input UpdateCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "state is required"})
		return
	}
	if !validCampaignState(input.State) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid state: " + input.State})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, camp := s.findCampaign(c.Param("id"))
	if camp == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "campaign not found"})
		return
	}
	camp.State = input.State

	c.JSON(http.StatusOK, camp)
}

// listKeywords returns the keywords of a campaign.
func (s *Server) listKeywords(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, camp := s.findCampaign(c.Param("id"))
	if camp == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "campaign not found"})
		return
	}
	if s.notReady(c, rec, s.now()) {
		return
	}

	kws := rec.keywords[camp.ID]
	if kws == nil {
		kws = []models.Keyword{}
	}
	c.JSON(http.StatusOK, kws)
}

// UpdateKeywordInput DTO for keyword updates
type UpdateKeywordInput struct {
	Bid *float64 `json:"bid" binding:"required"`
}

// updateKeyword changes a keyword's bid.
func (s *Server) updateKeyword(c *gin.Context) {
	var input UpdateKeywordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "bid is required"})
		return
	}
	if *input.Bid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "bid must be positive"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, kw := s.findKeyword(c.Param("id"))
	if kw == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "keyword not found"})
		return
	}
	kw.Bid = *input.Bid

	c.JSON(http.StatusOK, kw)
}

// getPerformance returns synthetic daily metrics over an inclusive date
// range. Rows are derived from the date so repeated calls agree.
func (s *Server) getPerformance(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findProfile(c.Param("id"))
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "profile not found"})
		return
	}
	if s.notReady(c, rec, s.now()) {
		return
	}

	start, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "end_date must be YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "end_date is before start_date"})
		return
	}
	if end.Sub(start) > 90*24*time.Hour {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "date range exceeds 90 days"})
		return
	}

	report := models.PerformanceReport{
		ProfileID: rec.id,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Rows:      []models.PerformanceRow{},
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		report.Rows = append(report.Rows, syntheticRow(rec.id, d))
	}

	c.JSON(http.StatusOK, report)
}

func validCampaignState(state string) bool {
	switch state {
	case "enabled", "paused", "archived":
		return true
	}
	return false
}

// syntheticRow derives one day of metrics from a cheap hash of the profile
// id and date, so the numbers are stable without any stored history.
func syntheticRow(profileID string, day time.Time) models.PerformanceRow {
	var h uint64 = 14695981039346656037
	for _, b := range []byte(profileID + day.Format("2006-01-02")) {
		h = (h ^ uint64(b)) * 1099511628211
	}

	impressions := int64(2000 + h%9000)
	clicks := impressions / int64(20+h%40)
	spend := float64(clicks) * (0.30 + float64(h%120)/100)
	orders := clicks / int64(8+h%10)
	sales := float64(orders) * (18 + float64(h%2200)/100)

	acos := 0.0
	if sales > 0 {
		acos = math.Round(spend/sales*10000) / 100
	}

	return models.PerformanceRow{
		Date:        day.Format("2006-01-02"),
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       math.Round(spend*100) / 100,
		Sales:       math.Round(sales*100) / 100,
		Orders:      orders,
		ACOS:        acos,
	}
}

func defaultCampaigns(profileID string) []models.Campaign {
	suffix := profileID
	if i := strings.LastIndex(profileID, "-"); i >= 0 {
		suffix = profileID[i+1:]
	}
	return []models.Campaign{
		{ID: "camp-" + suffix + "-a", Name: "Always On", State: "enabled", Type: "sponsoredProducts", DailyBudget: 60, StartDate: "2026-02-01"},
		{ID: "camp-" + suffix + "-b", Name: "Seasonal Push", State: "paused", Type: "sponsoredBrands", DailyBudget: 200, StartDate: "2026-05-10"},
	}
}

func defaultKeywords(campaigns []models.Campaign) map[string][]models.Keyword {
	kws := make(map[string][]models.Keyword, len(campaigns))
	for _, camp := range campaigns {
		kws[camp.ID] = []models.Keyword{
			{ID: camp.ID + "-kw-1", CampaignID: camp.ID, Text: "acme widgets", MatchType: "exact", State: "enabled", Bid: 1.10},
			{ID: camp.ID + "-kw-2", CampaignID: camp.ID, Text: "widget deals", MatchType: "phrase", State: "enabled", Bid: 0.65},
		}
	}
	return kws
}
