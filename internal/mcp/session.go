package mcp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adpilothq/adpilot-cli/internal/api"
)

// Session tracks which agent is driving this MCP connection so backend
// events can be attributed. It is convenience metadata; no tool is gated on
// it.
type Session struct {
	ID             string
	Initialized    bool
	AgentName      string
	AgentModel     string
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// SessionManager holds the single session of a stdio connection.
type SessionManager struct {
	currentSession *Session
	mu             sync.RWMutex
}

var sessionManager = &SessionManager{}

// GetCurrentSession returns the current session, creating one if needed.
func GetCurrentSession() *Session {
	sessionManager.mu.Lock()
	defer sessionManager.mu.Unlock()

	if sessionManager.currentSession == nil {
		sessionManager.currentSession = &Session{
			ID:        uuid.New().String(),
			CreatedAt: time.Now(),
		}
	}
	sessionManager.currentSession.LastActivityAt = time.Now()
	return sessionManager.currentSession
}

// InitializeSession marks the session as initialized with agent info.
func InitializeSession(agentName, agentModel string) *Session {
	sessionManager.mu.Lock()

	if sessionManager.currentSession == nil {
		sessionManager.currentSession = &Session{
			ID:        uuid.New().String(),
			CreatedAt: time.Now(),
		}
	}

	s := sessionManager.currentSession
	s.Initialized = true
	s.AgentName = agentName
	s.AgentModel = agentModel
	s.LastActivityAt = time.Now()
	sessionManager.mu.Unlock()

	// Persist for recovery across MCP stdio restarts.
	_ = PersistSession()

	return s
}

// ResetSession drops the in-memory session.
func ResetSession() {
	sessionManager.mu.Lock()
	defer sessionManager.mu.Unlock()

	sessionManager.currentSession = nil
}

// setAgentInfoFromSession copies agent metadata from the current session
// onto the API client.
func setAgentInfoFromSession(client *api.Client) {
	session := GetCurrentSession()
	if session != nil && session.AgentName != "" {
		client.SetAgentInfo(session.AgentName, session.AgentModel, session.ID)
	}
}

// PersistedSession is the JSON structure saved to disk between stdio runs.
type PersistedSession struct {
	ID         string `json:"id"`
	AgentName  string `json:"agent_name"`
	AgentModel string `json:"agent_model"`
	CreatedAt  int64  `json:"created_at"`
	ExpiresAt  int64  `json:"expires_at"`
}

const persistedSessionFile = "adpilot-mcp-session.json"

func getSessionFilePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".adpilot", persistedSessionFile)
	}
	return filepath.Join(os.TempDir(), persistedSessionFile)
}

// PersistSession saves the current session to disk.
func PersistSession() error {
	sessionManager.mu.RLock()
	defer sessionManager.mu.RUnlock()

	if sessionManager.currentSession == nil {
		return nil
	}

	s := sessionManager.currentSession
	persisted := PersistedSession{
		ID:         s.ID,
		AgentName:  s.AgentName,
		AgentModel: s.AgentModel,
		CreatedAt:  s.CreatedAt.Unix(),
		ExpiresAt:  time.Now().Add(24 * time.Hour).Unix(),
	}

	data, err := json.Marshal(persisted)
	if err != nil {
		return err
	}

	path := getSessionFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadPersistedSession attempts to load a persisted session from disk.
// Returns true if a non-expired session was restored.
func LoadPersistedSession() bool {
	data, err := os.ReadFile(getSessionFilePath())
	if err != nil {
		return false
	}

	var persisted PersistedSession
	if err := json.Unmarshal(data, &persisted); err != nil {
		return false
	}

	if time.Now().Unix() > persisted.ExpiresAt {
		os.Remove(getSessionFilePath())
		return false
	}

	sessionManager.mu.Lock()
	defer sessionManager.mu.Unlock()

	sessionManager.currentSession = &Session{
		ID:             persisted.ID,
		Initialized:    true,
		AgentName:      persisted.AgentName,
		AgentModel:     persisted.AgentModel,
		CreatedAt:      time.Unix(persisted.CreatedAt, 0),
		LastActivityAt: time.Now(),
	}
	return true
}

// ClearPersistedSession removes the persisted session file.
func ClearPersistedSession() {
	os.Remove(getSessionFilePath())
}
