package session

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is an in-process Store/FlowStore for development and
// tests. Not suitable behind more than one instance.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(flowTTL, 5*time.Minute),
	}
}

func (m *MemoryStore) Create(_ context.Context, s Session) error {
	if s.SessionID == "" || s.UserID == "" {
		return fmt.Errorf("session: missing session_id or user_id")
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}
	m.cache.Set("session:"+s.SessionID, s, ttl)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	v, ok := m.cache.Get("session:" + sessionID)
	if !ok {
		return nil, nil
	}
	s := v.(Session)
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.cache.Delete("session:" + sessionID)
	return nil
}

func (m *MemoryStore) PutFlow(_ context.Context, sid string, f FlowSession) error {
	m.cache.Set("oauthflow:"+sid, f, flowTTL)
	return nil
}

func (m *MemoryStore) ConsumeCSRF(_ context.Context, sid string) (string, error) {
	v, ok := m.cache.Get("oauthflow:" + sid)
	if !ok {
		return "", nil
	}
	f := v.(FlowSession)
	token := f.CSRFToken
	f.CSRFToken = ""
	m.cache.Set("oauthflow:"+sid, f, flowTTL)
	return token, nil
}

func (m *MemoryStore) ConsumeFlowParams(_ context.Context, sid string) (FlowSession, error) {
	v, ok := m.cache.Get("oauthflow:" + sid)
	m.cache.Delete("oauthflow:" + sid)
	if !ok {
		return FlowSession{}, nil
	}
	return v.(FlowSession), nil
}

func (m *MemoryStore) PutFlash(_ context.Context, sid, message string) error {
	m.cache.Set("flash:"+sid, message, flashTTL)
	return nil
}

func (m *MemoryStore) TakeFlash(_ context.Context, sid string) (string, error) {
	v, ok := m.cache.Get("flash:" + sid)
	if !ok {
		return "", nil
	}
	m.cache.Delete("flash:" + sid)
	return v.(string), nil
}

func (m *MemoryStore) ClearPendingFlags(_ context.Context, sid string) error {
	m.cache.Delete("flag:" + FlagMustActivateTwoFA + ":" + sid)
	m.cache.Delete("flag:" + FlagPasswordChange + ":" + sid)
	return nil
}

func (m *MemoryStore) SetPendingFlag(_ context.Context, sid, flag string) error {
	m.cache.Set("flag:"+flag+":"+sid, "1", flagTTL)
	return nil
}

func (m *MemoryStore) HasPendingFlag(_ context.Context, sid, flag string) (bool, error) {
	_, ok := m.cache.Get("flag:" + flag + ":" + sid)
	return ok, nil
}
