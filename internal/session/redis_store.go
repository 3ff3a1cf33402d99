package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs both the user-session Store and the FlowStore.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) sessionKey(sid string) string { return "session:" + sid }
func (r *RedisStore) flowKey(sid string) string    { return "oauthflow:" + sid }
func (r *RedisStore) flashKey(sid string) string   { return "flash:" + sid }
func (r *RedisStore) flagKey(sid, flag string) string {
	return "flag:" + flag + ":" + sid
}

func (r *RedisStore) Create(ctx context.Context, s Session) error {
	if s.SessionID == "" || s.UserID == "" {
		return fmt.Errorf("session: missing session_id or user_id")
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}
	return r.client.Set(ctx, r.sessionKey(s.SessionID), data, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	val, err := r.client.Get(ctx, r.sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.sessionKey(sessionID)).Err()
}

func (r *RedisStore) PutFlow(ctx context.Context, sid string, f FlowSession) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("session: failed to marshal flow: %w", err)
	}
	return r.client.Set(ctx, r.flowKey(sid), data, flowTTL).Err()
}

func (r *RedisStore) ConsumeCSRF(ctx context.Context, sid string) (string, error) {
	f, found, err := r.getFlow(ctx, sid)
	if err != nil || !found {
		return "", err
	}
	token := f.CSRFToken
	f.CSRFToken = ""
	if err := r.PutFlow(ctx, sid, f); err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisStore) ConsumeFlowParams(ctx context.Context, sid string) (FlowSession, error) {
	f, _, err := r.getFlow(ctx, sid)
	if err != nil {
		return FlowSession{}, err
	}
	if err := r.client.Del(ctx, r.flowKey(sid)).Err(); err != nil {
		return FlowSession{}, err
	}
	return f, nil
}

func (r *RedisStore) PutFlash(ctx context.Context, sid, message string) error {
	return r.client.Set(ctx, r.flashKey(sid), message, flashTTL).Err()
}

func (r *RedisStore) TakeFlash(ctx context.Context, sid string) (string, error) {
	msg, err := r.client.GetDel(ctx, r.flashKey(sid)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return msg, err
}

func (r *RedisStore) ClearPendingFlags(ctx context.Context, sid string) error {
	return r.client.Del(ctx,
		r.flagKey(sid, FlagMustActivateTwoFA),
		r.flagKey(sid, FlagPasswordChange),
	).Err()
}

func (r *RedisStore) SetPendingFlag(ctx context.Context, sid, flag string) error {
	return r.client.Set(ctx, r.flagKey(sid, flag), "1", flagTTL).Err()
}

func (r *RedisStore) HasPendingFlag(ctx context.Context, sid, flag string) (bool, error) {
	n, err := r.client.Exists(ctx, r.flagKey(sid, flag)).Result()
	return n > 0, err
}

func (r *RedisStore) getFlow(ctx context.Context, sid string) (FlowSession, bool, error) {
	val, err := r.client.Get(ctx, r.flowKey(sid)).Result()
	if err == redis.Nil {
		return FlowSession{}, false, nil
	}
	if err != nil {
		return FlowSession{}, false, err
	}
	var f FlowSession
	if err := json.Unmarshal([]byte(val), &f); err != nil {
		return FlowSession{}, false, fmt.Errorf("session: failed to unmarshal flow: %w", err)
	}
	return f, true, nil
}
