package authstore

import (
	"context"
	"encoding/json"
	"time"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/where"
)

type sessionPayload struct {
	Session core.Record `json:"session"`
	User    core.Record `json:"user"`
}

type activeSessionEntry struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"` // milliseconds since epoch
}

func activeSessionsKey(userID string) string { return "active-sessions-" + userID }

// sessionTTL converts an expiry time to the cache TTL (spec.md §4.7):
// floor((expiresAt-now)/1000) seconds, never negative.
func sessionTTL(expiresAt time.Time) time.Duration {
	d := time.Until(expiresAt)
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return time.Duration(secs) * time.Second
}

func expiresAtOf(session core.Record) (time.Time, bool) {
	t, ok := session["expiresAt"].(time.Time)
	return t, ok
}

// CreateSession inserts a session row and, when a secondary store is
// configured, caches the {session, user} payload under the token and
// appends to that user's active-sessions list.
func (s *Store) CreateSession(ctx context.Context, data core.Record, user core.Record) (core.Record, error) {
	session, err := s.factory.Create(ctx, "session", data)
	if err != nil {
		return nil, err
	}
	if s.cache.Enabled() {
		s.writeSessionCache(ctx, session, user)
	}
	return session, nil
}

// FindSession returns the session and its linked user, preferring the
// secondary-storage cache when enabled (spec.md §4.7, §6.5).
func (s *Store) FindSession(ctx context.Context, token string) (core.Record, core.Record, bool, error) {
	if s.cache.Enabled() {
		raw, ok, err := s.cache.Get(ctx, token)
		s.warnCacheFailure("findSession.get", err)
		if err == nil && ok {
			var p sessionPayload
			if err := json.Unmarshal([]byte(raw), &p); err == nil {
				return p.Session, p.User, true, nil
			}
		}
	}

	session, ok, err := s.factory.FindOne(ctx, "session", []where.Predicate{{Field: "token", Value: token}})
	if err != nil || !ok {
		return nil, nil, false, err
	}
	user, _, err := s.factory.FindOne(ctx, "user", []where.Predicate{{Field: "id", Value: session["userId"]}})
	if err != nil {
		return nil, nil, false, err
	}
	if s.cache.Enabled() {
		s.writeSessionCache(ctx, session, user)
	}
	return session, user, true, nil
}

// UpdateSession applies update to the session with the given token,
// rewriting both cache entries on success (spec.md §4.7).
func (s *Store) UpdateSession(ctx context.Context, token string, update core.Record) (core.Record, bool, error) {
	session, found, err := s.factory.Update(ctx, "session", []where.Predicate{{Field: "token", Value: token}}, update)
	if err != nil || !found {
		return nil, found, err
	}
	if s.cache.Enabled() {
		user, _, err := s.factory.FindOne(ctx, "user", []where.Predicate{{Field: "id", Value: session["userId"]}})
		s.warnCacheFailure("updateSession.findUser", err)
		if err == nil {
			s.writeSessionCache(ctx, session, user)
		}
	}
	return session, true, nil
}

// DeleteSession removes the session with the given token and splices
// it out of the owning user's active-sessions cache entry (spec.md
// §4.7).
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	session, found, err := s.factory.FindOne(ctx, "session", []where.Predicate{{Field: "token", Value: token}})
	if err != nil {
		return err
	}
	if err := s.factory.Delete(ctx, "session", []where.Predicate{{Field: "token", Value: token}}); err != nil {
		return err
	}
	if !found || !s.cache.Enabled() {
		return nil
	}

	err = s.cache.Delete(ctx, token)
	s.warnCacheFailure("deleteSession.delete", err)

	userID, _ := session["userId"].(string)
	if userID != "" {
		s.spliceActiveSessions(ctx, userID, token)
	}
	return nil
}

// ListSessions returns every session for userID, deduplicated by
// token (spec.md §4.7).
func (s *Store) ListSessions(ctx context.Context, userID string) ([]core.Record, error) {
	rows, err := s.factory.FindMany(ctx, "session", []where.Predicate{{Field: "userId", Value: userID}})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(rows))
	out := make([]core.Record, 0, len(rows))
	for _, r := range rows {
		token, _ := r["token"].(string)
		if seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, r)
	}
	return out, nil
}

// RefreshUserSessions recomputes the active-sessions-<userId> cache
// entry directly from primary storage, discarding whatever the cache
// previously held. Used after a bulk session mutation bypasses the
// per-call cache maintenance above (a supplemented feature: the base
// spec describes active-sessions maintenance but not how to repair it
// after an out-of-band write).
func (s *Store) RefreshUserSessions(ctx context.Context, userID string) ([]core.Record, error) {
	sessions, err := s.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.cache.Enabled() {
		return sessions, nil
	}

	entries := make([]activeSessionEntry, 0, len(sessions))
	var maxTTL time.Duration
	for _, sess := range sessions {
		token, _ := sess["token"].(string)
		exp, ok := expiresAtOf(sess)
		if token == "" || !ok {
			continue
		}
		entries = append(entries, activeSessionEntry{Token: token, ExpiresAt: exp.UnixMilli()})
		if ttl := sessionTTL(exp); ttl > maxTTL {
			maxTTL = ttl
		}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return sessions, err
	}
	err = s.cache.Set(ctx, activeSessionsKey(userID), string(b), maxTTL)
	s.warnCacheFailure("refreshUserSessions.set", err)
	return sessions, nil
}

func (s *Store) writeSessionCache(ctx context.Context, session, user core.Record) {
	exp, ok := expiresAtOf(session)
	if !ok {
		return
	}
	token, _ := session["token"].(string)
	if token == "" {
		return
	}

	payload, err := json.Marshal(sessionPayload{Session: session, User: user})
	if err == nil {
		err = s.cache.Set(ctx, token, string(payload), sessionTTL(exp))
	}
	s.warnCacheFailure("writeSessionCache.token", err)

	s.appendActiveSession(ctx, session)
}

func (s *Store) appendActiveSession(ctx context.Context, session core.Record) {
	userID, _ := session["userId"].(string)
	token, _ := session["token"].(string)
	exp, ok := expiresAtOf(session)
	if userID == "" || token == "" || !ok {
		return
	}

	entries := s.readActiveSessions(ctx, userID)
	replaced := false
	for i, e := range entries {
		if e.Token == token {
			entries[i].ExpiresAt = exp.UnixMilli()
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, activeSessionEntry{Token: token, ExpiresAt: exp.UnixMilli()})
	}
	s.writeActiveSessions(ctx, userID, entries)
}

func (s *Store) spliceActiveSessions(ctx context.Context, userID, token string) {
	entries := s.readActiveSessions(ctx, userID)
	out := entries[:0]
	for _, e := range entries {
		if e.Token != token {
			out = append(out, e)
		}
	}
	s.writeActiveSessions(ctx, userID, out)
}

func (s *Store) readActiveSessions(ctx context.Context, userID string) []activeSessionEntry {
	raw, ok, err := s.cache.Get(ctx, activeSessionsKey(userID))
	s.warnCacheFailure("activeSessions.get", err)
	if err != nil || !ok {
		return nil
	}
	var entries []activeSessionEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

func (s *Store) writeActiveSessions(ctx context.Context, userID string, entries []activeSessionEntry) {
	key := activeSessionsKey(userID)
	if len(entries) == 0 {
		err := s.cache.Delete(ctx, key)
		s.warnCacheFailure("activeSessions.delete", err)
		return
	}
	var maxMillis int64
	for _, e := range entries {
		if e.ExpiresAt > maxMillis {
			maxMillis = e.ExpiresAt
		}
	}
	ttl := sessionTTL(time.UnixMilli(maxMillis))
	b, err := json.Marshal(entries)
	if err == nil {
		err = s.cache.Set(ctx, key, string(b), ttl)
	}
	s.warnCacheFailure("activeSessions.set", err)
}
