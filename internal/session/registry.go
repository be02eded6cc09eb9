// Package session tracks one workflow pair per UI session: the upload
// lifecycle and the conversation loop never share state, they only share a
// session id.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"aurix/internal/redis"
	"aurix/internal/workflow"
)

const (
	DefaultTTL           = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// Session bundles the per-UI-session workflow instances.
type Session struct {
	ID      string
	Upload  *workflow.Upload
	Chat    *workflow.Chat
	Notices *workflow.Notifications

	lastSeen time.Time
}

// Registry owns all live sessions and evicts the ones the UI abandoned.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	uploads workflow.UploadService
	chats   workflow.ChatService
	ttl     time.Duration
	cache   *transcriptCache
}

// NewRegistry builds a registry. cache may be nil; the registry then runs
// purely in memory.
func NewRegistry(uploads workflow.UploadService, chats workflow.ChatService, ttl time.Duration, cache *redis.Client) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]*Session),
		uploads:  uploads,
		chats:    chats,
		ttl:      ttl,
		cache:    newTranscriptCache(cache, ttl),
	}
}

// Create starts a fresh session with idle workflows.
func (r *Registry) Create() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Upload:   workflow.NewUpload(r.uploads),
		Chat:     workflow.NewChat(r.chats),
		Notices:  workflow.NewNotifications(),
		lastSeen: time.Now(),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	debugLog("[session] created %s", s.ID)
	return s
}

// Get returns the session and refreshes its idle clock. A miss falls back
// to the transcript cache: if a mirror is still live the session is rebuilt
// around it, so a gateway restart inside a UI session keeps the log.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = time.Now()
		r.mu.Unlock()
		return s, true
	}
	r.mu.Unlock()

	transcript, ok := r.cache.load(id)
	if !ok {
		return nil, false
	}
	s := &Session{
		ID:       id,
		Upload:   workflow.NewUpload(r.uploads),
		Chat:     workflow.NewChat(r.chats),
		Notices:  workflow.NewNotifications(),
		lastSeen: time.Now(),
	}
	s.Chat.Restore(transcript)

	r.mu.Lock()
	// Another request may have rebuilt it first.
	if existing, exists := r.sessions[id]; exists {
		existing.lastSeen = time.Now()
		r.mu.Unlock()
		return existing, true
	}
	r.sessions[id] = s
	r.mu.Unlock()
	debugLog("[session] restored %s from cache", id)
	return s, true
}

// SyncTranscript refreshes the cached mirror of the session's log.
func (r *Registry) SyncTranscript(s *Session) {
	if s == nil {
		return
	}
	r.cache.save(s.ID, s.Chat.Messages())
}

// Remove drops the session and its cached transcript.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	r.cache.invalidate(id)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StartJanitor sweeps idle sessions on the given interval until ctx ends.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sweep(time.Now())
			}
		}
	}()
}

func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	var expired []string
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.ttl {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, id := range expired {
		r.cache.invalidate(id)
		debugLog("[session] evicted idle %s", id)
	}
}
