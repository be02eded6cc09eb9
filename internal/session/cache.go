package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"aurix/internal/models"
	"aurix/internal/redis"
)

// transcriptCache mirrors conversation logs into redis with the session TTL.
// It is purely best-effort: every failure degrades to in-memory operation.
type transcriptCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newTranscriptCache(client *redis.Client, ttl time.Duration) *transcriptCache {
	return &transcriptCache{client: client, ttl: ttl}
}

func transcriptKey(sessionID string) string {
	return fmt.Sprintf("session:transcript:%s", sessionID)
}

func (t *transcriptCache) save(sessionID string, messages []*models.Message) {
	if t == nil || t.client == nil || sessionID == "" {
		return
	}
	data, err := json.Marshal(messages)
	if err != nil {
		log.Printf("transcript marshal failed: %v", err)
		return
	}
	if err := t.client.Set(context.Background(), transcriptKey(sessionID), data, t.ttl); err != nil {
		log.Printf("transcript cache write failed: %v", err)
	}
}

func (t *transcriptCache) load(sessionID string) ([]*models.Message, bool) {
	if t == nil || t.client == nil || sessionID == "" {
		return nil, false
	}
	raw, err := t.client.Get(context.Background(), transcriptKey(sessionID))
	if err != nil {
		if err != redis.ErrCacheMiss {
			log.Printf("transcript cache read failed: %v", err)
		}
		return nil, false
	}
	var messages []*models.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		log.Printf("transcript cache decode failed: %v", err)
		return nil, false
	}
	return messages, true
}

func (t *transcriptCache) invalidate(sessionID string) {
	if t == nil || t.client == nil || sessionID == "" {
		return
	}
	if err := t.client.Del(context.Background(), transcriptKey(sessionID)); err != nil && err != redis.ErrCacheMiss {
		log.Printf("transcript cache invalidate failed: %v", err)
	}
}
