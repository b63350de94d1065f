package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttsCachePrefix = "tts:audio:"

// CachedSpeaker serves repeated TTS requests from Redis.
// Cache failures are logged and fall through to the wrapped Speaker.
type CachedSpeaker struct {
	next   Speaker
	client redis.Cmdable
	ttl    time.Duration
	log    *slog.Logger
}

var _ Speaker = (*CachedSpeaker)(nil)

// NewCachedSpeaker wraps next with a Redis cache. ttl <= 0 keeps entries for a day.
func NewCachedSpeaker(next Speaker, client redis.Cmdable, ttl time.Duration, log *slog.Logger) *CachedSpeaker {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedSpeaker{next: next, client: client, ttl: ttl, log: log}
}

// CacheKey derives the Redis key for a voice and text pair.
func CacheKey(voice, text string) string {
	sum := sha256.Sum256([]byte(voice + "\x00" + text))
	return ttsCachePrefix + hex.EncodeToString(sum[:])
}

func (c *CachedSpeaker) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	key := CacheKey(voice, text)

	audio, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(audio) > 0:
		return audio, nil
	case err != nil && !errors.Is(err, redis.Nil):
		c.log.Warn("tts_cache_read_failed", "error", err)
	}

	audio, err = c.next.Speak(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, audio, c.ttl).Err(); err != nil {
		c.log.Warn("tts_cache_write_failed", "error", err)
	}
	return audio, nil
}
