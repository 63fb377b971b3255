package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/auth"
	"github.com/training-management-api/internal/models"
)

const keyPrefix = "training:profile:"

// ProfileCache stores verified identities keyed by credential.
// InvalidateHash drops the entry for a credential known only by its
// auth.HashCredential form, which is what staff records hold.
type ProfileCache interface {
	Get(ctx context.Context, credential string) (*models.VerifiedUser, bool)
	Set(ctx context.Context, credential string, user *models.VerifiedUser)
	InvalidateHash(ctx context.Context, credentialHash string)
}

// redisCache is the concrete implementation of ProfileCache over redis
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedis creates a redis-backed profile cache. Cache errors are logged
// and treated as misses.
func NewRedis(client *redis.Client, ttl time.Duration, log zerolog.Logger) ProfileCache {
	return &redisCache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "profile_cache").Logger(),
	}
}

// Connect parses a redis URL and pings the server
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Key never contains the credential itself
func Key(credential string) string {
	return HashKey(auth.HashCredential(credential))
}

// HashKey is Key for an already hashed credential
func HashKey(credentialHash string) string {
	return keyPrefix + credentialHash
}

func (c *redisCache) Get(ctx context.Context, credential string) (*models.VerifiedUser, bool) {
	data, err := c.client.Get(ctx, Key(credential)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("Profile cache read failed")
		return nil, false
	}
	var user models.VerifiedUser
	if err := json.Unmarshal(data, &user); err != nil {
		c.log.Warn().Err(err).Msg("Discarding undecodable cache entry")
		return nil, false
	}
	return &user, true
}

func (c *redisCache) Set(ctx context.Context, credential string, user *models.VerifiedUser) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, Key(credential), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("Profile cache write failed")
	}
}

func (c *redisCache) InvalidateHash(ctx context.Context, credentialHash string) {
	if err := c.client.Del(ctx, HashKey(credentialHash)).Err(); err != nil {
		c.log.Warn().Err(err).Msg("Profile cache delete failed")
	}
}

// Nop is used when no redis is configured
type Nop struct{}

func (Nop) Get(context.Context, string) (*models.VerifiedUser, bool) { return nil, false }
func (Nop) Set(context.Context, string, *models.VerifiedUser)        {}
func (Nop) InvalidateHash(context.Context, string)                   {}
