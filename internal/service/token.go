package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"autohub-rest-api/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	// TokenPrefix is the prefix for all admin session tokens
	TokenPrefix = "aht_"

	// TokenTTL is the default admin session lifetime
	TokenTTL = 12 * time.Hour

	// TokenRedisKeyPrefix is the Redis key prefix for admin tokens
	TokenRedisKeyPrefix = "autohub:admin:token:"
)

// TokenService handles admin session token generation and validation.
type TokenService struct {
	redis *redis.Client
}

// NewTokenService creates a new token service.
func NewTokenService(redisClient *redis.Client) *TokenService {
	return &TokenService{
		redis: redisClient,
	}
}

// GenerateToken creates a new admin session token and stores it in Redis.
func (s *TokenService) GenerateToken(ctx context.Context) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := TokenPrefix + hex.EncodeToString(tokenBytes)

	session := model.AdminSession{
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(TokenTTL),
	}

	jsonData, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to serialize session: %w", err)
	}

	key := TokenRedisKeyPrefix + token
	if err := s.redis.Set(ctx, key, jsonData, TokenTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	log.Printf("[TokenService] Issued admin session, expires=%v", session.ExpiresAt)
	return token, nil
}

// ValidateToken checks if a token is valid and returns its session data.
func (s *TokenService) ValidateToken(ctx context.Context, token string) (*model.AdminSession, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	if len(token) < len(TokenPrefix) || token[:len(TokenPrefix)] != TokenPrefix {
		return nil, fmt.Errorf("invalid token format")
	}

	key := TokenRedisKeyPrefix + token
	jsonData, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("token not found: %w", err)
	}

	var session model.AdminSession
	if err := json.Unmarshal(jsonData, &session); err != nil {
		return nil, fmt.Errorf("corrupt session data: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		s.redis.Del(ctx, key)
		return nil, fmt.Errorf("token expired")
	}

	return &session, nil
}

// RevokeToken deletes a token from Redis.
func (s *TokenService) RevokeToken(ctx context.Context, token string) error {
	key := TokenRedisKeyPrefix + token
	return s.redis.Del(ctx, key).Err()
}
