package cache

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyClient caches staff credentials so the BasicAuth middleware can skip
// the database on the hot path.
type ValkeyClient struct {
	client       *redis.Client
	usersHashKey string
}

type Config struct {
	Addr         string
	Password     string
	UsersHashKey string
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.UsersHashKey == "" {
		cfg.UsersHashKey = "staff:auth"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:       rdb,
		usersHashKey: cfg.UsersHashKey,
	}, nil
}

// GetStaffByAuth looks up a cached staff member by email and password hash.
// The cached value is "user_id:role".
func (v *ValkeyClient) GetStaffByAuth(ctx context.Context, email, passwordHash string) (int64, string, error) {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))

	value, err := v.client.HGet(ctx, v.usersHashKey, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, "", fmt.Errorf("staff not found in cache")
		}
		return 0, "", fmt.Errorf("cache lookup error: %w", err)
	}

	var userID int64
	var role string
	if n, err := fmt.Sscanf(value, "%d:%s", &userID, &role); err != nil || n != 2 {
		// Legacy entries hold only the user id
		userID, err = strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid staff entry in cache")
		}
	}

	return userID, role, nil
}

// PutStaffAuth caches a verified credential pair after a database hit.
func (v *ValkeyClient) PutStaffAuth(ctx context.Context, email, passwordHash string, userID int64, role string) error {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))
	return v.client.HSet(ctx, v.usersHashKey, cacheKey, fmt.Sprintf("%d:%s", userID, role)).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
