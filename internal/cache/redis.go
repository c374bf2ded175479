package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	rdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
}

func NewClient(cfg Config) (*Client, error) {
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
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func otpKey(phone string) string {
	return "otp:" + phone
}

// SetOTP stores a verification code for a phone number. A new code replaces
// any previous one.
func (c *Client) SetOTP(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, otpKey(phone), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}
	return nil
}

// GetOTP returns the stored code, or "" when none exists or it expired.
func (c *Client) GetOTP(ctx context.Context, phone string) (string, error) {
	code, err := c.rdb.Get(ctx, otpKey(phone)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read OTP: %w", err)
	}
	return code, nil
}

func (c *Client) DeleteOTP(ctx context.Context, phone string) error {
	return c.rdb.Del(ctx, otpKey(phone)).Err()
}

func presenceKey(providerID int64) string {
	return fmt.Sprintf("presence:provider:%d", providerID)
}

// MarkProviderOnline refreshes the provider presence key. Presence expires
// on its own when the provider stops pinging.
func (c *Client) MarkProviderOnline(ctx context.Context, providerID int64, ttl time.Duration) error {
	return c.rdb.Set(ctx, presenceKey(providerID), "1", ttl).Err()
}

func (c *Client) MarkProviderOffline(ctx context.Context, providerID int64) error {
	return c.rdb.Del(ctx, presenceKey(providerID)).Err()
}

func (c *Client) IsProviderOnline(ctx context.Context, providerID int64) (bool, error) {
	n, err := c.rdb.Exists(ctx, presenceKey(providerID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check presence: %w", err)
	}
	return n > 0, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
