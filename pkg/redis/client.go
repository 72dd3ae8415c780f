package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/onurcolak/contact-dispatch-service/environments"
	"github.com/onurcolak/contact-dispatch-service/internal/domain"
	"github.com/onurcolak/contact-dispatch-service/pkg/logger"
)

type Client struct {
	client valkey.Client
}

const (
	jobSummaryKeyPrefix = "job_summary:"
	jobSummaryTTL       = 24 * time.Hour
)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client}, nil
}

// CacheJobSummary stores the terminal snapshot of a job without its log
// lines, which can be large; the counters and rule breakdown are kept.
func (c *Client) CacheJobSummary(ctx context.Context, snap domain.JobSnapshot) error {
	snap.Logs = nil

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal job summary: %w", err)
	}

	key := jobSummaryKeyPrefix + snap.ID

	err = c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(jobSummaryTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache job summary: %w", err)
	}

	logger.Debugf("Cached summary of job %s in Redis", snap.ID)

	return nil
}

func (c *Client) GetCachedJobSummary(ctx context.Context, jobID string) (*domain.JobSnapshot, error) {
	result := c.client.Do(ctx, c.client.B().Get().Key(jobSummaryKeyPrefix+jobID).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached job summary: %w", result.Error())
	}

	data, err := result.ToString()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached job summary: %w", err)
	}

	var snap domain.JobSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job summary: %w", err)
	}

	return &snap, nil
}

func (c *Client) GetAllCachedJobSummaries(ctx context.Context) (map[string]*domain.JobSnapshot, error) {
	pattern := jobSummaryKeyPrefix + "*"

	var keys []string
	var cursor uint64
	for {
		result := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build())
		if result.Error() != nil {
			return nil, fmt.Errorf("failed to scan cache keys: %w", result.Error())
		}

		scanResult, err := result.AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to parse scan result: %w", err)
		}

		keys = append(keys, scanResult.Elements...)
		cursor = scanResult.Cursor

		if cursor == 0 {
			break
		}
	}

	out := make(map[string]*domain.JobSnapshot, len(keys))

	for _, key := range keys {
		jobID := strings.TrimPrefix(key, jobSummaryKeyPrefix)

		snap, err := c.GetCachedJobSummary(ctx, jobID)
		if err != nil {
			logger.Warnf("failed to read cached job %q: %v", jobID, err)
			continue
		}
		if snap == nil {
			// expired between SCAN and GET
			continue
		}

		out[jobID] = snap
	}

	return out, nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
