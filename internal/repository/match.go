package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lobbygames/majority-backend/internal/entity"
)

const (
	recentMatchesKey = "matches:recent"

	// maxArchived caps the archive; older results fall off the end.
	maxArchived = 100
)

type MatchRepository interface {
	Save(ctx context.Context, record *entity.MatchRecord) error
	Recent(ctx context.Context, limit int) ([]entity.MatchRecord, error)
}

type dbMatch struct {
	client *redis.Client
}

func NewMatchRepository(client *redis.Client) MatchRepository {
	return &dbMatch{
		client: client,
	}
}

// Save - pushes a finished-match record onto the recent-matches list and
// trims the list to its cap.
func (that *dbMatch) Save(ctx context.Context, record *entity.MatchRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal match record: %w", err)
	}

	if err = that.client.LPush(ctx, recentMatchesKey, recordJSON).Err(); err != nil {
		return fmt.Errorf("failed to push match record: %w", err)
	}

	if err = that.client.LTrim(ctx, recentMatchesKey, 0, maxArchived-1).Err(); err != nil {
		return fmt.Errorf("failed to trim match archive: %w", err)
	}

	return nil
}

// Recent - returns up to limit archived matches, newest first.
func (that *dbMatch) Recent(ctx context.Context, limit int) ([]entity.MatchRecord, error) {
	if limit <= 0 || limit > maxArchived {
		limit = maxArchived
	}

	raw, err := that.client.LRange(ctx, recentMatchesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read match archive: %w", err)
	}

	records := make([]entity.MatchRecord, 0, len(raw))
	for _, item := range raw {
		var record entity.MatchRecord
		if err = json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match record: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}
