package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Imanalii/yitiflow-dashboard/internal/model"
)

const rewardColumns = `id, user_id, trip_id, type, amount, multiplier, earned_at, expires_at, redeemed`

func scanReward(row pgx.Row) (model.Reward, error) {
	var reward model.Reward
	err := row.Scan(
		&reward.ID,
		&reward.UserID,
		&reward.TripID,
		&reward.Type,
		&reward.Amount,
		&reward.Multiplier,
		&reward.EarnedAt,
		&reward.ExpiresAt,
		&reward.Redeemed,
	)
	return reward, err
}

func (s *Store) collectRewards(rows pgx.Rows) ([]model.Reward, error) {
	defer rows.Close()
	rewards := []model.Reward{}
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rewards: %w", err)
	}
	return rewards, nil
}

func (s *Store) ListRewards(ctx context.Context) ([]model.Reward, error) {
	pool := s.db(ctx)
	if pool == nil {
		return []model.Reward{}, nil
	}
	rows, err := pool.Query(ctx, `SELECT `+rewardColumns+` FROM rewards`)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return s.collectRewards(rows)
}

func (s *Store) RewardsByUser(ctx context.Context, userID int64) ([]model.Reward, error) {
	pool := s.db(ctx)
	if pool == nil {
		return []model.Reward{}, nil
	}
	rows, err := pool.Query(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("rewards by user: %w", err)
	}
	return s.collectRewards(rows)
}

func (s *Store) CreateReward(ctx context.Context, insert model.RewardInsert) (*model.Reward, error) {
	pool := s.db(ctx)
	if pool == nil {
		return nil, ErrStoreUnavailable
	}
	multiplier := int32(100)
	if insert.Multiplier != nil {
		multiplier = *insert.Multiplier
	}
	redeemed := int64(0)
	if insert.Redeemed != nil {
		redeemed = *insert.Redeemed
	}
	query := `
		INSERT INTO rewards (user_id, trip_id, type, amount, multiplier, earned_at, expires_at, redeemed)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), $7, $8)
		RETURNING ` + rewardColumns
	reward, err := scanReward(pool.QueryRow(ctx, query,
		insert.UserID,
		insert.TripID,
		insert.Type,
		insert.Amount,
		multiplier,
		insert.EarnedAt,
		insert.ExpiresAt,
		redeemed,
	))
	if err != nil {
		return nil, fmt.Errorf("create reward: %w", err)
	}
	return &reward, nil
}
