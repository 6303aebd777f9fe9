package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository maintains the two follow edge sets of every user. Each
// method touches exactly one set; keeping them symmetric is the caller's job.
type FollowRepository interface {
	AddFollowing(ctx context.Context, userID, followingID uint) error
	RemoveFollowing(ctx context.Context, userID, followingID uint) error
	AddFollower(ctx context.Context, userID, followerID uint) error
	RemoveFollower(ctx context.Context, userID, followerID uint) error
	IsFollowing(ctx context.Context, userID, targetID uint) (bool, error)
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	GetFollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFollowers(ctx context.Context, userIDs []uint) (map[uint]int64, error)
	CountFollowing(ctx context.Context, userIDs []uint) (map[uint]int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) AddFollowing(ctx context.Context, userID, followingID uint) error {
	return translate(conn(ctx, r.db).Create(&models.FollowingEdge{UserID: userID, FollowingID: followingID}).Error)
}

func (r *PostgresFollowRepository) RemoveFollowing(ctx context.Context, userID, followingID uint) error {
	res := conn(ctx, r.db).Where("user_id = ? AND following_id = ?", userID, followingID).Delete(&models.FollowingEdge{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) AddFollower(ctx context.Context, userID, followerID uint) error {
	return translate(conn(ctx, r.db).Create(&models.FollowerEdge{UserID: userID, FollowerID: followerID}).Error)
}

func (r *PostgresFollowRepository) RemoveFollower(ctx context.Context, userID, followerID uint) error {
	res := conn(ctx, r.db).Where("user_id = ? AND follower_id = ?", userID, followerID).Delete(&models.FollowerEdge{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsFollowing tests targetID for membership in userID's following set.
func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, userID, targetID uint) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.FollowingEdge{}).
		Where("user_id = ? AND following_id = ?", userID, targetID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Model(&models.FollowingEdge{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("following_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) GetFollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Model(&models.FollowerEdge{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("follower_id", &ids).Error
	return ids, err
}

type edgeCount struct {
	UserID uint
	Count  int64
}

func (r *PostgresFollowRepository) CountFollowers(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	return r.countBy(ctx, &models.FollowerEdge{}, userIDs)
}

func (r *PostgresFollowRepository) CountFollowing(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	return r.countBy(ctx, &models.FollowingEdge{}, userIDs)
}

func (r *PostgresFollowRepository) countBy(ctx context.Context, model interface{}, userIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}
	var rows []edgeCount
	if err := conn(ctx, r.db).Model(model).
		Select("user_id, COUNT(*) AS count").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}
