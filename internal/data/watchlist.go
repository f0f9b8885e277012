package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
)

type watchlistRepo struct {
	data *Data
	log  *log.Helper
}

// NewWatchlistRepo creates a new watchlist repository
func NewWatchlistRepo(data *Data, logger log.Logger) biz.WatchlistRepo {
	return &watchlistRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *watchlistRepo) ListByUser(ctx context.Context, userID string) ([]*biz.WatchlistEntry, error) {
	var rows []Watchlist
	err := r.data.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}

	out := make([]*biz.WatchlistEntry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toBiz())
	}
	return out, nil
}

func (r *watchlistRepo) Create(ctx context.Context, userID, imdbID string, status biz.WatchlistStatus) (*biz.WatchlistEntry, error) {
	row := &Watchlist{
		UserID: userID,
		IMDbID: imdbID,
		Status: string(status),
	}

	if err := r.data.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, biz.ErrAlreadyTracked
		}
		return nil, fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return row.toBiz(), nil
}

func (r *watchlistRepo) UpdateStatus(ctx context.Context, userID, imdbID string, status biz.WatchlistStatus) (*biz.WatchlistEntry, error) {
	var rows []Watchlist
	result := r.data.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("user_id = ? AND imdb_id = ?", userID, imdbID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": gorm.Expr("now()"),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update status: %w", result.Error)
	}
	if result.RowsAffected == 0 || len(rows) == 0 {
		return nil, biz.ErrEntryNotFound
	}
	return rows[0].toBiz(), nil
}

func (r *watchlistRepo) Delete(ctx context.Context, userID, imdbID string) error {
	err := r.data.db.WithContext(ctx).
		Where("user_id = ? AND imdb_id = ?", userID, imdbID).
		Delete(&Watchlist{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return nil
}
