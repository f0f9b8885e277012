package data

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
)

type reviewRepo struct {
	data *Data
	log  *log.Helper
}

// NewReviewRepo creates a new review repository
func NewReviewRepo(data *Data, logger log.Logger) biz.ReviewRepo {
	return &reviewRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *reviewRepo) ListByTitle(ctx context.Context, imdbID string) ([]*biz.Review, error) {
	return r.list(ctx, "imdb_id = ?", imdbID)
}

func (r *reviewRepo) ListByUser(ctx context.Context, userID string) ([]*biz.Review, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *reviewRepo) list(ctx context.Context, where, arg string) ([]*biz.Review, error) {
	var rows []Review
	err := r.data.db.WithContext(ctx).
		Where(where, arg).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	out := make([]*biz.Review, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toBiz())
	}
	return out, nil
}

func (r *reviewRepo) Create(ctx context.Context, review *biz.Review) error {
	row := &Review{
		IMDbID:  review.IMDbID,
		UserID:  review.UserID,
		Content: review.Content,
		Rating:  review.Rating,
	}
	if err := r.data.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	review.ID = row.ID
	review.CreatedAt = row.CreatedAt
	review.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *reviewRepo) Update(ctx context.Context, userID, id, content string, rating *int) error {
	result := r.data.db.WithContext(ctx).
		Model(&Review{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"content":    content,
			"rating":     rating,
			"updated_at": gorm.Expr("now()"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrReviewNotFound
	}
	return nil
}

// Delete removes the review only when it belongs to userID. Deleting a
// missing or foreign review is not an error.
func (r *reviewRepo) Delete(ctx context.Context, userID, id string) error {
	result := r.data.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Review{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Debugf("delete of review %s by %s matched no rows", id, userID)
	}
	return nil
}
