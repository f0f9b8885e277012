package data

import (
	"time"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
)

// Watchlist represents the watchlist table
type Watchlist struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string    `gorm:"not null;uniqueIndex:uq_watchlist_user_title;index:idx_watchlist_user"`
	IMDbID    string    `gorm:"column:imdb_id;not null;uniqueIndex:uq_watchlist_user_title"`
	Status    string    `gorm:"not null;default:'Plan to Watch'"`
	AddedAt   time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now();autoUpdateTime:false"`
}

// TableName overrides the table name
func (Watchlist) TableName() string {
	return "watchlist"
}

func (w *Watchlist) toBiz() *biz.WatchlistEntry {
	return &biz.WatchlistEntry{
		ID:        w.ID,
		UserID:    w.UserID,
		IMDbID:    w.IMDbID,
		Status:    biz.WatchlistStatus(w.Status),
		AddedAt:   w.AddedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// Review represents the reviews table
type Review struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	IMDbID    string    `gorm:"column:imdb_id;not null;index:idx_reviews_title"`
	UserID    string    `gorm:"not null;index:idx_reviews_user"`
	Content   string    `gorm:"not null"`
	Rating    *int
	CreatedAt time.Time `gorm:"not null;default:now();autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;default:now();autoUpdateTime:false"`
}

// TableName overrides the table name
func (Review) TableName() string {
	return "reviews"
}

func (r *Review) toBiz() *biz.Review {
	return &biz.Review{
		ID:        r.ID,
		IMDbID:    r.IMDbID,
		UserID:    r.UserID,
		Content:   r.Content,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
