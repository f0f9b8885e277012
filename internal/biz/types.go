package biz

import (
	"context"
	"errors"
	"time"
)

// Custom errors
var (
	ErrUnauthenticated = errors.New("login required")
	ErrNoTitleContext  = errors.New("no title selected")
	ErrInvalidStatus   = errors.New("invalid watchlist status")
	ErrInvalidReview   = errors.New("invalid review")
	ErrEntryNotFound   = errors.New("watchlist entry not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyTracked  = errors.New("title already in watchlist")
	ErrEmptyQuery      = errors.New("empty search query")
	ErrNoMoreResults   = errors.New("no more results")
	ErrTitleNotFound   = errors.New("title not found")
	ErrDetached        = errors.New("synchronizer detached")
	ErrStaleResult     = errors.New("result superseded by a newer request")
	ErrBusy            = errors.New("request already in flight")
)

// User is the authenticated identity passed into every mutating operation.
type User struct {
	ID    string
	Email string
}

// WatchlistStatus is one of the three fixed watchlist states.
type WatchlistStatus string

const (
	StatusPlanToWatch WatchlistStatus = "Plan to Watch"
	StatusWatching    WatchlistStatus = "Watching"
	StatusCompleted   WatchlistStatus = "Completed"
)

// Statuses lists every status in display order.
var Statuses = []WatchlistStatus{StatusPlanToWatch, StatusWatching, StatusCompleted}

// Valid reports whether s is one of the three known statuses.
func (s WatchlistStatus) Valid() bool {
	switch s {
	case StatusPlanToWatch, StatusWatching, StatusCompleted:
		return true
	}
	return false
}

// WatchlistEntry domain model
type WatchlistEntry struct {
	ID        string
	UserID    string
	IMDbID    string
	Status    WatchlistStatus
	AddedAt   time.Time
	UpdatedAt time.Time
}

// Review domain model
type Review struct {
	ID        string
	IMDbID    string
	UserID    string
	Content   string
	Rating    *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TypeFilter narrows a search to one kind of title.
type TypeFilter string

const (
	FilterAll    TypeFilter = "all"
	FilterMovie  TypeFilter = "movie"
	FilterSeries TypeFilter = "series"
)

// Valid reports whether f is a known filter.
func (f TypeFilter) Valid() bool {
	switch f {
	case FilterAll, FilterMovie, FilterSeries:
		return true
	}
	return false
}

// TitleSummary is the normalized metadata shape returned by the metadata gateway.
type TitleSummary struct {
	ID     string
	Title  string
	Year   string
	Poster string
	Type   string
	Rating *float64
}

// TitleDetail extends TitleSummary with the fields of a single lookup.
type TitleDetail struct {
	TitleSummary
	Plot     string
	Director string
	Actors   string
	Genre    string
	Runtime  string
	Released string
}

// SearchQuery identifies one search; changing any field resets pagination.
type SearchQuery struct {
	Query string
	Type  TypeFilter
	Year  string
	Page  int
}

// SearchPage is one page returned by the metadata gateway.
type SearchPage struct {
	Items        []TitleSummary
	TotalResults int
	OK           bool
	Error        string
}

// WatchlistRepo defines the remote store interface for watchlist rows
type WatchlistRepo interface {
	ListByUser(ctx context.Context, userID string) ([]*WatchlistEntry, error)
	Create(ctx context.Context, userID, imdbID string, status WatchlistStatus) (*WatchlistEntry, error)
	UpdateStatus(ctx context.Context, userID, imdbID string, status WatchlistStatus) (*WatchlistEntry, error)
	Delete(ctx context.Context, userID, imdbID string) error
}

// ReviewRepo defines the remote store interface for review rows
type ReviewRepo interface {
	ListByTitle(ctx context.Context, imdbID string) ([]*Review, error)
	ListByUser(ctx context.Context, userID string) ([]*Review, error)
	Create(ctx context.Context, review *Review) error
	Update(ctx context.Context, userID, id, content string, rating *int) error
	Delete(ctx context.Context, userID, id string) error
}

// MetadataClient defines the interface for the third-party title metadata API
type MetadataClient interface {
	Search(ctx context.Context, q SearchQuery) (*SearchPage, error)
	GetByID(ctx context.Context, id string) (*TitleDetail, error)
	GetByTitle(ctx context.Context, title, year string, typ TypeFilter) (*TitleDetail, error)
}
