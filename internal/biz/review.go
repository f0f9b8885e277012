package biz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
	"github.com/Rehan-Abrar/Cine-Note/internal/validate"
)

// ReviewScope selects which reviews the synchronizer holds: every review of
// one title, or every review written by one user.
type ReviewScope struct {
	IMDbID string
	UserID string
}

// ReviewUseCase owns the in-memory review list for the current scope.
// Unlike the watchlist, every successful write re-derives the list from the
// store instead of patching it.
type ReviewUseCase struct {
	repo      ReviewRepo
	meta      MetadataClient
	notifier  Notifier
	ratingMin int
	ratingMax int
	workers   int
	log       *log.Helper

	mu       sync.Mutex
	scope    ReviewScope
	epoch    uint64
	detached bool
	reviews  []Review
}

// NewReviewUseCase creates a new ReviewUseCase instance
func NewReviewUseCase(repo ReviewRepo, meta MetadataClient, notifier Notifier, c *conf.Tracker, logger log.Logger) *ReviewUseCase {
	uc := &ReviewUseCase{
		repo:      repo,
		meta:      meta,
		notifier:  notifier,
		ratingMin: 0,
		ratingMax: 10,
		workers:   4,
		log:       log.NewHelper(logger),
	}
	if c != nil {
		switch {
		case c.RatingMin > c.RatingMax:
			uc.log.Errorf("ignoring inverted rating range %d..%d, using %d..%d", c.RatingMin, c.RatingMax, uc.ratingMin, uc.ratingMax)
		case c.RatingMin != 0 || c.RatingMax != 0:
			uc.ratingMin, uc.ratingMax = int(c.RatingMin), int(c.RatingMax)
		}
		if c.HydrateConcurrency > 0 {
			uc.workers = int(c.HydrateConcurrency)
		}
	}
	return uc
}

// RatingRange reports the inclusive range accepted by Add and Edit.
func (uc *ReviewUseCase) RatingRange() (min, max int) {
	return uc.ratingMin, uc.ratingMax
}

// FetchAll loads every review of imdbID, newest first.
func (uc *ReviewUseCase) FetchAll(ctx context.Context, imdbID string) error {
	if imdbID == "" {
		return ErrNoTitleContext
	}
	return uc.fetch(ctx, ReviewScope{IMDbID: imdbID})
}

// FetchMine loads every review written by user across all titles, newest first.
func (uc *ReviewUseCase) FetchMine(ctx context.Context, user *User) error {
	if user == nil {
		return ErrUnauthenticated
	}
	return uc.fetch(ctx, ReviewScope{UserID: user.ID})
}

// Add submits a review of imdbID. The list is reloaded only when it holds
// that title or the author's own reviews.
func (uc *ReviewUseCase) Add(ctx context.Context, user *User, imdbID, content string, rating *int) error {
	if user == nil {
		uc.notifier.Notify(ctx, loginRequired)
		return ErrUnauthenticated
	}
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		uc.notifier.Notify(ctx, failure("Please complete all fields.", "No title selected"))
		return ErrNoTitleContext
	}
	content = strings.TrimSpace(content)
	if err := uc.validate(content, rating); err != nil {
		uc.notifier.Notify(ctx, failure("Please complete all fields.", err.Error()))
		return err
	}

	err := uc.repo.Create(ctx, &Review{
		IMDbID:  imdbID,
		UserID:  user.ID,
		Content: content,
		Rating:  rating,
	})
	if err != nil {
		uc.log.Errorf("error adding review for %s: %v", imdbID, err)
		uc.notifier.Notify(ctx, failure("Error adding review", err.Error()))
		return fmt.Errorf("failed to add review: %w", err)
	}
	uc.notifier.Notify(ctx, success("Review added!", ""))

	scope := uc.Scope()
	if scope.IMDbID == imdbID || (scope.IMDbID == "" && scope.UserID == user.ID) {
		uc.reload(ctx)
	}
	return nil
}

// Edit replaces content and rating of one of user's reviews, then reloads the list.
func (uc *ReviewUseCase) Edit(ctx context.Context, user *User, id, content string, rating *int) error {
	if user == nil {
		uc.notifier.Notify(ctx, loginRequired)
		return ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if err := uc.validate(content, rating); err != nil {
		uc.notifier.Notify(ctx, failure("Invalid review", err.Error()))
		return err
	}

	if err := uc.repo.Update(ctx, user.ID, id, content, rating); err != nil {
		uc.log.Errorf("error updating review %s: %v", id, err)
		uc.notifier.Notify(ctx, failure("Error updating review", "Failed to update review."))
		return fmt.Errorf("failed to update review: %w", err)
	}
	uc.notifier.Notify(ctx, success("Review updated", ""))
	uc.reload(ctx)
	return nil
}

// Delete removes one of user's reviews by id, then reloads the list.
func (uc *ReviewUseCase) Delete(ctx context.Context, user *User, id string) error {
	if user == nil {
		uc.notifier.Notify(ctx, loginRequired)
		return ErrUnauthenticated
	}
	if err := uc.repo.Delete(ctx, user.ID, id); err != nil {
		uc.log.Errorf("error deleting review %s: %v", id, err)
		uc.notifier.Notify(ctx, failure("Error deleting review", err.Error()))
		return fmt.Errorf("failed to delete review: %w", err)
	}
	uc.notifier.Notify(ctx, success("Review deleted", ""))
	uc.reload(ctx)
	return nil
}

// Scope returns the scope of the in-memory list.
func (uc *ReviewUseCase) Scope() ReviewScope {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.scope
}

// Reviews returns a copy of the in-memory list, newest first.
func (uc *ReviewUseCase) Reviews() []Review {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return append([]Review(nil), uc.reviews...)
}

// Split separates userID's own review from everyone else's. Only the newest
// review of userID is returned as own; older ones are dropped from both sides.
func (uc *ReviewUseCase) Split(userID string) (own *Review, others []Review) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for _, r := range uc.reviews {
		if userID != "" && r.UserID == userID {
			if own == nil {
				own = &r
			}
			continue
		}
		others = append(others, r)
	}
	return own, others
}

// AverageRating averages the reviews that carry a rating.
func (uc *ReviewUseCase) AverageRating() (float64, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	var sum, n int
	for _, r := range uc.reviews {
		if r.Rating != nil {
			sum += *r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// TitledReview is a review with its resolved metadata, if any.
type TitledReview struct {
	Review
	Title *TitleDetail
}

// Hydrate resolves metadata for reviews. Lookups that fail leave Title nil.
func (uc *ReviewUseCase) Hydrate(ctx context.Context, reviews []Review) []TitledReview {
	ids := make([]string, len(reviews))
	for i, r := range reviews {
		ids[i] = r.IMDbID
	}
	details := resolveTitles(ctx, uc.meta, uc.workers, ids, uc.log)
	out := make([]TitledReview, len(reviews))
	for i, r := range reviews {
		out[i] = TitledReview{Review: r, Title: details[i]}
	}
	return out
}

// Detach stops the synchronizer; results of calls still in flight are discarded.
func (uc *ReviewUseCase) Detach() {
	uc.mu.Lock()
	uc.detached = true
	uc.epoch++
	uc.mu.Unlock()
}

func (uc *ReviewUseCase) fetch(ctx context.Context, scope ReviewScope) error {
	uc.mu.Lock()
	if uc.scope != scope {
		uc.scope = scope
		uc.reviews = nil
		uc.epoch++
	}
	epoch := uc.epoch
	uc.mu.Unlock()

	var (
		rows []*Review
		err  error
	)
	if scope.IMDbID != "" {
		rows, err = uc.repo.ListByTitle(ctx, scope.IMDbID)
	} else {
		rows, err = uc.repo.ListByUser(ctx, scope.UserID)
	}
	if err != nil {
		uc.log.Errorf("error fetching reviews for %+v: %v", scope, err)
		uc.notifier.Notify(ctx, failure("Error fetching reviews", err.Error()))
		return fmt.Errorf("failed to fetch reviews: %w", err)
	}

	reviews := make([]Review, 0, len(rows))
	for _, r := range rows {
		reviews = append(reviews, *r)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.detached {
		return ErrDetached
	}
	if epoch != uc.epoch {
		uc.log.Debugf("discarding stale reviews for %+v", scope)
		return ErrStaleResult
	}
	uc.reviews = reviews
	return nil
}

// reload re-derives the list after a successful write. Its failure is
// already logged and notified by fetch and does not undo the write.
func (uc *ReviewUseCase) reload(ctx context.Context) {
	scope := uc.Scope()
	if scope == (ReviewScope{}) {
		return
	}
	_ = uc.fetch(ctx, scope)
}

func (uc *ReviewUseCase) validate(content string, rating *int) error {
	if content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidReview)
	}
	if rating == nil {
		return fmt.Errorf("%w: rating is required", ErrInvalidReview)
	}
	if err := validate.Range(*rating, uc.ratingMin, uc.ratingMax); err != nil {
		return fmt.Errorf("%w: rating %v", ErrInvalidReview, err)
	}
	return nil
}
