package service

import (
	"context"
	"strings"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/google/uuid"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
)

type ReviewReply struct {
	ID        string      `json:"id"`
	IMDbID    string      `json:"imdb_id"`
	UserID    string      `json:"user_id"`
	Content   string      `json:"content"`
	Rating    *int        `json:"rating"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Title     *TitleReply `json:"title,omitempty"`
}

type ListReviewsRequest struct {
	IMDbID string `json:"imdb_id" validate:"required"`
}

type ListReviewsReply struct {
	Own           *ReviewReply   `json:"own,omitempty"`
	Others        []*ReviewReply `json:"others"`
	AverageRating *float64       `json:"average_rating,omitempty"`
	RatingMin     int            `json:"rating_min"`
	RatingMax     int            `json:"rating_max"`
}

type MyReviewsRequest struct {
	Hydrate bool `json:"hydrate"`
}

type MyReviewsReply struct {
	Items []*ReviewReply `json:"items"`
}

type SubmitReviewRequest struct {
	IMDbID  string `json:"imdb_id" validate:"required"`
	Content string `json:"content" validate:"max=5000"`
	Rating  *int   `json:"rating"`
}

type EditReviewRequest struct {
	ID      string `json:"id" validate:"required"`
	Content string `json:"content" validate:"max=5000"`
	Rating  *int   `json:"rating"`
}

type DeleteReviewRequest struct {
	ID string `json:"id" validate:"required"`
}

// ListReviews loads every review of a title, split into the caller's own
// review and everyone else's.
func (s *TrackerService) ListReviews(ctx context.Context, req *ListReviewsRequest) (*ListReviewsReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	u := s.user(ctx)
	if err := s.reviews.FetchAll(ctx, req.IMDbID); err != nil {
		return nil, toStatus(err)
	}
	return s.reviewsReply(u, req.IMDbID), nil
}

// MyReviews loads every review the caller has written, newest first.
func (s *TrackerService) MyReviews(ctx context.Context, req *MyReviewsRequest) (*MyReviewsReply, error) {
	if err := s.reviews.FetchMine(ctx, s.user(ctx)); err != nil {
		return nil, toStatus(err)
	}
	reviews := s.reviews.Reviews()
	reply := &MyReviewsReply{Items: make([]*ReviewReply, 0, len(reviews))}
	if req.Hydrate {
		for _, r := range s.reviews.Hydrate(ctx, reviews) {
			item := reviewToReply(r.Review)
			item.Title = titleToReply(r.Title)
			reply.Items = append(reply.Items, item)
		}
		return reply, nil
	}
	for _, r := range reviews {
		reply.Items = append(reply.Items, reviewToReply(r))
	}
	return reply, nil
}

// SubmitReview posts a review for a title and returns the refreshed list.
func (s *TrackerService) SubmitReview(ctx context.Context, req *SubmitReviewRequest) (*ListReviewsReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	u := s.user(ctx)
	release, err := s.acquire("review:" + req.IMDbID + ":" + userID(u))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.reviews.Add(ctx, u, req.IMDbID, strings.TrimSpace(req.Content), req.Rating); err != nil {
		return nil, toStatus(err)
	}
	if s.reviews.Scope().IMDbID != req.IMDbID {
		if err := s.reviews.FetchAll(ctx, req.IMDbID); err != nil {
			s.log.Warnf("reloading reviews of %s after submit: %v", req.IMDbID, err)
		}
	}
	return s.reviewsReply(u, req.IMDbID), nil
}

// EditReview replaces the content and rating of one of the caller's reviews.
func (s *TrackerService) EditReview(ctx context.Context, req *EditReviewRequest) (*ListReviewsReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return nil, kerrors.New(422, "UNPROCESSABLE_ENTITY", "id must be a uuid")
	}
	release, err := s.acquire("review:" + req.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	u := s.user(ctx)
	if err := s.reviews.Edit(ctx, u, req.ID, strings.TrimSpace(req.Content), req.Rating); err != nil {
		return nil, toStatus(err)
	}
	return s.reviewsReply(u, ""), nil
}

// DeleteReview deletes one of the caller's reviews.
func (s *TrackerService) DeleteReview(ctx context.Context, req *DeleteReviewRequest) (*EmptyReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return nil, kerrors.New(422, "UNPROCESSABLE_ENTITY", "id must be a uuid")
	}
	release, err := s.acquire("review:" + req.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.reviews.Delete(ctx, s.user(ctx), req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &EmptyReply{}, nil
}

// reviewsReply renders the in-memory list. With imdbID set, a list that has
// since moved to another title renders empty.
func (s *TrackerService) reviewsReply(u *biz.User, imdbID string) *ListReviewsReply {
	lo, hi := s.reviews.RatingRange()
	reply := &ListReviewsReply{
		Others:    []*ReviewReply{},
		RatingMin: lo,
		RatingMax: hi,
	}
	if imdbID != "" && s.reviews.Scope().IMDbID != imdbID {
		return reply
	}
	own, others := s.reviews.Split(userID(u))
	if own != nil {
		reply.Own = reviewToReply(*own)
	}
	for _, r := range others {
		reply.Others = append(reply.Others, reviewToReply(r))
	}
	if avg, ok := s.reviews.AverageRating(); ok {
		reply.AverageRating = &avg
	}
	return reply
}

func reviewToReply(r biz.Review) *ReviewReply {
	return &ReviewReply{
		ID:        r.ID,
		IMDbID:    r.IMDbID,
		UserID:    r.UserID,
		Content:   r.Content,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func userID(u *biz.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
