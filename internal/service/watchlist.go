package service

import (
	"context"
	"time"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
)

type TitleReply struct {
	ID       string   `json:"imdb_id"`
	Title    string   `json:"title"`
	Year     string   `json:"year,omitempty"`
	Poster   string   `json:"poster,omitempty"`
	Type     string   `json:"type,omitempty"`
	Rating   *float64 `json:"imdb_rating,omitempty"`
	Plot     string   `json:"plot,omitempty"`
	Director string   `json:"director,omitempty"`
	Actors   string   `json:"actors,omitempty"`
	Genre    string   `json:"genre,omitempty"`
	Runtime  string   `json:"runtime,omitempty"`
	Released string   `json:"released,omitempty"`
}

type WatchlistEntryReply struct {
	ID        string      `json:"id"`
	IMDbID    string      `json:"imdb_id"`
	Status    string      `json:"status"`
	AddedAt   time.Time   `json:"added_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Title     *TitleReply `json:"title,omitempty"`
}

type ListWatchlistRequest struct {
	Status  string `json:"status" validate:"omitempty,oneof='Plan to Watch' Watching Completed"`
	Hydrate bool   `json:"hydrate"`
	Refresh bool   `json:"refresh"`
}

type ListWatchlistReply struct {
	Items []*WatchlistEntryReply `json:"items"`
	Total int                    `json:"total"`
	Stats map[string]int         `json:"stats"`
}

type AddWatchlistRequest struct {
	IMDbID string `json:"imdb_id" validate:"required"`
	Status string `json:"status"`
}

type UpdateStatusRequest struct {
	IMDbID string `json:"imdb_id" validate:"required"`
	Status string `json:"status" validate:"required"`
}

type RemoveWatchlistRequest struct {
	IMDbID string `json:"imdb_id" validate:"required"`
}

type EmptyReply struct{}

// ListWatchlist returns the caller's watchlist, optionally narrowed to one
// status and hydrated with title metadata.
func (s *TrackerService) ListWatchlist(ctx context.Context, req *ListWatchlistRequest) (*ListWatchlistReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	u := s.user(ctx)
	if u == nil {
		return &ListWatchlistReply{Items: []*WatchlistEntryReply{}, Stats: map[string]int{}}, nil
	}
	if req.Refresh {
		if err := s.watchlist.FetchAll(ctx, u); err != nil {
			return nil, toStatus(err)
		}
	}

	entries := s.watchlist.Entries()
	if req.Status != "" {
		entries = s.watchlist.ByStatus(biz.WatchlistStatus(req.Status))
	}

	reply := &ListWatchlistReply{Items: make([]*WatchlistEntryReply, 0, len(entries))}
	if req.Hydrate {
		for _, e := range s.watchlist.Hydrate(ctx, entries) {
			item := entryToReply(e.WatchlistEntry)
			item.Title = titleToReply(e.Title)
			reply.Items = append(reply.Items, item)
		}
	} else {
		for _, e := range entries {
			reply.Items = append(reply.Items, entryToReply(e))
		}
	}

	st := s.watchlist.Stats()
	reply.Total = st.Total
	reply.Stats = make(map[string]int, len(st.ByStatus))
	for k, v := range st.ByStatus {
		reply.Stats[string(k)] = v
	}
	return reply, nil
}

// AddToWatchlist tracks a title for the caller.
func (s *TrackerService) AddToWatchlist(ctx context.Context, req *AddWatchlistRequest) (*WatchlistEntryReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	release, err := s.acquire("watchlist:" + req.IMDbID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.watchlist.Add(ctx, s.user(ctx), req.IMDbID, biz.WatchlistStatus(req.Status)); err != nil {
		return nil, toStatus(err)
	}
	e, _ := s.watchlist.Entry(req.IMDbID)
	return entryToReply(e), nil
}

// UpdateWatchlistStatus moves a tracked title to another status.
func (s *TrackerService) UpdateWatchlistStatus(ctx context.Context, req *UpdateStatusRequest) (*WatchlistEntryReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	release, err := s.acquire("watchlist:" + req.IMDbID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.watchlist.UpdateStatus(ctx, s.user(ctx), req.IMDbID, biz.WatchlistStatus(req.Status)); err != nil {
		return nil, toStatus(err)
	}
	e, ok := s.watchlist.Entry(req.IMDbID)
	if !ok {
		// updated in the store but not loaded in this session
		e = biz.WatchlistEntry{IMDbID: req.IMDbID, Status: biz.WatchlistStatus(req.Status)}
	}
	return entryToReply(e), nil
}

// RemoveFromWatchlist stops tracking a title. Removing an untracked title succeeds.
func (s *TrackerService) RemoveFromWatchlist(ctx context.Context, req *RemoveWatchlistRequest) (*EmptyReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	release, err := s.acquire("watchlist:" + req.IMDbID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.watchlist.Remove(ctx, s.user(ctx), req.IMDbID); err != nil {
		return nil, toStatus(err)
	}
	return &EmptyReply{}, nil
}

func entryToReply(e biz.WatchlistEntry) *WatchlistEntryReply {
	return &WatchlistEntryReply{
		ID:        e.ID,
		IMDbID:    e.IMDbID,
		Status:    string(e.Status),
		AddedAt:   e.AddedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func titleToReply(d *biz.TitleDetail) *TitleReply {
	if d == nil {
		return nil
	}
	return &TitleReply{
		ID:       d.ID,
		Title:    d.Title,
		Year:     d.Year,
		Poster:   d.Poster,
		Type:     d.Type,
		Rating:   d.Rating,
		Plot:     d.Plot,
		Director: d.Director,
		Actors:   d.Actors,
		Genre:    d.Genre,
		Runtime:  d.Runtime,
		Released: d.Released,
	}
}

func summaryToReply(t biz.TitleSummary) *TitleReply {
	return &TitleReply{
		ID:     t.ID,
		Title:  t.Title,
		Year:   t.Year,
		Poster: t.Poster,
		Type:   t.Type,
		Rating: t.Rating,
	}
}
