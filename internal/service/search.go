package service

import (
	"context"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
)

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchFilterRequest struct {
	Type string `json:"type" validate:"omitempty,oneof=all movie series"`
	Year string `json:"year" validate:"omitempty,len=4,numeric"`
}

type SearchReply struct {
	Query        string        `json:"query"`
	Type         string        `json:"type"`
	Year         string        `json:"year,omitempty"`
	Page         int           `json:"page"`
	TotalResults int           `json:"total_results"`
	State        string        `json:"state"`
	CanLoadMore  bool          `json:"can_load_more"`
	Stale        bool          `json:"stale,omitempty"`
	DisplayMode  string        `json:"display_mode"`
	Items        []*TitleReply `json:"items"`
}

type GetTitleRequest struct {
	ID string `json:"id" validate:"required"`
}

type LookupTitleRequest struct {
	Title string `json:"t" validate:"required"`
	Year  string `json:"y" validate:"omitempty,len=4,numeric"`
	Type  string `json:"type" validate:"omitempty,oneof=all movie series"`
}

type DisplayRequest struct {
	Mode string `json:"mode" validate:"required,oneof=grid list"`
}

type ViewportRequest struct {
	Width int `json:"width" validate:"gte=0"`
}

type DisplayReply struct {
	Mode       string `json:"mode"`
	Overridden bool   `json:"overridden"`
	Width      int    `json:"width"`
}

type TopPicksRequest struct{}

type TopPicksReply struct {
	Items []*TitleReply `json:"items"`
}

type NotificationsRequest struct{}

type NotificationsReply struct {
	Items []NotificationItem `json:"items"`
}

// Search starts a new search from page 1.
func (s *TrackerService) Search(ctx context.Context, req *SearchRequest) (*SearchReply, error) {
	if err := s.search.Submit(ctx, req.Query); err != nil {
		return nil, toStatus(err)
	}
	return s.searchReply(), nil
}

// SetSearchFilter changes the type filter and year. With an active query
// the search restarts from page 1.
func (s *TrackerService) SetSearchFilter(ctx context.Context, req *SearchFilterRequest) (*SearchReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	if err := s.search.Refine(ctx, biz.TypeFilter(req.Type), req.Year); err != nil {
		return nil, toStatus(err)
	}
	return s.searchReply(), nil
}

// LoadMoreResults appends the next page of the active search.
func (s *TrackerService) LoadMoreResults(ctx context.Context, _ *SearchRequest) (*SearchReply, error) {
	if err := s.search.LoadMore(ctx); err != nil {
		return nil, toStatus(err)
	}
	return s.searchReply(), nil
}

// GetSearch returns the accumulated results.
func (s *TrackerService) GetSearch(context.Context, *SearchRequest) (*SearchReply, error) {
	return s.searchReply(), nil
}

// GetTitle looks up one title by id with its full plot.
func (s *TrackerService) GetTitle(ctx context.Context, req *GetTitleRequest) (*TitleReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	d, err := s.meta.GetByID(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return titleToReply(d), nil
}

// LookupTitle looks up one title by its exact name.
func (s *TrackerService) LookupTitle(ctx context.Context, req *LookupTitleRequest) (*TitleReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	d, err := s.meta.GetByTitle(ctx, req.Title, req.Year, biz.TypeFilter(req.Type))
	if err != nil {
		return nil, toStatus(err)
	}
	return titleToReply(d), nil
}

// GetDisplay returns the current display mode.
func (s *TrackerService) GetDisplay(context.Context, *ViewportRequest) (*DisplayReply, error) {
	return s.displayReply(), nil
}

// ReportViewport records the presentation width; the display mode follows
// it until the user has picked a mode.
func (s *TrackerService) ReportViewport(_ context.Context, req *ViewportRequest) (*DisplayReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	s.viewport.Report(req.Width)
	return s.displayReply(), nil
}

// SelectDisplay applies an explicit display mode for the rest of the session.
func (s *TrackerService) SelectDisplay(_ context.Context, req *DisplayRequest) (*DisplayReply, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	if err := s.display.Select(biz.DisplayMode(req.Mode)); err != nil {
		return nil, toStatus(err)
	}
	return s.displayReply(), nil
}

// TopPicks returns the curated titles that could be found.
func (s *TrackerService) TopPicks(ctx context.Context, _ *TopPicksRequest) (*TopPicksReply, error) {
	picks := s.picks.List(ctx)
	reply := &TopPicksReply{Items: make([]*TitleReply, 0, len(picks))}
	for i := range picks {
		reply.Items = append(reply.Items, titleToReply(&picks[i]))
	}
	return reply, nil
}

// Notifications drains the notification feed.
func (s *TrackerService) Notifications(context.Context, *NotificationsRequest) (*NotificationsReply, error) {
	return &NotificationsReply{Items: s.feed.Drain()}, nil
}

func (s *TrackerService) searchReply() *SearchReply {
	snap := s.search.Snapshot()
	reply := &SearchReply{
		Query:        snap.Query,
		Type:         string(snap.Type),
		Year:         snap.Year,
		Page:         snap.Page,
		TotalResults: snap.TotalResults,
		State:        string(snap.State),
		CanLoadMore:  snap.CanLoadMore,
		Stale:        snap.Stale,
		DisplayMode:  string(s.display.Mode()),
		Items:        make([]*TitleReply, 0, len(snap.Items)),
	}
	for _, t := range snap.Items {
		reply.Items = append(reply.Items, summaryToReply(t))
	}
	return reply
}

func (s *TrackerService) displayReply() *DisplayReply {
	return &DisplayReply{
		Mode:       string(s.display.Mode()),
		Overridden: s.display.Overridden(),
		Width:      s.viewport.Width(),
	}
}
