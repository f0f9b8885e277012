package biz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

var errStoreDown = errors.New("store unavailable")

var testLogger = log.NewFilter(log.DefaultLogger, log.FilterLevel(log.LevelFatal))

// fakeWatchlistRepo is an in-memory store keyed by (user_id, imdb_id).
type fakeWatchlistRepo struct {
	mu    sync.Mutex
	rows  []*WatchlistEntry
	clock time.Time
	err   error
	calls map[string]int
}

func newFakeWatchlistRepo() *fakeWatchlistRepo {
	return &fakeWatchlistRepo{
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		calls: map[string]int{},
	}
}

func (f *fakeWatchlistRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeWatchlistRepo) ListByUser(_ context.Context, userID string) ([]*WatchlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.err != nil {
		return nil, f.err
	}
	var out []*WatchlistEntry
	for _, r := range f.rows {
		if r.UserID == userID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeWatchlistRepo) Create(_ context.Context, userID, imdbID string, status WatchlistStatus) (*WatchlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.UserID == userID && r.IMDbID == imdbID {
			return nil, ErrAlreadyTracked
		}
	}
	now := f.tick()
	row := &WatchlistEntry{ID: uuid.NewString(), UserID: userID, IMDbID: imdbID, Status: status, AddedAt: now, UpdatedAt: now}
	f.rows = append(f.rows, row)
	c := *row
	return &c, nil
}

func (f *fakeWatchlistRepo) UpdateStatus(_ context.Context, userID, imdbID string, status WatchlistStatus) (*WatchlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.UserID == userID && r.IMDbID == imdbID {
			r.Status = status
			r.UpdatedAt = f.tick()
			c := *r
			return &c, nil
		}
	}
	return nil, ErrEntryNotFound
}

func (f *fakeWatchlistRepo) Delete(_ context.Context, userID, imdbID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.err != nil {
		return f.err
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if !(r.UserID == userID && r.IMDbID == imdbID) {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeWatchlistRepo) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// fakeReviewRepo is an in-memory reviews collection.
type fakeReviewRepo struct {
	mu    sync.Mutex
	rows  []*Review
	clock time.Time
	err   error
	lists int
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeReviewRepo) list(match func(*Review) bool) ([]*Review, error) {
	f.lists++
	if f.err != nil {
		return nil, f.err
	}
	var out []*Review
	for _, r := range f.rows {
		if match(r) {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) ListByTitle(_ context.Context, imdbID string) ([]*Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(r *Review) bool { return r.IMDbID == imdbID })
}

func (f *fakeReviewRepo) ListByUser(_ context.Context, userID string) ([]*Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(r *Review) bool { return r.UserID == userID })
}

func (f *fakeReviewRepo) Create(_ context.Context, review *Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.clock = f.clock.Add(time.Minute)
	c := *review
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = f.clock, f.clock
	f.rows = append(f.rows, &c)
	return nil
}

func (f *fakeReviewRepo) Update(_ context.Context, userID, id, content string, rating *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, r := range f.rows {
		if r.ID == id && r.UserID == userID {
			f.clock = f.clock.Add(time.Minute)
			r.Content, r.Rating, r.UpdatedAt = content, rating, f.clock
			return nil
		}
	}
	return ErrReviewNotFound
}

func (f *fakeReviewRepo) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if !(r.ID == id && r.UserID == userID) {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

// fakeMetadata serves canned search pages and lets tests hold responses.
type fakeMetadata struct {
	mu      sync.Mutex
	pages   map[SearchQuery]*SearchPage
	titles  map[string]*TitleDetail
	err     error
	queries []SearchQuery
	gates   map[string]chan struct{}
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{
		pages:  map[SearchQuery]*SearchPage{},
		titles: map[string]*TitleDetail{},
		gates:  map[string]chan struct{}{},
	}
}

// hold blocks searches for query until the returned func is called.
func (f *fakeMetadata) hold(query string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[query] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeMetadata) Search(ctx context.Context, q SearchQuery) (*SearchPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gates[q.Query]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.pages[q]; ok {
		return p, nil
	}
	return &SearchPage{OK: false, Error: "Movie not found!"}, nil
}

func (f *fakeMetadata) GetByID(_ context.Context, id string) (*TitleDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.titles[id]; ok {
		return d, nil
	}
	return nil, ErrTitleNotFound
}

func (f *fakeMetadata) GetByTitle(_ context.Context, title, _ string, _ TypeFilter) (*TitleDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.titles {
		if d.Title == title {
			return d, nil
		}
	}
	return nil, ErrTitleNotFound
}

func (f *fakeMetadata) searched() []SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SearchQuery(nil), f.queries...)
}

// recordingNotifier keeps every notification.
type recordingNotifier struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.got) == 0 {
		return Notification{}
	}
	return r.got[len(r.got)-1]
}

func (r *recordingNotifier) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func titles(ids ...string) []TitleSummary {
	out := make([]TitleSummary, len(ids))
	for i, id := range ids {
		out[i] = TitleSummary{ID: id, Title: "Title " + id, Type: "movie"}
	}
	return out
}

func intp(n int) *int { return &n }
