package biz

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
)

// WatchlistUseCase owns the in-memory watchlist of the current user.
// Every mutation is pushed through to the remote store first and applied
// to memory only after the store call succeeds.
type WatchlistUseCase struct {
	repo     WatchlistRepo
	meta     MetadataClient
	notifier Notifier
	workers  int
	log      *log.Helper

	mu       sync.Mutex
	owner    string
	epoch    uint64
	detached bool
	entries  []WatchlistEntry
}

// NewWatchlistUseCase creates a new WatchlistUseCase instance
func NewWatchlistUseCase(repo WatchlistRepo, meta MetadataClient, notifier Notifier, c *conf.Tracker, logger log.Logger) *WatchlistUseCase {
	workers := 4
	if c != nil && c.HydrateConcurrency > 0 {
		workers = int(c.HydrateConcurrency)
	}
	return &WatchlistUseCase{
		repo:     repo,
		meta:     meta,
		notifier: notifier,
		workers:  workers,
		log:      log.NewHelper(logger),
	}
}

// FetchAll replaces the in-memory list with the store's rows for user.
// On failure the previous list is left untouched.
func (uc *WatchlistUseCase) FetchAll(ctx context.Context, user *User) error {
	if user == nil {
		return ErrUnauthenticated
	}

	epoch := uc.claim(user)

	rows, err := uc.repo.ListByUser(ctx, user.ID)
	if err != nil {
		uc.log.Errorf("error fetching watchlist for user %s: %v", user.ID, err)
		return fmt.Errorf("failed to fetch watchlist: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if err := uc.checkLocked(epoch); err != nil {
		return err
	}
	entries := make([]WatchlistEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, *r)
	}
	uc.entries = entries
	return nil
}

// Add inserts imdbID with status (Plan to Watch when empty).
func (uc *WatchlistUseCase) Add(ctx context.Context, user *User, imdbID string, status WatchlistStatus) error {
	if user == nil {
		uc.notifier.Notify(ctx, failure("Login required", "Please login to add items to your watchlist"))
		return ErrUnauthenticated
	}
	if imdbID == "" {
		return ErrNoTitleContext
	}
	if status == "" {
		status = StatusPlanToWatch
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	epoch := uc.claim(user)

	entry, err := uc.repo.Create(ctx, user.ID, imdbID, status)
	if err != nil {
		uc.log.Errorf("error adding %s to watchlist: %v", imdbID, err)
		uc.notifier.Notify(ctx, failure("Error", "Failed to add to watchlist"))
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}

	uc.mu.Lock()
	if err := uc.checkLocked(epoch); err != nil {
		uc.mu.Unlock()
		return err
	}
	if i := uc.indexLocked(entry.IMDbID); i >= 0 {
		uc.entries[i] = *entry
	} else {
		uc.entries = append(uc.entries, *entry)
	}
	uc.mu.Unlock()

	uc.notifier.Notify(ctx, success("Added to watchlist", fmt.Sprintf("Movie added as %q", status)))
	return nil
}

// UpdateStatus sets the status of the entry keyed by imdbID.
func (uc *WatchlistUseCase) UpdateStatus(ctx context.Context, user *User, imdbID string, status WatchlistStatus) error {
	if user == nil {
		uc.notifier.Notify(ctx, loginRequired)
		return ErrUnauthenticated
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	epoch := uc.claim(user)

	updated, err := uc.repo.UpdateStatus(ctx, user.ID, imdbID, status)
	if err != nil {
		uc.log.Errorf("error updating watchlist status of %s: %v", imdbID, err)
		uc.notifier.Notify(ctx, failure("Error", "Failed to update status"))
		return fmt.Errorf("failed to update status: %w", err)
	}

	uc.mu.Lock()
	if err := uc.checkLocked(epoch); err != nil {
		uc.mu.Unlock()
		return err
	}
	if i := uc.indexLocked(imdbID); i >= 0 {
		uc.entries[i].Status = status
		uc.entries[i].UpdatedAt = updated.UpdatedAt
	}
	uc.mu.Unlock()

	uc.notifier.Notify(ctx, success("Status updated", fmt.Sprintf("Updated to %q", status)))
	return nil
}

// Remove deletes the entry keyed by imdbID. The delete is issued even when
// the entry is not in memory.
func (uc *WatchlistUseCase) Remove(ctx context.Context, user *User, imdbID string) error {
	if user == nil {
		uc.notifier.Notify(ctx, loginRequired)
		return ErrUnauthenticated
	}
	epoch := uc.claim(user)

	if err := uc.repo.Delete(ctx, user.ID, imdbID); err != nil {
		uc.log.Errorf("error removing %s from watchlist: %v", imdbID, err)
		uc.notifier.Notify(ctx, failure("Error", "Failed to remove from watchlist"))
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}

	uc.mu.Lock()
	if err := uc.checkLocked(epoch); err != nil {
		uc.mu.Unlock()
		return err
	}
	if i := uc.indexLocked(imdbID); i >= 0 {
		uc.entries = append(uc.entries[:i], uc.entries[i+1:]...)
	}
	uc.mu.Unlock()

	uc.notifier.Notify(ctx, success("Removed from watchlist", "Movie removed from your watchlist"))
	return nil
}

// Entry looks up imdbID in memory.
func (uc *WatchlistUseCase) Entry(imdbID string) (WatchlistEntry, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if i := uc.indexLocked(imdbID); i >= 0 {
		return uc.entries[i], true
	}
	return WatchlistEntry{}, false
}

// Entries returns a copy of the in-memory list in store order.
func (uc *WatchlistUseCase) Entries() []WatchlistEntry {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return append([]WatchlistEntry(nil), uc.entries...)
}

// ByStatus returns the entries currently in status.
func (uc *WatchlistUseCase) ByStatus(status WatchlistStatus) []WatchlistEntry {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	var out []WatchlistEntry
	for _, e := range uc.entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

// WatchlistStats counts entries per status.
type WatchlistStats struct {
	Total    int
	ByStatus map[WatchlistStatus]int
}

func (uc *WatchlistUseCase) Stats() WatchlistStats {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	st := WatchlistStats{Total: len(uc.entries), ByStatus: make(map[WatchlistStatus]int, len(Statuses))}
	for _, s := range Statuses {
		st.ByStatus[s] = 0
	}
	for _, e := range uc.entries {
		st.ByStatus[e.Status]++
	}
	return st
}

// TitledEntry is a watchlist entry with its resolved metadata, if any.
type TitledEntry struct {
	WatchlistEntry
	Title *TitleDetail
}

// Hydrate resolves metadata for entries. Lookups that fail leave Title nil.
func (uc *WatchlistUseCase) Hydrate(ctx context.Context, entries []WatchlistEntry) []TitledEntry {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.IMDbID
	}
	details := resolveTitles(ctx, uc.meta, uc.workers, ids, uc.log)
	out := make([]TitledEntry, len(entries))
	for i, e := range entries {
		out[i] = TitledEntry{WatchlistEntry: e, Title: details[i]}
	}
	return out
}

// Reset forgets the current user's list, e.g. on logout.
func (uc *WatchlistUseCase) Reset() {
	uc.mu.Lock()
	uc.owner = ""
	uc.entries = nil
	uc.epoch++
	uc.mu.Unlock()
}

// Detach stops the synchronizer; results of calls still in flight are discarded.
func (uc *WatchlistUseCase) Detach() {
	uc.mu.Lock()
	uc.detached = true
	uc.epoch++
	uc.mu.Unlock()
}

// claim binds the list to user and returns the epoch a pending result must
// still match. Switching owners drops the previous owner's list.
func (uc *WatchlistUseCase) claim(user *User) uint64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.owner != user.ID {
		uc.owner = user.ID
		uc.entries = nil
		uc.epoch++
	}
	return uc.epoch
}

func (uc *WatchlistUseCase) checkLocked(epoch uint64) error {
	if uc.detached {
		return ErrDetached
	}
	if epoch != uc.epoch {
		uc.log.Debugf("discarding stale watchlist result (epoch %d, current %d)", epoch, uc.epoch)
		return ErrStaleResult
	}
	return nil
}

func (uc *WatchlistUseCase) indexLocked(imdbID string) int {
	for i := range uc.entries {
		if uc.entries[i].IMDbID == imdbID {
			return i
		}
	}
	return -1
}
