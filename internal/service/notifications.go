package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
)

// NotificationItem is one queued notification as the presentation layer sees it.
type NotificationItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Variant     string    `json:"variant"`
	At          time.Time `json:"at"`
}

// NotificationFeed buffers notifications until the presentation layer drains
// them. When full, the oldest notification is dropped.
type NotificationFeed struct {
	size int
	log  *log.Helper
	now  func() time.Time

	mu    sync.Mutex
	items []NotificationItem
}

// NewNotificationFeed creates a feed holding at most c.NotificationBuffer items.
func NewNotificationFeed(c *conf.Tracker, logger log.Logger) *NotificationFeed {
	size := 32
	if c != nil && c.NotificationBuffer > 0 {
		size = int(c.NotificationBuffer)
	}
	return &NotificationFeed{
		size: size,
		log:  log.NewHelper(logger),
		now:  time.Now,
	}
}

// Notify implements biz.Notifier.
func (f *NotificationFeed) Notify(_ context.Context, n biz.Notification) {
	item := NotificationItem{
		ID:          uuid.NewString(),
		Title:       n.Title,
		Description: n.Description,
		Variant:     string(n.Variant),
		At:          f.now(),
	}
	if n.Variant == biz.VariantDestructive {
		f.log.Warnf("notify: %s: %s", n.Title, n.Description)
	} else {
		f.log.Debugf("notify: %s: %s", n.Title, n.Description)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) >= f.size {
		dropped := len(f.items) - f.size + 1
		f.items = append(f.items[:0], f.items[dropped:]...)
	}
	f.items = append(f.items, item)
}

// Drain returns the queued notifications, oldest first, and empties the feed.
func (f *NotificationFeed) Drain() []NotificationItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	if out == nil {
		out = []NotificationItem{}
	}
	return out
}
