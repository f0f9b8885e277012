package biz

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
)

var defaultTopPicks = []string{
	"Forgotten",
	"Her",
	"Atonement",
	"Death's Game",
	"Requiem for a Dream",
	"La La Land",
	"Manchester by the Sea",
	"Eternal Sunshine of the Spotless Mind",
	"Shoplifters",
	"Prisoners",
	"Dead Poets Society",
	"Monster",
	"Good Will Hunting",
	"Oldboy",
	"My Mister",
}

// TopPicksUseCase resolves a curated list of titles by name.
type TopPicksUseCase struct {
	meta    MetadataClient
	titles  []string
	workers int
	log     *log.Helper
}

// NewTopPicksUseCase creates a TopPicksUseCase for c.TopPicks, or the
// built-in list when none are configured.
func NewTopPicksUseCase(meta MetadataClient, c *conf.Tracker, logger log.Logger) *TopPicksUseCase {
	uc := &TopPicksUseCase{
		meta:    meta,
		titles:  defaultTopPicks,
		workers: 4,
		log:     log.NewHelper(logger),
	}
	if c != nil {
		if len(c.TopPicks) > 0 {
			uc.titles = nil
			for _, t := range c.TopPicks {
				if t = strings.TrimSpace(t); t != "" {
					uc.titles = append(uc.titles, t)
				}
			}
		}
		if c.HydrateConcurrency > 0 {
			uc.workers = int(c.HydrateConcurrency)
		}
	}
	return uc
}

// List looks up every curated title and returns the ones found, in list order.
func (uc *TopPicksUseCase) List(ctx context.Context) []TitleDetail {
	details := resolveEach(ctx, uc.workers, uc.titles, uc.log, func(ctx context.Context, title string) (*TitleDetail, error) {
		return uc.meta.GetByTitle(ctx, title, "", FilterAll)
	})
	out := make([]TitleDetail, 0, len(details))
	for _, d := range details {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}
