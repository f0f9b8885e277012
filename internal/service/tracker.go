package service

import (
	"context"
	"errors"
	"sync"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/Rehan-Abrar/Cine-Note/internal/auth"
	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
	"github.com/Rehan-Abrar/Cine-Note/internal/validate"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(
	NewNotificationFeed,
	wire.Bind(new(biz.Notifier), new(*NotificationFeed)),
	NewReportedViewport,
	wire.Bind(new(biz.Viewport), new(*ReportedViewport)),
	NewTrackerService,
)

// TrackerService is the session facade behind the HTTP routes. It resolves
// the caller from the request context and passes that identity explicitly
// into every synchronizer call.
type TrackerService struct {
	watchlist *biz.WatchlistUseCase
	reviews   *biz.ReviewUseCase
	search    *biz.SearchAggregator
	display   *biz.DisplayModeController
	picks     *biz.TopPicksUseCase
	meta      biz.MetadataClient
	feed      *NotificationFeed
	viewport  *ReportedViewport
	log       *log.Helper

	mu       sync.Mutex
	current  string
	inflight map[string]struct{}
}

// NewTrackerService creates a new TrackerService
func NewTrackerService(
	watchlist *biz.WatchlistUseCase,
	reviews *biz.ReviewUseCase,
	search *biz.SearchAggregator,
	display *biz.DisplayModeController,
	picks *biz.TopPicksUseCase,
	meta biz.MetadataClient,
	feed *NotificationFeed,
	viewport *ReportedViewport,
	logger log.Logger,
) *TrackerService {
	return &TrackerService{
		watchlist: watchlist,
		reviews:   reviews,
		search:    search,
		display:   display,
		picks:     picks,
		meta:      meta,
		feed:      feed,
		viewport:  viewport,
		log:       log.NewHelper(logger),
		inflight:  make(map[string]struct{}),
	}
}

// Close detaches the synchronizers so late results are dropped.
func (s *TrackerService) Close() {
	s.watchlist.Detach()
	s.reviews.Detach()
	s.display.Close()
}

// HealthCheck reports liveness.
func (s *TrackerService) HealthCheck(context.Context, *HealthRequest) (*HealthReply, error) {
	return &HealthReply{Status: "ok"}, nil
}

// user returns the caller and reloads the watchlist whenever the signed-in
// user differs from the previous request's.
func (s *TrackerService) user(ctx context.Context) *biz.User {
	u := auth.UserFromContext(ctx)
	id := ""
	if u != nil {
		id = u.ID
	}

	s.mu.Lock()
	changed := id != s.current
	s.current = id
	s.mu.Unlock()

	if changed {
		if u == nil {
			s.watchlist.Reset()
		} else if err := s.watchlist.FetchAll(ctx, u); err != nil {
			s.log.Warnf("initial watchlist load for %s failed: %v", u.ID, err)
		}
	}
	return u
}

// acquire marks key as in flight. A second mutation of the same key while
// the first is pending is rejected instead of queued.
func (s *TrackerService) acquire(key string) (release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return nil, kerrors.Conflict("IN_FLIGHT", "a request for this item is already in progress")
	}
	s.inflight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}, nil
}

// check validates a request DTO against its struct tags.
func check(req interface{}) error {
	if errs := validate.Map(req); len(errs) > 0 {
		return kerrors.New(422, "UNPROCESSABLE_ENTITY", validate.Join(errs))
	}
	return nil
}

// toStatus maps domain errors to transport errors.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var ke *kerrors.Error
	if errors.As(err, &ke) {
		return ke
	}
	switch {
	case errors.Is(err, biz.ErrUnauthenticated):
		return kerrors.Unauthorized("LOGIN_REQUIRED", "please login to continue")
	case errors.Is(err, biz.ErrInvalidReview),
		errors.Is(err, biz.ErrInvalidStatus),
		errors.Is(err, biz.ErrEmptyQuery),
		errors.Is(err, biz.ErrNoTitleContext):
		return kerrors.New(422, "UNPROCESSABLE_ENTITY", err.Error())
	case errors.Is(err, biz.ErrEntryNotFound),
		errors.Is(err, biz.ErrReviewNotFound),
		errors.Is(err, biz.ErrTitleNotFound):
		return kerrors.NotFound("NOT_FOUND", err.Error())
	case errors.Is(err, biz.ErrAlreadyTracked):
		return kerrors.Conflict("ALREADY_TRACKED", err.Error())
	case errors.Is(err, biz.ErrBusy):
		return kerrors.Conflict("IN_FLIGHT", err.Error())
	case errors.Is(err, biz.ErrNoMoreResults):
		return kerrors.Conflict("NO_MORE_RESULTS", err.Error())
	case errors.Is(err, biz.ErrStaleResult), errors.Is(err, biz.ErrDetached):
		return kerrors.Conflict("SUPERSEDED", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return kerrors.GatewayTimeout("TIMEOUT", err.Error())
	default:
		return kerrors.New(502, "REMOTE_REJECTED", err.Error())
	}
}

type HealthRequest struct{}

type HealthReply struct {
	Status string `json:"status"`
}
