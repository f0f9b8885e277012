package server

import (
	"context"
	"net/http"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"

	"github.com/Rehan-Abrar/Cine-Note/internal/auth"
	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
	"github.com/Rehan-Abrar/Cine-Note/internal/service"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(auth.NewVerifier, NewHTTPServer)

const opPrefix = "/cinenote.v1.Tracker/"

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Server, verifier *auth.Verifier, svc *service.TrackerService, logger log.Logger) *khttp.Server {
	var opts = []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
			AuthMiddleware(verifier),
		),
	}
	if c.HTTP != nil {
		if c.HTTP.Network != "" {
			opts = append(opts, khttp.Network(c.HTTP.Network))
		}
		if c.HTTP.Addr != "" {
			opts = append(opts, khttp.Address(c.HTTP.Addr))
		}
		if c.HTTP.Timeout != nil {
			opts = append(opts, khttp.Timeout(c.HTTP.Timeout.AsDuration()))
		}
	}
	srv := khttp.NewServer(opts...)
	registerTrackerRoutes(srv, svc)
	return srv
}

func registerTrackerRoutes(srv *khttp.Server, svc *service.TrackerService) {
	srv.Route("").GET("/healthz", handle("HealthCheck", noInput[service.HealthRequest], svc.HealthCheck, http.StatusOK))

	r := srv.Route("/v1")

	r.GET("/watchlist", handle("ListWatchlist", fromQuery[service.ListWatchlistRequest], svc.ListWatchlist, http.StatusOK))
	r.POST("/watchlist", handle("AddToWatchlist", fromBody[service.AddWatchlistRequest], svc.AddToWatchlist, http.StatusCreated))
	r.PUT("/watchlist/{imdb_id}", handle("UpdateWatchlistStatus", func(ctx khttp.Context, in *service.UpdateStatusRequest) error {
		if err := ctx.Bind(in); err != nil {
			return err
		}
		in.IMDbID = ctx.Vars().Get("imdb_id")
		return nil
	}, svc.UpdateWatchlistStatus, http.StatusOK))
	r.DELETE("/watchlist/{imdb_id}", handle("RemoveFromWatchlist", func(ctx khttp.Context, in *service.RemoveWatchlistRequest) error {
		in.IMDbID = ctx.Vars().Get("imdb_id")
		return nil
	}, svc.RemoveFromWatchlist, http.StatusOK))

	r.GET("/titles", handle("LookupTitle", fromQuery[service.LookupTitleRequest], svc.LookupTitle, http.StatusOK))
	r.GET("/titles/{imdb_id}", handle("GetTitle", func(ctx khttp.Context, in *service.GetTitleRequest) error {
		in.ID = ctx.Vars().Get("imdb_id")
		return nil
	}, svc.GetTitle, http.StatusOK))
	r.GET("/titles/{imdb_id}/reviews", handle("ListReviews", func(ctx khttp.Context, in *service.ListReviewsRequest) error {
		in.IMDbID = ctx.Vars().Get("imdb_id")
		return nil
	}, svc.ListReviews, http.StatusOK))
	r.POST("/titles/{imdb_id}/reviews", handle("SubmitReview", func(ctx khttp.Context, in *service.SubmitReviewRequest) error {
		if err := ctx.Bind(in); err != nil {
			return err
		}
		in.IMDbID = ctx.Vars().Get("imdb_id")
		return nil
	}, svc.SubmitReview, http.StatusCreated))

	r.GET("/top-picks", handle("TopPicks", noInput[service.TopPicksRequest], svc.TopPicks, http.StatusOK))

	r.GET("/reviews/mine", handle("MyReviews", fromQuery[service.MyReviewsRequest], svc.MyReviews, http.StatusOK))
	r.PUT("/reviews/{id}", handle("EditReview", func(ctx khttp.Context, in *service.EditReviewRequest) error {
		if err := ctx.Bind(in); err != nil {
			return err
		}
		in.ID = ctx.Vars().Get("id")
		return nil
	}, svc.EditReview, http.StatusOK))
	r.DELETE("/reviews/{id}", handle("DeleteReview", func(ctx khttp.Context, in *service.DeleteReviewRequest) error {
		in.ID = ctx.Vars().Get("id")
		return nil
	}, svc.DeleteReview, http.StatusOK))

	r.GET("/search", handle("GetSearch", noInput[service.SearchRequest], svc.GetSearch, http.StatusOK))
	r.POST("/search", handle("Search", fromBody[service.SearchRequest], svc.Search, http.StatusOK))
	r.PUT("/search/filter", handle("SetSearchFilter", fromBody[service.SearchFilterRequest], svc.SetSearchFilter, http.StatusOK))
	r.POST("/search/more", handle("LoadMoreResults", noInput[service.SearchRequest], svc.LoadMoreResults, http.StatusOK))

	r.GET("/display", handle("GetDisplay", noInput[service.ViewportRequest], svc.GetDisplay, http.StatusOK))
	r.PUT("/display", handle("SelectDisplay", fromBody[service.DisplayRequest], svc.SelectDisplay, http.StatusOK))
	r.PUT("/display/viewport", handle("ReportViewport", fromBody[service.ViewportRequest], svc.ReportViewport, http.StatusOK))

	r.GET("/notifications", handle("Notifications", noInput[service.NotificationsRequest], svc.Notifications, http.StatusOK))
}

// handle adapts a service method to a route the way generated kratos
// handlers do.
func handle[Req, Reply any](
	op string,
	bind func(khttp.Context, *Req) error,
	call func(context.Context, *Req) (*Reply, error),
	code int,
) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		var in Req
		if err := bind(ctx, &in); err != nil {
			return errors.BadRequest("BAD_REQUEST", err.Error())
		}
		khttp.SetOperation(ctx, opPrefix+op)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*Req))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(code, out)
	}
}

func noInput[Req any](khttp.Context, *Req) error { return nil }

func fromBody[Req any](ctx khttp.Context, in *Req) error { return ctx.Bind(in) }

func fromQuery[Req any](ctx khttp.Context, in *Req) error { return ctx.BindQuery(in) }
