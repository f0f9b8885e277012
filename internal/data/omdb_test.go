package data

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
)

var testLogger = log.NewFilter(log.DefaultLogger, log.FilterLevel(log.LevelFatal))

type omdbStub struct {
	mu    sync.Mutex
	seen  []url.Values
	hits  atomic.Int32
	delay time.Duration
}

func (s *omdbStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	q := r.URL.Query()
	s.mu.Lock()
	s.seen = append(s.seen, q)
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case q.Get("s") == "matrix":
		fmt.Fprint(w, `{"Search":[
			{"imdbID":"tt0133093","Title":"The Matrix","Year":"1999","Poster":"https://img/matrix.jpg","Type":"movie"},
			{"imdbID":"tt0234215","Title":"The Matrix Reloaded","Year":"2003","Poster":"N/A","Type":"movie"}
		],"totalResults":"40","Response":"True"}`)
	case q.Get("s") == "garbled":
		fmt.Fprint(w, `{"Search":[{"imdbID":"tt1","Title":"Garbled","Year":"2001","Type":"movie"}],"totalResults":"lots","Response":"True"}`)
	case q.Get("s") == "boom":
		w.WriteHeader(http.StatusInternalServerError)
	case q.Get("s") != "":
		fmt.Fprint(w, `{"Response":"False","Error":"Movie not found!"}`)
	case q.Get("i") == "tt0133093" || q.Get("t") == "The Matrix":
		fmt.Fprint(w, `{"imdbID":"tt0133093","Title":"The Matrix","Year":"1999","Poster":"N/A",
			"Type":"movie","Plot":"A hacker learns the truth.","Director":"Lana Wachowski, Lilly Wachowski",
			"Actors":"Keanu Reeves","Genre":"Action, Sci-Fi","imdbRating":"8.7","Runtime":"136 min",
			"Released":"N/A","Response":"True"}`)
	default:
		fmt.Fprint(w, `{"Response":"False","Error":"Incorrect IMDb ID."}`)
	}
}

func (s *omdbStub) last() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[len(s.seen)-1]
}

func newTestClient(t *testing.T) (biz.MetadataClient, *omdbStub) {
	t.Helper()
	stub := &omdbStub{}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	c := NewMetadataClient(&conf.Metadata{
		URL:     srv.URL + "/",
		APIKey:  "test-key",
		Timeout: durationpb.New(2 * time.Second),
	}, &Data{}, testLogger)
	return c, stub
}

func TestSearchParsesPage(t *testing.T) {
	c, stub := newTestClient(t)

	page, err := c.Search(context.Background(), biz.SearchQuery{Query: "matrix", Type: biz.FilterMovie, Year: "1999", Page: 2})
	require.NoError(t, err)

	assert.True(t, page.OK)
	assert.Equal(t, 40, page.TotalResults)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "tt0133093", page.Items[0].ID)
	assert.Equal(t, "", page.Items[1].Poster)

	q := stub.last()
	assert.Equal(t, "test-key", q.Get("apikey"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "movie", q.Get("type"))
	assert.Equal(t, "1999", q.Get("y"))
}

func TestSearchOmitsAllFilter(t *testing.T) {
	c, stub := newTestClient(t)

	_, err := c.Search(context.Background(), biz.SearchQuery{Query: "matrix", Type: biz.FilterAll})
	require.NoError(t, err)

	q := stub.last()
	assert.False(t, q.Has("type"))
	assert.False(t, q.Has("y"))
	assert.Equal(t, "1", q.Get("page"))
}

func TestSearchRemoteRejection(t *testing.T) {
	c, _ := newTestClient(t)

	page, err := c.Search(context.Background(), biz.SearchQuery{Query: "zzzz", Page: 1})
	require.NoError(t, err)
	assert.False(t, page.OK)
	assert.Equal(t, "Movie not found!", page.Error)
	assert.Empty(t, page.Items)

	_, err = c.Search(context.Background(), biz.SearchQuery{Query: "boom", Page: 1})
	require.Error(t, err)
}

func TestGetByIDNormalizesPlaceholders(t *testing.T) {
	c, stub := newTestClient(t)

	d, err := c.GetByID(context.Background(), "tt0133093")
	require.NoError(t, err)

	assert.Equal(t, "The Matrix", d.Title)
	assert.Empty(t, d.Poster)
	assert.Empty(t, d.Released)
	require.NotNil(t, d.Rating)
	assert.InDelta(t, 8.7, *d.Rating, 0.001)
	assert.Equal(t, "full", stub.last().Get("plot"))

	_, err = c.GetByID(context.Background(), "tt404")
	require.ErrorIs(t, err, biz.ErrTitleNotFound)
}

func TestGetByIDCollapsesConcurrentLookups(t *testing.T) {
	c, stub := newTestClient(t)
	stub.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetByID(context.Background(), "tt0133093")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, stub.hits.Load(), int32(8))
}

func TestGetByTitle(t *testing.T) {
	c, stub := newTestClient(t)

	d, err := c.GetByTitle(context.Background(), "The Matrix", "1999", biz.FilterMovie)
	require.NoError(t, err)
	assert.Equal(t, "tt0133093", d.ID)

	q := stub.last()
	assert.Equal(t, "1999", q.Get("y"))
	assert.Equal(t, "movie", q.Get("type"))

	_, err = c.GetByTitle(context.Background(), "Nope", "", biz.FilterAll)
	require.ErrorIs(t, err, biz.ErrTitleNotFound)
}

func TestRatingNotAvailable(t *testing.T) {
	s := omdbTitle{IMDbID: "tt1", IMDbRating: notAvailable, Poster: notAvailable, Year: "2020"}.summary()
	assert.Nil(t, s.Rating)
	assert.Empty(t, s.Poster)
	assert.Equal(t, "2020", s.Year)
}

func TestSearchRejectsMalformedTotal(t *testing.T) {
	c, _ := newTestClient(t)

	page, err := c.Search(context.Background(), biz.SearchQuery{Query: "garbled", Page: 1})

	require.Error(t, err)
	assert.Nil(t, page)
}

func TestGetByIDSurvivesFirstCallerCancel(t *testing.T) {
	c, stub := newTestClient(t)
	stub.delay = 200 * time.Millisecond

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetByID(first, "tt0133093")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return stub.hits.Load() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() {
		d, err := c.GetByID(context.Background(), "tt0133093")
		if err == nil && d.Title != "The Matrix" {
			err = fmt.Errorf("unexpected title %q", d.Title)
		}
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.NoError(t, <-second)
	<-firstErr
	assert.EqualValues(t, 1, stub.hits.Load())
}
