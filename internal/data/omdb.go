package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/singleflight"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
)

const notAvailable = "N/A"

// omdbTitle is one title as the OMDb API returns it.
type omdbTitle struct {
	IMDbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	Type       string `json:"Type"`
	Plot       string `json:"Plot"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Genre      string `json:"Genre"`
	IMDbRating string `json:"imdbRating"`
	Runtime    string `json:"Runtime"`
	Released   string `json:"Released"`
}

type omdbSearchResponse struct {
	Search       []omdbTitle `json:"Search"`
	TotalResults string      `json:"totalResults"`
	Response     string      `json:"Response"`
	Error        string      `json:"Error"`
}

type omdbDetailResponse struct {
	omdbTitle
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

type metadataClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	data    *Data
	group   singleflight.Group
	log     *log.Helper
}

// NewMetadataClient creates the OMDb metadata gateway. Lookups are cached in
// redis when data carries a client.
func NewMetadataClient(c *conf.Metadata, data *Data, logger log.Logger) biz.MetadataClient {
	timeout := 10 * time.Second
	if c.Timeout != nil {
		timeout = c.Timeout.AsDuration()
	}
	return &metadataClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: c.URL,
		apiKey:  c.APIKey,
		data:    data,
		log:     log.NewHelper(logger),
	}
}

func (c *metadataClient) Search(ctx context.Context, q biz.SearchQuery) (*biz.SearchPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	params := url.Values{}
	params.Set("s", q.Query)
	params.Set("page", strconv.Itoa(q.Page))
	if q.Type != "" && q.Type != biz.FilterAll {
		params.Set("type", string(q.Type))
	}
	if q.Year != "" {
		params.Set("y", q.Year)
	}

	cacheKey := fmt.Sprintf("omdb:search:%s:%s:%d:%s", q.Type, q.Year, q.Page, strings.ToLower(q.Query))
	var page biz.SearchPage
	if c.cacheGet(ctx, cacheKey, &page) {
		return &page, nil
	}

	var resp omdbSearchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	if resp.Response != "True" {
		return &biz.SearchPage{OK: false, Error: resp.Error}, nil
	}

	total, err := strconv.Atoi(strings.TrimSpace(resp.TotalResults))
	if err != nil || total < len(resp.Search) {
		return nil, fmt.Errorf("failed to decode metadata response: totalResults %q for %d items", resp.TotalResults, len(resp.Search))
	}
	page = biz.SearchPage{OK: true, TotalResults: total, Items: make([]biz.TitleSummary, 0, len(resp.Search))}
	for _, t := range resp.Search {
		page.Items = append(page.Items, t.summary())
	}
	c.cacheSet(ctx, cacheKey, page)
	return &page, nil
}

func (c *metadataClient) GetByID(ctx context.Context, id string) (*biz.TitleDetail, error) {
	cacheKey := "omdb:title:" + id
	var detail biz.TitleDetail
	if c.cacheGet(ctx, cacheKey, &detail) {
		return &detail, nil
	}

	// concurrent hydration of the same id shares one request, which must
	// outlive whichever caller started it
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		params := url.Values{}
		params.Set("i", id)
		params.Set("plot", "full")
		return c.lookup(shared, params)
	})
	if err != nil {
		return nil, err
	}
	d := v.(*biz.TitleDetail)
	c.cacheSet(ctx, cacheKey, d)
	return d, nil
}

func (c *metadataClient) GetByTitle(ctx context.Context, title, year string, typ biz.TypeFilter) (*biz.TitleDetail, error) {
	params := url.Values{}
	params.Set("t", title)
	params.Set("plot", "full")
	if year != "" {
		params.Set("y", year)
	}
	if typ != "" && typ != biz.FilterAll {
		params.Set("type", string(typ))
	}
	return c.lookup(ctx, params)
}

func (c *metadataClient) lookup(ctx context.Context, params url.Values) (*biz.TitleDetail, error) {
	var resp omdbDetailResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Response != "True" {
		return nil, fmt.Errorf("%w: %s", biz.ErrTitleNotFound, resp.Error)
	}
	return resp.detail(), nil
}

func (c *metadataClient) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metadata api: unexpected status code %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode metadata response: %w", err)
	}
	return nil
}

func (c *metadataClient) cacheGet(ctx context.Context, key string, v interface{}) bool {
	if c.data == nil || c.data.rdb == nil {
		return false
	}
	cached, err := c.data.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(cached, v); err != nil {
		return false
	}
	c.log.Debugf("cache hit: %s", key)
	return true
}

func (c *metadataClient) cacheSet(ctx context.Context, key string, v interface{}) {
	if c.data == nil || c.data.rdb == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.data.rdb.Set(ctx, key, b, c.data.ttl).Err(); err != nil {
		c.log.Warnf("failed to cache %s: %v", key, err)
	}
}

func (t omdbTitle) summary() biz.TitleSummary {
	s := biz.TitleSummary{
		ID:     t.IMDbID,
		Title:  t.Title,
		Year:   orEmpty(t.Year),
		Poster: orEmpty(t.Poster),
		Type:   t.Type,
	}
	if r, err := strconv.ParseFloat(t.IMDbRating, 64); err == nil {
		s.Rating = &r
	}
	return s
}

func (t omdbTitle) detail() *biz.TitleDetail {
	return &biz.TitleDetail{
		TitleSummary: t.summary(),
		Plot:         orEmpty(t.Plot),
		Director:     orEmpty(t.Director),
		Actors:       orEmpty(t.Actors),
		Genre:        orEmpty(t.Genre),
		Runtime:      orEmpty(t.Runtime),
		Released:     orEmpty(t.Released),
	}
}

// orEmpty normalizes OMDb's "N/A" placeholder to the empty string.
func orEmpty(s string) string {
	if s == notAvailable {
		return ""
	}
	return s
}
