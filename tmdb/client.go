package tmdb

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/s0up4200/marquee/catalog"
)

const (
	// DefaultBaseURL is the TMDB v3 API root
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultImageBaseURL is the TMDB image CDN root
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var listEndpoints = map[catalog.ListKind]string{
	catalog.ListPopular:  "/movie/popular",
	catalog.ListTopRated: "/movie/top_rated",
	catalog.ListUpcoming: "/movie/upcoming",
}

// Client is a TMDB API client
type Client struct {
	http         *resty.Client
	apiKey       string
	language     string
	imageBaseURL string
	logger       zerolog.Logger
}

// NewClient creates a new TMDB client
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := resty.New().
		SetBaseURL(o.baseURL).
		SetTimeout(o.timeout).
		SetRetryCount(o.retryCount).
		SetRetryWaitTime(o.retryWait).
		SetHeader("Accept", "application/json")

	return &Client{
		http:         httpClient,
		apiKey:       apiKey,
		language:     o.language,
		imageBaseURL: o.imageBaseURL,
		logger:       logger,
	}, nil
}

// Close releases the underlying HTTP resources
func (c *Client) Close() error {
	return c.http.Close()
}

// get performs a GET request and returns the raw body of a successful response
func (c *Client) get(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetQueryParams(params)
	if c.language != "" {
		req.SetQueryParam("language", c.language)
	}

	resp, err := req.Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, catalog.NewFetchError(catalog.TransportFailure, "request cancelled", ctx.Err())
		}
		return nil, catalog.NewFetchError(catalog.TransportFailure, "", err)
	}

	if resp.IsError() || resp.StatusCode() != 200 {
		return nil, catalog.StatusError(resp.StatusCode(), statusMessage(resp.Bytes()))
	}

	body := resp.Bytes()
	if len(body) == 0 {
		return nil, catalog.NewFetchError(catalog.EmptyResponse, url, nil)
	}

	return body, nil
}

// statusMessage extracts the status_message TMDB puts in error bodies
func statusMessage(body []byte) string {
	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.StatusMessage != "" {
		return payload.StatusMessage
	}
	return strings.TrimSpace(string(body))
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return catalog.NewFetchError(catalog.DecodeFailure, "", err)
	}
	return nil
}

// FetchPage retrieves one page of a movie list
func (c *Client) FetchPage(ctx context.Context, list catalog.ListKind, page int) (*catalog.PageResult, error) {
	if page < 1 {
		return nil, catalog.NewFetchError(catalog.InvalidParameter, "page parameter is less than 1", nil)
	}

	endpoint, ok := listEndpoints[list]
	if !ok {
		return nil, catalog.NewFetchError(catalog.InvalidParameter, list.String(), ErrUnknownList)
	}

	body, err := c.get(ctx, endpoint, map[string]string{"page": strconv.Itoa(page)})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s page %d: %w", list, page, err)
	}

	var dto moviesDTO
	if err := decode(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse %s page %d: %w", list, page, err)
	}
	if dto.Page == nil || dto.Results == nil || dto.TotalPages == nil {
		return nil, catalog.NewFetchError(catalog.EmptyResponse, fmt.Sprintf("%s page %d is missing fields", list, page), nil)
	}

	items := make([]catalog.Item, 0, len(dto.Results))
	for _, m := range dto.Results {
		items = append(items, m.toItem())
	}

	c.logger.Debug().
		Str("list", list.String()).
		Int("page", *dto.Page).
		Int("count", len(items)).
		Int("total_pages", *dto.TotalPages).
		Msg("Retrieved movie list page from TMDB")

	return &catalog.PageResult{
		Page:       *dto.Page,
		Items:      items,
		TotalPages: *dto.TotalPages,
	}, nil
}

// FetchDetail retrieves the full record of a movie
func (c *Client) FetchDetail(ctx context.Context, id int) (*catalog.RemoteDetail, error) {
	if id <= 0 {
		return nil, catalog.NewFetchError(catalog.InvalidParameter, "movie id must be positive", nil)
	}

	body, err := c.get(ctx, "/movie/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get movie %d: %w", id, err)
	}

	var dto movieDetailDTO
	if err := decode(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse movie %d: %w", id, err)
	}
	if dto.ID == 0 {
		return nil, catalog.NewFetchError(catalog.EmptyResponse, fmt.Sprintf("movie %d has no id", id), nil)
	}

	return dto.toRemoteDetail(), nil
}

// FetchGenres retrieves the movie genre taxonomy
func (c *Client) FetchGenres(ctx context.Context) ([]catalog.RawGenre, error) {
	body, err := c.get(ctx, "/genre/movie/list", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get genres: %w", err)
	}

	var dto genresDTO
	if err := decode(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse genres: %w", err)
	}

	genres := make([]catalog.RawGenre, 0, len(dto.Genres))
	for _, g := range dto.Genres {
		genres = append(genres, catalog.RawGenre{ID: g.ID, Name: g.Name})
	}

	c.logger.Debug().Int("count", len(genres)).Msg("Retrieved genres from TMDB")
	return genres, nil
}

// ImageURL builds the URL of an image. A size of 0 requests the original.
func (c *Client) ImageURL(ref string, size int, format catalog.ImageFormat) (string, error) {
	if format == catalog.FormatSVG && size > 0 {
		return "", catalog.NewFetchError(catalog.InvalidParameter, "SVG format does not allow resizing", nil)
	}

	p := strings.TrimPrefix(ref, "/")
	if p == "" {
		return "", catalog.NewFetchError(catalog.InvalidParameter, "empty image path", nil)
	}
	p = strings.TrimSuffix(p, path.Ext(p))

	folder := "original"
	if size > 0 {
		folder = "w" + strconv.Itoa(size)
	}

	return fmt.Sprintf("%s/%s/%s.%s", c.imageBaseURL, folder, p, format.Extension()), nil
}

// FetchImage downloads the binary payload of an image
func (c *Client) FetchImage(ctx context.Context, ref string, size int, format catalog.ImageFormat) ([]byte, error) {
	url, err := c.ImageURL(ref, size, format)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "image/*").
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, catalog.NewFetchError(catalog.TransportFailure, "request cancelled", ctx.Err())
		}
		return nil, catalog.NewFetchError(catalog.TransportFailure, url, err)
	}
	if resp.IsError() {
		return nil, catalog.StatusError(resp.StatusCode(), url)
	}

	data := resp.Bytes()
	if len(data) == 0 {
		return nil, catalog.NewFetchError(catalog.EmptyResponse, url, nil)
	}

	return data, nil
}

// TestConnection verifies the API key by loading the genre taxonomy
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.FetchGenres(ctx)
	var fe *catalog.FetchError
	if errors.As(err, &fe) && fe.IsUnauthorized() {
		return fmt.Errorf("%w: API key rejected", ErrInvalidConfig)
	}
	return err
}
