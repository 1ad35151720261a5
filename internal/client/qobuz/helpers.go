package qobuz

import (
	"context"
	"crypto/md5" //nolint:gosec // The API signature scheme is defined as MD5.
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// fetchJSONWithQuery fetches JSON from the specified URI with the specified query.
//
//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func fetchJSONWithQuery[T any](
	c *ClientImpl,
	ctx context.Context,
	uri string,
	query url.Values,
) (*FetchJSONResult[T], error) {
	route, err := url.JoinPath(c.baseURL, uri)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
	if err != nil {
		return nil, err
	}

	if query != nil {
		request.URL.RawQuery = query.Encode()
	}

	response, err := c.apiClient.Do(request)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return &FetchJSONResult[T]{
			Data:       nil,
			StatusCode: response.StatusCode,
		}, statusError(response)
	}

	var result T
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		return &FetchJSONResult[T]{
			Data:       nil,
			StatusCode: response.StatusCode,
		}, err
	}

	return &FetchJSONResult[T]{
		Data:       &result,
		StatusCode: response.StatusCode,
	}, nil
}

// statusError converts a non-200 response into a wrapped sentinel error.
func statusError(response *http.Response) error {
	var apiErr APIError

	// The body is optional, a decode failure keeps the bare status.
	_ = json.NewDecoder(response.Body).Decode(&apiErr)

	code := response.StatusCode
	if apiErr.Code != 0 {
		code = apiErr.Code
	}

	var kind error

	switch code {
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrUnauthorized
	default:
		return fmt.Errorf("%w: %d %s", ErrUnexpectedHTTPStatus, response.StatusCode, apiErr.Message)
	}

	return fmt.Errorf("%w: %w: %d %s", kind, ErrUnexpectedHTTPStatus, response.StatusCode, apiErr.Message)
}

// fetchRemainingPages requests every page after the first one concurrently.
// The pages are returned in offset order.
//
//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func fetchRemainingPages[E any](
	c *ClientImpl,
	ctx context.Context,
	total int,
	fetchPage func(ctx context.Context, offset int) (*Page[E], error),
) ([][]*E, error) {
	if total <= pageSize {
		return nil, nil
	}

	pagesCount := (total - 1) / pageSize
	pages := make([][]*E, pagesCount)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrentPages)

	for i := range pagesCount {
		offset := (i + 1) * pageSize

		g.Go(func() error {
			page, err := fetchPage(groupCtx, offset)
			if err != nil {
				return fmt.Errorf("failed to fetch page at offset %d: %w", offset, err)
			}

			if page != nil {
				pages[i] = page.Items
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pages, nil
}

// signFileURLRequest computes request_sig for track/getFileUrl.
func signFileURLRequest(trackID string, formatID int, timestamp int64, secret string) string {
	payload := "trackgetFileUrlformat_id" + strconv.Itoa(formatID) +
		"intent" + streamIntent +
		"track_id" + trackID +
		strconv.FormatInt(timestamp, 10) +
		secret

	//nolint:gosec // The API signature scheme is defined as MD5.
	sum := md5.Sum([]byte(payload))

	return hex.EncodeToString(sum[:])
}
