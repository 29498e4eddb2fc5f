// Package source fetches member messages from the remote message API.
//
// The fetcher is deliberately forgiving: every failure mode degrades to
// "return what we have so far". Partial results are an expected outcome
// of talking to a rate-limited upstream, never an error.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/aurorahq/memberqa/internal/config"
	"github.com/aurorahq/memberqa/internal/types"
)

// pageSize is the fixed page size requested from the source.
const pageSize = 100

// maxAttempts bounds retries for a single page request.
const maxAttempts = 3

// Fetcher pages through the remote message source.
type Fetcher struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewFetcher builds a fetcher for the configured source. client may be
// nil, in which case a client with the configured timeout is used.
func NewFetcher(cfg config.SourceConfig, client *http.Client) *Fetcher {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{
		url:     cfg.URL,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(5), 1), // polite paging: 5 pages/sec
		log:     slog.Default().With("component", "source"),
	}
}

// page is the wire shape of one source response.
type page struct {
	Items []item `json:"items"`
}

// item is one raw source record. The source has been observed sending
// both string and numeric ids, so ID tolerates either.
type item struct {
	ID        flexString `json:"id"`
	UserID    flexString `json:"user_id"`
	UserName  string     `json:"user_name"`
	Message   *string    `json:"message"`
	Timestamp string     `json:"timestamp"`
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Fetch retrieves up to limit messages, paging from offset 0 in fixed
// pages until the source runs dry or the limit is reached. Each page
// request gets up to maxAttempts tries; exhausting them ends the fetch
// with whatever was accumulated. A 401 or 403 ends the fetch
// immediately the same way. The only returned error is context
// cancellation.
func (f *Fetcher) Fetch(ctx context.Context, limit int) ([]types.Message, error) {
	var msgs []types.Message
	skip := 0

	for {
		if err := ctx.Err(); err != nil {
			return msgs, err
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return msgs, err
		}

		p, status, err := f.fetchPage(ctx, skip)
		if err != nil {
			// Retries exhausted for this page; keep what we have.
			f.log.Warn("giving up on page", "skip", skip, "error", err)
			return msgs, nil
		}
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			// The upstream is rate limiting or blocking us. Partial
			// results are fine.
			f.log.Warn("source refused request, returning partial results",
				"status", status, "fetched", len(msgs))
			return msgs, nil
		}

		if len(p.Items) == 0 {
			break
		}
		for _, it := range p.Items {
			msgs = append(msgs, normalize(it))
		}
		skip += pageSize
		if skip >= limit {
			break
		}
	}

	f.log.Info("fetch complete", "messages", len(msgs))
	return msgs, nil
}

// fetchPage requests a single page, retrying transport and decode
// failures. A 401/403 is returned as a status, not an error, so the
// caller can terminate without retrying.
func (f *Fetcher) fetchPage(ctx context.Context, skip int) (*page, int, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		p, status, err := f.doRequest(ctx, skip)
		if err == nil {
			return p, status, nil
		}
		lastErr = err
		f.log.Debug("page request failed",
			"skip", skip, "attempt", attempt+1, "error", err)
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
	}
	return nil, 0, fmt.Errorf("page at skip=%d failed after %d attempts: %w", skip, maxAttempts, lastErr)
}

func (f *Fetcher) doRequest(ctx context.Context, skip int) (*page, int, error) {
	u, err := url.Parse(f.url)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid source url: %w", err)
	}
	q := u.Query()
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "memberqa/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &page{}, resp.StatusCode, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, 0, fmt.Errorf("source returned status %d", resp.StatusCode)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, 0, fmt.Errorf("decode page: %w", err)
	}
	return &p, resp.StatusCode, nil
}

// normalize renames source fields into the canonical Message shape.
// A missing message body becomes the empty string.
func normalize(it item) types.Message {
	text := ""
	if it.Message != nil {
		text = *it.Message
	}
	return types.Message{
		ID:         string(it.ID),
		MemberID:   string(it.UserID),
		MemberName: it.UserName,
		Text:       text,
		Timestamp:  it.Timestamp,
	}
}
