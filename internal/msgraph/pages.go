package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// pageEnvelope is the standard Graph collection payload.
type pageEnvelope struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// PageIterator lazily walks a paginated Graph collection, one page per
// Next call. It is forward-only and not restartable: once exhausted, the
// collection can only be read again through a fresh IterateAllPages call
// with the original path and options.
type PageIterator struct {
	client  *Client
	nextURL string
	prefer  string
	started bool
	done    bool
	values  []json.RawMessage
	err     error
}

// IterateAllPages returns a lazy iterator over every page of the
// collection at path. No request is made until the first Next call. Each
// page fetch is a logical call of its own, with the full admission, retry
// and classification guarantees.
func (c *Client) IterateAllPages(path string, opts *RequestOptions) *PageIterator {
	it := &PageIterator{
		client:  c,
		nextURL: c.buildURL(path, opts),
	}
	if opts != nil {
		// Next links do not preserve headers, so the preference is
		// re-sent with every page.
		it.prefer = opts.Prefer
	}
	return it
}

// Next fetches the following page. It returns true when a page of values
// is available through Values — including an empty first page — and false
// once the collection is exhausted or a fetch failed (check Err). After it
// returns false it keeps returning false.
func (it *PageIterator) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	if it.started && it.nextURL == "" {
		it.done = true
		it.values = nil
		return false
	}
	it.started = true

	raw, err := it.client.executeURL(ctx, http.MethodGet, it.nextURL, nil, it.prefer)
	if err != nil {
		it.err = err
		it.done = true
		it.values = nil
		return false
	}

	var page pageEnvelope
	if err := json.Unmarshal(raw, &page); err != nil {
		it.err = fmt.Errorf("decode page: %w", err)
		it.done = true
		it.values = nil
		return false
	}

	// An empty page is still a page: yield an empty array, not an error.
	if page.Value == nil {
		page.Value = []json.RawMessage{}
	}
	it.values = page.Value
	it.nextURL = page.NextLink
	return true
}

// Values returns the current page's items. Valid until the next Next call.
func (it *PageIterator) Values() []json.RawMessage {
	return it.values
}

// Err returns the first error encountered while iterating, if any.
func (it *PageIterator) Err() error {
	return it.err
}

// Collect drains the iterator and flattens every page into one slice.
func (it *PageIterator) Collect(ctx context.Context) ([]json.RawMessage, error) {
	var all []json.RawMessage
	for it.Next(ctx) {
		all = append(all, it.Values()...)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return all, nil
}
