package msgraph

import (
	"net/url"
	"strconv"
	"strings"
)

// RequestOptions is the OData query shape applied to one request. Every
// field is optional and independently omittable; only set fields are
// emitted as query parameters.
type RequestOptions struct {
	// Select limits the returned properties ($select).
	Select []string
	// Top bounds the page size ($top).
	Top int
	// Filter is an OData filter expression ($filter).
	Filter string
	// OrderBy is an OData sort expression ($orderby).
	OrderBy string
	// Expand inlines a related resource ($expand).
	Expand string
	// Search is a free-text search clause ($search). Graph requires the
	// clause in double quotes; unquoted input is quoted automatically.
	Search string
	// Prefer is sent as a Prefer header rather than a query parameter,
	// e.g. `outlook.timezone="UTC"`.
	Prefer string
}

// buildURL joins a resource path to the service root and applies the query
// shape. Paths are given relative to the Graph version root, e.g.
// "/me/messages", and may carry their own query string.
func (c *Client) buildURL(resourcePath string, opts *RequestOptions) string {
	target := c.baseURL + "/" + strings.TrimLeft(resourcePath, "/")
	if opts == nil {
		return target
	}

	q := url.Values{}
	if len(opts.Select) > 0 {
		q.Set("$select", strings.Join(opts.Select, ","))
	}
	if opts.Top > 0 {
		q.Set("$top", strconv.Itoa(opts.Top))
	}
	if opts.Filter != "" {
		q.Set("$filter", opts.Filter)
	}
	if opts.OrderBy != "" {
		q.Set("$orderby", opts.OrderBy)
	}
	if opts.Expand != "" {
		q.Set("$expand", opts.Expand)
	}
	if opts.Search != "" {
		q.Set("$search", quoteSearch(opts.Search))
	}

	if encoded := q.Encode(); encoded != "" {
		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}
		target += separator + encoded
	}
	return target
}

// quoteSearch wraps a search clause in the double quotes Graph requires,
// leaving already-quoted clauses untouched.
func quoteSearch(clause string) string {
	if len(clause) >= 2 && strings.HasPrefix(clause, `"`) && strings.HasSuffix(clause, `"`) {
		return clause
	}
	return `"` + clause + `"`
}
