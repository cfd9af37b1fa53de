package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// maxBatchRequests is the sub-request ceiling Microsoft Graph imposes on
// one $batch call.
const maxBatchRequests = 20

// BatchRequest is one sub-request inside a $batch call. URLs are given
// relative to the Graph version root, e.g. "/me/messages/{id}".
// MakeBatchRequest assigns sequential ids; any caller-set ID is
// overwritten.
type BatchRequest struct {
	ID      string            `json:"id"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Body    json.RawMessage   `json:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// BatchResponse is one sub-response, correlated to its request by ID. A
// sub-request can fail individually; callers check Status per entry.
type BatchResponse struct {
	ID      string            `json:"id"`
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

// batchPayload is the $batch request envelope.
type batchPayload struct {
	Requests []BatchRequest `json:"requests"`
}

// batchResult is the $batch response envelope.
type batchResult struct {
	Responses []BatchResponse `json:"responses"`
}

// MakeBatchRequest submits up to 20 sub-requests as one composite call and
// returns their responses in submission order. Exceeding the ceiling is a
// validation error raised before anything is dispatched. The composite
// call itself runs through the full pipeline, so it shares the admission,
// retry and classification guarantees of single requests.
func (c *Client) MakeBatchRequest(ctx context.Context, requests []BatchRequest) ([]BatchResponse, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	if len(requests) > maxBatchRequests {
		return nil, fmt.Errorf("%w: %d sub-requests submitted, Microsoft Graph allows %d",
			ErrBatchTooLarge, len(requests), maxBatchRequests)
	}

	payload := batchPayload{Requests: make([]BatchRequest, len(requests))}
	for i, req := range requests {
		req.ID = strconv.Itoa(i + 1)
		if req.Method == "" {
			req.Method = http.MethodGet
		}
		// Graph rejects JSON sub-request bodies without a content type.
		if req.Body != nil && req.Headers == nil {
			req.Headers = map[string]string{"Content-Type": "application/json"}
		}
		payload.Requests[i] = req
	}

	raw, err := c.PostWithRetry(ctx, "/$batch", payload)
	if err != nil {
		return nil, err
	}

	var result batchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}

	// Graph may answer sub-requests in any order; restore submission order.
	byID := make(map[string]BatchResponse, len(result.Responses))
	for _, sub := range result.Responses {
		byID[sub.ID] = sub
	}

	ordered := make([]BatchResponse, 0, len(requests))
	for i := range requests {
		id := strconv.Itoa(i + 1)
		sub, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("batch response missing sub-response %q", id)
		}
		ordered = append(ordered, sub)
	}
	return ordered, nil
}
