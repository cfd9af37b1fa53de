// Package msgraph is the Microsoft Graph API access layer.
//
// This package provides:
//   - A request pipeline with OData query shaping ($select, $top, $filter,
//     $orderby, $expand, $search) and verb dispatch
//   - Bounded admission control modelling the per-mailbox concurrency
//     ceiling Microsoft Graph enforces
//   - Retry with exponential backoff that honours server Retry-After hints
//   - Error classification with correlation ids for cross-referencing
//     client logs with Graph service diagnostics
//   - JSON batch ($batch) and pagination (@odata.nextLink) helpers
//
// # Middleware order
//
// Every logical call passes through the same ordered stages: the
// admission/rate gate, the retry wrapper, correlation-id attachment, and
// finally the HTTP transport. Admission is acquired once per logical call,
// not per retry attempt, so total concurrency is bounded by logical calls
// rather than physical attempts.
//
// # Rate limits
//
// Microsoft Graph allows roughly 10,000 requests per 10 minutes per app
// and 4 concurrent requests per mailbox. The defaults in this package stay
// conservatively inside both limits.
package msgraph
