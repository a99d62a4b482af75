package platform

import (
	"context"
	"errors"
	"time"
)

// ErrCredentialExpired signals that a stored session cookie was rejected by
// the platform with an authorization error. It is the only error a Client is
// allowed to propagate; every other failure degrades to an empty result.
var ErrCredentialExpired = errors.New("platform credential expired")

// SubmissionRecord is an accepted submission found through a cookie-based
// per-problem lookup, carrying the exact platform timestamp.
type SubmissionRecord struct {
	SubmittedAt time.Time
	Accepted    bool
}

// Client is the capability surface every judge platform adapter implements.
//
// FetchAllSolved queries a public/bulk endpoint and returns the set of solved
// problem slugs for the username. It never errors for ordinary absence of
// data; any failure yields an empty set and a log line.
//
// FetchSingleSubmission queries an authenticated per-problem endpoint using
// the stored cookie. It returns nil when no accepted submission exists and
// ErrCredentialExpired when the platform answers 401/403.
type Client interface {
	Name() string
	FetchAllSolved(ctx context.Context, username string) (map[string]struct{}, error)
	FetchSingleSubmission(ctx context.Context, slug, cookie string) (*SubmissionRecord, error)
}
