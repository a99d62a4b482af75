package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	gfgPracticeAPIURL    = "https://practiceapi.geeksforgeeks.org/api/v1/user/problems/submissions/"
	gfgProblemAPIBaseURL = "https://practiceapi.geeksforgeeks.org/api/latest/problems"

	// GFG reports submission times as "2025-07-20 17:31:58".
	gfgTimeLayout = "2006-01-02 15:04:05"
)

// GFGConfig defines configuration options for the GeeksForGeeks client.
type GFGConfig struct {
	// BulkURL overrides the practice API endpoint, used by tests.
	BulkURL string
	// ProblemBaseURL overrides the per-problem API base, used by tests.
	ProblemBaseURL string
	HTTPClient     *http.Client
	Logger         zerolog.Logger
}

// GFGClient implements Client against the GeeksForGeeks practice APIs.
type GFGClient struct {
	bulkURL        string
	problemBaseURL string
	httpClient     *http.Client
	logger         zerolog.Logger
}

// NewGFGClient builds a GeeksForGeeks client.
func NewGFGClient(cfg GFGConfig) *GFGClient {
	if cfg.BulkURL == "" {
		cfg.BulkURL = gfgPracticeAPIURL
	}
	if cfg.ProblemBaseURL == "" {
		cfg.ProblemBaseURL = gfgProblemAPIBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &GFGClient{
		bulkURL:        cfg.BulkURL,
		problemBaseURL: cfg.ProblemBaseURL,
		httpClient:     cfg.HTTPClient,
		logger:         cfg.Logger.With().Str("component", "gfg_client").Logger(),
	}
}

// Name returns the platform identifier for registry dispatch.
func (c *GFGClient) Name() string {
	return "gfg"
}

type gfgBulkRequest struct {
	Handle      string `json:"handle"`
	RequestType string `json:"requestType"`
	Year        string `json:"year"`
	Month       string `json:"month"`
}

type gfgBulkResponse struct {
	Status  string                                `json:"status"`
	Message string                                `json:"message"`
	Result  map[string]map[string]gfgBulkProblems `json:"result"`
}

type gfgBulkProblems struct {
	Slug  string `json:"slug"`
	Pname string `json:"pname"`
	Lang  string `json:"lang"`
}

// FetchAllSolved queries the handle-only practice API and returns the union
// of solved slugs across all difficulty buckets.
func (c *GFGClient) FetchAllSolved(ctx context.Context, username string) (map[string]struct{}, error) {
	solved := make(map[string]struct{})

	payload, err := json.Marshal(gfgBulkRequest{Handle: username})
	if err != nil {
		return solved, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bulkURL, bytes.NewReader(payload))
	if err != nil {
		c.logger.Error().Err(err).Str("username", username).Msg("failed to build gfg bulk request")
		return solved, nil
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(c.Name(), "fetch_all_solved").Observe(time.Since(start).Seconds())
	if err != nil {
		requestFailures.WithLabelValues(c.Name(), "fetch_all_solved").Inc()
		c.logger.Error().Err(err).Str("username", username).Msg("gfg bulk request failed")
		return solved, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		requestFailures.WithLabelValues(c.Name(), "fetch_all_solved").Inc()
		c.logger.Error().Int("status", resp.StatusCode).Str("username", username).Msg("gfg bulk request returned non-200")
		return solved, nil
	}

	var body gfgBulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		requestFailures.WithLabelValues(c.Name(), "fetch_all_solved").Inc()
		c.logger.Error().Err(err).Str("username", username).Msg("failed to decode gfg bulk response")
		return solved, nil
	}

	if body.Status != "success" || body.Result == nil {
		c.logger.Warn().Str("username", username).Str("message", body.Message).Msg("gfg bulk response without result")
		return solved, nil
	}

	for _, byID := range body.Result {
		for _, problem := range byID {
			if problem.Slug != "" {
				solved[problem.Slug] = struct{}{}
			}
		}
	}

	c.logger.Debug().Str("username", username).Int("solved", len(solved)).Msg("fetched gfg solved set")

	return solved, nil
}

type gfgProblemResponse struct {
	Results *struct {
		Submissions []gfgSubmissionEntry `json:"submissions"`
	} `json:"results"`
}

type gfgSubmissionEntry struct {
	SubmissionID string `json:"submission_id"`
	Subtime      string `json:"subtime"`
	Lang         string `json:"lang"`
	ExecStatus   string `json:"exec_status"`
}

// FetchSingleSubmission queries the authenticated per-problem endpoint. The
// first entry with exec_status "1" is the accepted submission; its subtime
// carries the exact solve timestamp.
func (c *GFGClient) FetchSingleSubmission(ctx context.Context, slug, cookie string) (*SubmissionRecord, error) {
	url := fmt.Sprintf("%s/%s/submissions/user/", c.problemBaseURL, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error().Err(err).Str("slug", slug).Msg("failed to build gfg problem request")
		return nil, nil
	}
	req.Header.Set("Cookie", fmt.Sprintf("gfguserName=%s", cookie))
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://practice.geeksforgeeks.org/")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(c.Name(), "fetch_single_submission").Observe(time.Since(start).Seconds())
	if err != nil {
		requestFailures.WithLabelValues(c.Name(), "fetch_single_submission").Inc()
		c.logger.Error().Err(err).Str("slug", slug).Msg("gfg problem request failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		requestFailures.WithLabelValues(c.Name(), "fetch_single_submission").Inc()
		c.logger.Warn().Str("slug", slug).Int("status", resp.StatusCode).Msg("gfg cookie rejected")
		return nil, ErrCredentialExpired
	}

	if resp.StatusCode != http.StatusOK {
		requestFailures.WithLabelValues(c.Name(), "fetch_single_submission").Inc()
		c.logger.Error().Int("status", resp.StatusCode).Str("slug", slug).Msg("gfg problem request returned non-200")
		return nil, nil
	}

	var body gfgProblemResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		requestFailures.WithLabelValues(c.Name(), "fetch_single_submission").Inc()
		c.logger.Error().Err(err).Str("slug", slug).Msg("failed to decode gfg problem response")
		return nil, nil
	}

	if body.Results == nil {
		return nil, nil
	}

	for _, entry := range body.Results.Submissions {
		if entry.ExecStatus != "1" || entry.Subtime == "" {
			continue
		}

		submittedAt, err := time.Parse(gfgTimeLayout, entry.Subtime)
		if err != nil {
			c.logger.Warn().Str("slug", slug).Str("subtime", entry.Subtime).Msg("unparseable gfg submission time")
			continue
		}

		return &SubmissionRecord{SubmittedAt: submittedAt.UTC(), Accepted: true}, nil
	}

	return nil, nil
}
