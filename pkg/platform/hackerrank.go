package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const hackerrankAPIBaseURL = "https://www.hackerrank.com/rest"

// HackerRankConfig defines configuration options for the HackerRank client.
type HackerRankConfig struct {
	// BaseURL overrides the REST API base, used by tests.
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// HackerRankClient implements Client against the HackerRank REST API.
type HackerRankClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHackerRankClient builds a HackerRank client.
func NewHackerRankClient(cfg HackerRankConfig) *HackerRankClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = hackerrankAPIBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &HackerRankClient{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger.With().Str("component", "hackerrank_client").Logger(),
	}
}

// Name returns the platform identifier for registry dispatch.
func (c *HackerRankClient) Name() string {
	return "hackerrank"
}

type hackerrankRecentChallenges struct {
	Models []struct {
		Slug string `json:"ch_slug"`
	} `json:"models"`
	Total int `json:"total"`
}

// FetchAllSolved pages the public recent_challenges feed and returns the
// union of challenge slugs the user has solved.
func (c *HackerRankClient) FetchAllSolved(ctx context.Context, username string) (map[string]struct{}, error) {
	solved := make(map[string]struct{})

	offset := 0
	const pageSize = 100

	for {
		url := fmt.Sprintf("%s/hackers/%s/recent_challenges?offset=%d&limit=%d", c.baseURL, username, offset, pageSize)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			c.logger.Error().Err(err).Str("username", username).Msg("failed to build hackerrank bulk request")
			return solved, nil
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "Mozilla/5.0")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		requestDuration.WithLabelValues(c.Name(), "fetch_all_solved").Observe(time.Since(start).Seconds())
		if err != nil {
			requestFailures.WithLabelValues(c.Name(), "fetch_all_solved").Inc()
			c.logger.Error().Err(err).Str("username", username).Msg("hackerrank bulk request failed")
			return solved, nil
		}

		if resp.StatusCode != http.StatusOK {
			requestFailures.WithLabelValues(c.Name(), "fetch_all_solved").Inc()
			c.logger.Error().Int("status", resp.StatusCode).Str("username", username).Msg("hackerrank bulk request returned non-200")
			resp.Body.Close()
			return solved, nil
		}

		var body hackerrankRecentChallenges
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			requestFailures.WithLabelValues(c.Name(), "fetch_all_solved").Inc()
			c.logger.Error().Err(err).Str("username", username).Msg("failed to decode hackerrank bulk response")
			return solved, nil
		}

		for _, model := range body.Models {
			if model.Slug != "" {
				solved[model.Slug] = struct{}{}
			}
		}

		offset += len(body.Models)
		if len(body.Models) == 0 || offset >= body.Total {
			break
		}
	}

	c.logger.Debug().Str("username", username).Int("solved", len(solved)).Msg("fetched hackerrank solved set")

	return solved, nil
}

type hackerrankSubmissionList struct {
	Models []struct {
		Status    string  `json:"status"`
		CreatedAt float64 `json:"created_at_epoch"`
	} `json:"models"`
}

// FetchSingleSubmission queries the authenticated submissions endpoint using
// the _hrank_session cookie and returns the first accepted submission.
func (c *HackerRankClient) FetchSingleSubmission(ctx context.Context, slug, cookie string) (*SubmissionRecord, error) {
	url := fmt.Sprintf("%s/contests/master/challenges/%s/submissions?limit=20", c.baseURL, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error().Err(err).Str("slug", slug).Msg("failed to build hackerrank submission request")
		return nil, nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Cookie", fmt.Sprintf("_hrank_session=%s", cookie))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(c.Name(), "fetch_single_submission").Observe(time.Since(start).Seconds())
	if err != nil {
		requestFailures.WithLabelValues(c.Name(), "fetch_single_submission").Inc()
		c.logger.Error().Err(err).Str("slug", slug).Msg("hackerrank submission request failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		requestFailures.WithLabelValues(c.Name(), "fetch_single_submission").Inc()
		c.logger.Warn().Str("slug", slug).Int("status", resp.StatusCode).Msg("hackerrank cookie rejected")
		return nil, ErrCredentialExpired
	}

	if resp.StatusCode != http.StatusOK {
		requestFailures.WithLabelValues(c.Name(), "fetch_single_submission").Inc()
		c.logger.Error().Int("status", resp.StatusCode).Str("slug", slug).Msg("hackerrank submission request returned non-200")
		return nil, nil
	}

	var body hackerrankSubmissionList
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		requestFailures.WithLabelValues(c.Name(), "fetch_single_submission").Inc()
		c.logger.Error().Err(err).Str("slug", slug).Msg("failed to decode hackerrank submission response")
		return nil, nil
	}

	for _, model := range body.Models {
		if model.Status != "Accepted" {
			continue
		}
		return &SubmissionRecord{SubmittedAt: time.Unix(int64(model.CreatedAt), 0).UTC(), Accepted: true}, nil
	}

	return nil, nil
}
