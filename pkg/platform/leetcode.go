package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const leetcodeGraphQLURL = "https://leetcode.com/graphql"

// LeetCodeConfig defines configuration options for the LeetCode client.
type LeetCodeConfig struct {
	// GraphQLURL overrides the GraphQL endpoint, used by tests.
	GraphQLURL string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// LeetCodeClient implements Client against the LeetCode GraphQL API.
type LeetCodeClient struct {
	graphqlURL string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewLeetCodeClient builds a LeetCode client.
func NewLeetCodeClient(cfg LeetCodeConfig) *LeetCodeClient {
	if cfg.GraphQLURL == "" {
		cfg.GraphQLURL = leetcodeGraphQLURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &LeetCodeClient{
		graphqlURL: cfg.GraphQLURL,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger.With().Str("component", "leetcode_client").Logger(),
	}
}

// Name returns the platform identifier for registry dispatch.
func (c *LeetCodeClient) Name() string {
	return "leetcode"
}

type leetcodeGraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

const leetcodeRecentAcQuery = `query recentAcSubmissions($username: String!, $limit: Int!) {
  recentAcSubmissionList(username: $username, limit: $limit) {
    titleSlug
    timestamp
  }
}`

const leetcodeSubmissionListQuery = `query submissionList($offset: Int!, $limit: Int!, $questionSlug: String!) {
  submissionList(offset: $offset, limit: $limit, questionSlug: $questionSlug) {
    submissions {
      statusDisplay
      timestamp
    }
  }
}`

// FetchAllSolved returns the slugs of the user's recent accepted submissions
// via the public recentAcSubmissionList query.
func (c *LeetCodeClient) FetchAllSolved(ctx context.Context, username string) (map[string]struct{}, error) {
	solved := make(map[string]struct{})

	var body struct {
		Data struct {
			RecentAcSubmissionList []struct {
				TitleSlug string `json:"titleSlug"`
			} `json:"recentAcSubmissionList"`
		} `json:"data"`
	}

	request := leetcodeGraphQLRequest{
		Query:     leetcodeRecentAcQuery,
		Variables: map[string]any{"username": username, "limit": 200},
	}

	if err := c.query(ctx, "fetch_all_solved", request, "", &body); err != nil {
		c.logger.Error().Err(err).Str("username", username).Msg("leetcode bulk query failed")
		return solved, nil
	}

	for _, entry := range body.Data.RecentAcSubmissionList {
		if entry.TitleSlug != "" {
			solved[entry.TitleSlug] = struct{}{}
		}
	}

	c.logger.Debug().Str("username", username).Int("solved", len(solved)).Msg("fetched leetcode solved set")

	return solved, nil
}

// FetchSingleSubmission queries the authenticated submissionList endpoint
// using the LEETCODE_SESSION cookie and returns the newest accepted
// submission for the slug.
func (c *LeetCodeClient) FetchSingleSubmission(ctx context.Context, slug, cookie string) (*SubmissionRecord, error) {
	var body struct {
		Data struct {
			SubmissionList *struct {
				Submissions []struct {
					StatusDisplay string `json:"statusDisplay"`
					Timestamp     string `json:"timestamp"`
				} `json:"submissions"`
			} `json:"submissionList"`
		} `json:"data"`
	}

	request := leetcodeGraphQLRequest{
		Query:     leetcodeSubmissionListQuery,
		Variables: map[string]any{"offset": 0, "limit": 20, "questionSlug": slug},
	}

	if err := c.query(ctx, "fetch_single_submission", request, cookie, &body); err != nil {
		if errors.Is(err, ErrCredentialExpired) {
			return nil, err
		}
		c.logger.Error().Err(err).Str("slug", slug).Msg("leetcode submission query failed")
		return nil, nil
	}

	if body.Data.SubmissionList == nil {
		return nil, nil
	}

	for _, entry := range body.Data.SubmissionList.Submissions {
		if entry.StatusDisplay != "Accepted" {
			continue
		}

		epoch, err := strconv.ParseInt(entry.Timestamp, 10, 64)
		if err != nil {
			c.logger.Warn().Str("slug", slug).Str("timestamp", entry.Timestamp).Msg("unparseable leetcode timestamp")
			continue
		}

		return &SubmissionRecord{SubmittedAt: time.Unix(epoch, 0).UTC(), Accepted: true}, nil
	}

	return nil, nil
}

func (c *LeetCodeClient) query(ctx context.Context, operation string, request leetcodeGraphQLRequest, cookie string, out any) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com/")
	if cookie != "" {
		req.Header.Set("Cookie", fmt.Sprintf("LEETCODE_SESSION=%s", cookie))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(c.Name(), operation).Observe(time.Since(start).Seconds())
	if err != nil {
		requestFailures.WithLabelValues(c.Name(), operation).Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		requestFailures.WithLabelValues(c.Name(), operation).Inc()
		return ErrCredentialExpired
	}

	if resp.StatusCode != http.StatusOK {
		requestFailures.WithLabelValues(c.Name(), operation).Inc()
		return fmt.Errorf("leetcode responded with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		requestFailures.WithLabelValues(c.Name(), operation).Inc()
		return err
	}

	return nil
}
