package twitterimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/twitter"
	"github.com/orgball2608/tweet-radar/pkg/config"
	pkgerrors "github.com/orgball2608/tweet-radar/pkg/errors"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"github.com/orgball2608/tweet-radar/pkg/retry"
	"go.uber.org/fx"
)

type TwitterImpl struct {
	baseURL  string
	token    string
	http     *http.Client
	logger   logger.Logger
	retryCfg retry.Config
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func New(opts Opts) *TwitterImpl {
	return &TwitterImpl{
		baseURL:  opts.Config.Twitter.ApiUrl,
		token:    opts.Config.Twitter.ApiToken,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   opts.Logger.WithComponent("TwitterClient"),
		retryCfg: retry.DefaultConfig(),
	}
}

var _ twitter.Client = (*TwitterImpl)(nil)

type userLookupResponse struct {
	Success  bool   `json:"success"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Error    string `json:"error"`
}

type tweetPayload struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"author"`
	CreatedAt    string `json:"createdAt"`
	ReplyCount   int    `json:"replyCount"`
	RetweetCount int    `json:"retweetCount"`
	LikeCount    int    `json:"likeCount"`
}

type timelineResponse struct {
	Success bool           `json:"success"`
	Tweets  []tweetPayload `json:"tweets"`
	Error   string         `json:"error"`
}

// ResolveUserID resolves a handle to the platform's internal user id
func (t *TwitterImpl) ResolveUserID(ctx context.Context, handle string) (twitter.UserLookup, error) {
	var res userLookupResponse
	path := "/users/by-username/" + url.PathEscape(domain.NormalizeHandle(handle))
	if err := t.getJSON(ctx, path, nil, &res); err != nil {
		return twitter.UserLookup{}, err
	}
	if !res.Success || res.UserID == "" {
		return twitter.UserLookup{}, pkgerrors.Wrap(pkgerrors.ErrNotFound, "user "+handle)
	}
	return twitter.UserLookup{
		UserID:   res.UserID,
		Username: res.Username,
		Name:     res.Name,
	}, nil
}

// GetUserTweets returns up to limit recent tweets for a resolved user id
func (t *TwitterImpl) GetUserTweets(ctx context.Context, userID string, limit int) ([]domain.Tweet, error) {
	return t.fetchTimeline(ctx, "/users/"+url.PathEscape(userID)+"/tweets", limit)
}

// GetFeedTimeline returns up to limit recent tweets from the generic feed
func (t *TwitterImpl) GetFeedTimeline(ctx context.Context, limit int) ([]domain.Tweet, error) {
	return t.fetchTimeline(ctx, "/timeline", limit)
}

// Search returns up to limit tweets matching the query
func (t *TwitterImpl) Search(ctx context.Context, query string, limit int) ([]domain.Tweet, error) {
	return t.fetchTimeline(ctx, "/search", limit, "query", query)
}

func (t *TwitterImpl) fetchTimeline(ctx context.Context, path string, limit int, extraQuery ...string) ([]domain.Tweet, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	for i := 0; i+1 < len(extraQuery); i += 2 {
		params.Set(extraQuery[i], extraQuery[i+1])
	}

	var res timelineResponse
	if err := t.getJSON(ctx, path, params, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "timeline fetch failed"
		}
		return nil, pkgerrors.Wrap(pkgerrors.ErrServiceUnavailable, msg)
	}

	tweets := make([]domain.Tweet, 0, len(res.Tweets))
	for _, payload := range res.Tweets {
		tweets = append(tweets, mapTweet(payload))
	}
	return tweets, nil
}

func (t *TwitterImpl) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := t.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoffPermanent(err)
		}
		if t.token != "" {
			req.Header.Set("Authorization", "Bearer "+t.token)
		}

		resp, err := t.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return backoffPermanent(pkgerrors.ErrNotFound)
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("upstream status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, out)
	}

	if err := retry.Do(ctx, t.logger, "twitter "+path, operation, t.retryCfg); err != nil {
		if pkgerrors.IsNotFound(err) {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.ErrServiceUnavailable, err.Error())
	}
	return nil
}

// backoffPermanent marks an error as not retryable.
func backoffPermanent(err error) error {
	return backoff.Permanent(err)
}

func mapTweet(payload tweetPayload) domain.Tweet {
	createdAt, err := time.Parse(time.RFC3339, payload.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	tweet := domain.Tweet{
		TweetID:        payload.ID,
		Handle:         domain.NormalizeHandle(payload.Author.Username),
		CreatedAt:      createdAt,
		Text:           payload.Text,
		AuthorName:     payload.Author.Name,
		AuthorUsername: payload.Author.Username,
		ReplyCount:     payload.ReplyCount,
		RetweetCount:   payload.RetweetCount,
		LikeCount:      payload.LikeCount,
	}
	tweet.Engagement = tweet.EngagementScore()

	if payload.Author.Username != "" && payload.ID != "" {
		u := fmt.Sprintf("https://x.com/%s/status/%s", payload.Author.Username, payload.ID)
		tweet.URL = &u
	}
	return tweet
}
