package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/ranker"
	"github.com/stretchr/testify/require"
)

func TestCountClampsIntoRange(t *testing.T) {
	require.Equal(t, 20, count(nil, 20))

	v := 250.0
	require.Equal(t, 100, count(&v, 20))

	v = -5
	require.Equal(t, 1, count(&v, 20))

	v = 7.9
	require.Equal(t, 7, count(&v, 20))
}

func TestParseTimeAcceptsRFC3339AndEpochMillis(t *testing.T) {
	ts := parseTime("2026-08-01T12:00:00Z")
	require.NotNil(t, ts)
	require.Equal(t, 2026, ts.Year())

	ms := parseTime("1754049600000")
	require.NotNil(t, ms)
	require.Equal(t, time.UnixMilli(1754049600000).Unix(), ms.Unix())

	require.Nil(t, parseTime(""))
	require.Nil(t, parseTime("not a time"))
}

func TestNormalizeHandlesDropsEmpties(t *testing.T) {
	got := normalizeHandles([]string{" @Alice ", "", "@", "BOB"})
	require.Equal(t, []string{"alice", "bob"}, got)
}

func TestRankedTweetAlwaysEmitsOutlierFields(t *testing.T) {
	// an author whose tweets all have zero engagement still gets a baseline
	// of 1 and an outlier score of 0; both keys must be present
	dto := mapRankedTweets([]ranker.RankedTweet{{
		Tweet:          domain.Tweet{TweetID: "1", Handle: "a"},
		Engagement:     0,
		BaselineMedian: 1,
		OutlierScore:   0,
	}})

	raw, err := json.Marshal(dto[0])
	require.NoError(t, err)
	require.Contains(t, string(raw), `"outlierScore":0`)
	require.Contains(t, string(raw), `"baselineMedian":1`)
}

func TestEngagementTweetOmitsOutlierFields(t *testing.T) {
	dto := mapEngagementTweets([]ranker.RankedTweet{{
		Tweet:      domain.Tweet{TweetID: "1", Handle: "a"},
		Engagement: 42,
	}})

	raw, err := json.Marshal(dto[0])
	require.NoError(t, err)
	require.Contains(t, string(raw), `"engagement":42`)
	require.NotContains(t, string(raw), "outlierScore")
	require.NotContains(t, string(raw), "baselineMedian")
}

func TestDecodeBodyTreatsEmptyBodyAsEmptyObject(t *testing.T) {
	var req searchRequest

	r := httptest.NewRequest("POST", "/api/search", strings.NewReader(""))
	w := httptest.NewRecorder()
	require.True(t, decodeBody(w, r, &req))

	r = httptest.NewRequest("POST", "/api/search", strings.NewReader("{nope"))
	w = httptest.NewRecorder()
	require.False(t, decodeBody(w, r, &req))
	require.Equal(t, 400, w.Code)
}
