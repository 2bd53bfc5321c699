package server

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/twitter/mocks"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newSearchHandlers(t *testing.T) (*Handlers, *mocks.MockClient) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	return &Handlers{twitter: client, logger: logger.NewNop()}, client
}

func TestSearchTrimsQueryBeforeForwarding(t *testing.T) {
	h, client := newSearchHandlers(t)
	client.EXPECT().
		Search(gomock.Any(), "golang tips", 20).
		Return([]domain.Tweet{}, nil)

	r := httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"query":"  golang tips  "}`))
	w := httptest.NewRecorder()
	h.search(w, r)

	require.Equal(t, 200, w.Code)
}

func TestSearchRejectsWhitespaceOnlyQuery(t *testing.T) {
	h, _ := newSearchHandlers(t)

	r := httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"query":"   "}`))
	w := httptest.NewRecorder()
	h.search(w, r)

	require.Equal(t, 400, w.Code)
}
