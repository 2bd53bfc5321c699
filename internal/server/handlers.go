package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/history"
	"github.com/orgball2608/tweet-radar/internal/ingest"
	"github.com/orgball2608/tweet-radar/internal/ranker"
	"github.com/orgball2608/tweet-radar/internal/repositories/handle"
	"github.com/orgball2608/tweet-radar/internal/repositories/script"
	"github.com/orgball2608/tweet-radar/internal/repositories/selection"
	"github.com/orgball2608/tweet-radar/internal/repositories/tweet"
	"github.com/orgball2608/tweet-radar/internal/triage"
	"github.com/orgball2608/tweet-radar/internal/twitter"
	"github.com/orgball2608/tweet-radar/pkg/config"
	pkgerrors "github.com/orgball2608/tweet-radar/pkg/errors"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"github.com/orgball2608/tweet-radar/pkg/stats"
	"go.uber.org/fx"
)

type HandlersOpts struct {
	fx.In

	Twitter       twitter.Client
	Ingestor      *ingest.Ingestor
	History       *history.Engine
	Triage        *triage.Triage
	TweetRepo     tweet.Repository
	HandleRepo    handle.Repository
	SelectionRepo selection.Repository
	ScriptRepo    script.Repository
	Logger        logger.Logger
	Config        *config.Config
}

type Handlers struct {
	twitter       twitter.Client
	ingestor      *ingest.Ingestor
	history       *history.Engine
	triage        *triage.Triage
	tweetRepo     tweet.Repository
	handleRepo    handle.Repository
	selectionRepo selection.Repository
	scriptRepo    script.Repository
	logger        logger.Logger
	config        *config.Config
}

func NewHandlers(opts HandlersOpts) *Handlers {
	return &Handlers{
		twitter:       opts.Twitter,
		ingestor:      opts.Ingestor,
		history:       opts.History,
		triage:        opts.Triage,
		tweetRepo:     opts.TweetRepo,
		handleRepo:    opts.HandleRepo,
		selectionRepo: opts.SelectionRepo,
		scriptRepo:    opts.ScriptRepo,
		logger:        opts.Logger.WithComponent("API"),
		config:        opts.Config,
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.healthz)

	mux.HandleFunc("POST /api/search", h.search)
	mux.HandleFunc("POST /api/user-tweets", h.userTweets)
	mux.HandleFunc("POST /api/fetch", h.fetch)
	mux.HandleFunc("/api/cron/fetch", h.cronFetch)

	mux.HandleFunc("POST /api/handles", h.addHandles)
	mux.HandleFunc("GET /api/handles", h.listHandles)

	mux.HandleFunc("POST /api/outliers", h.outliers)
	mux.HandleFunc("POST /api/matrix", h.matrix)
	mux.HandleFunc("POST /api/history", h.queryHistory)

	mux.HandleFunc("POST /api/scripts/auto-select", h.autoSelect)
	mux.HandleFunc("GET /api/scripts/selections", h.listSelections)
	mux.HandleFunc("POST /api/scripts/selections", h.addSelection)
	mux.HandleFunc("POST /api/scripts/selections/remove", h.removeSelection)
	mux.HandleFunc("POST /api/scripts/selections/clear", h.clearSelections)

	mux.HandleFunc("POST /api/scripts", h.saveScript)
	mux.HandleFunc("GET /api/scripts", h.listScripts)
	mux.HandleFunc("POST /api/templates", h.addTemplate)
	mux.HandleFunc("GET /api/templates", h.listTemplates)
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		h.logger.Error("Failed to write response", "Error", err)
	}
}

type searchRequest struct {
	Query string   `json:"query"`
	Count *float64 `json:"count"`
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	tweets, err := h.twitter.Search(r.Context(), query, count(req.Count, 20))
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tweets": mapTweets(tweets)})
}

type userTweetsRequest struct {
	Handle string   `json:"handle"`
	Count  *float64 `json:"count"`
}

func (h *Handlers) userTweets(w http.ResponseWriter, r *http.Request) {
	var req userTweetsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Handle == "" {
		writeError(w, http.StatusBadRequest, "handle is required")
		return
	}

	lookup, err := h.twitter.ResolveUserID(r.Context(), req.Handle)
	if err != nil {
		h.fail(w, err)
		return
	}

	tweets, err := h.twitter.GetUserTweets(r.Context(), lookup.UserID, count(req.Count, 20))
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tweets": mapTweets(tweets),
		"user": map[string]any{
			"id":       lookup.UserID,
			"username": lookup.Username,
			"name":     lookup.Name,
		},
	})
}

type fetchRequest struct {
	Handles []string `json:"handles"`
}

func (h *Handlers) fetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cleaned := normalizeHandles(req.Handles)
	if len(cleaned) > 0 {
		if _, err := h.handleRepo.Upsert(r.Context(), cleaned); err != nil {
			h.fail(w, err)
			return
		}
	} else {
		stored, err := h.handleRepo.ListActive(r.Context())
		if err != nil {
			h.fail(w, err)
			return
		}
		cleaned = stored
	}

	if len(cleaned) == 0 {
		writeError(w, http.StatusBadRequest, "handles array is required")
		return
	}

	report, err := h.ingestor.Run(r.Context(), cleaned)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"handles":     report.Results,
		"storedCount": report.Stored,
	})
}

func (h *Handlers) cronFetch(w http.ResponseWriter, r *http.Request) {
	if secret := h.config.App.CronSecret; secret != "" {
		provided := r.Header.Get("X-Cron-Secret")
		if provided == "" {
			provided = r.URL.Query().Get("secret")
		}
		if provided != secret {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
	}

	report, err := h.ingestor.RunForAllActive(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if len(report.Results) == 0 {
		writeError(w, http.StatusBadRequest, "No handles stored")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"handles":     report.Results,
		"storedCount": report.Stored,
	})
}

type handlesRequest struct {
	Handles []string `json:"handles"`
}

func (h *Handlers) addHandles(w http.ResponseWriter, r *http.Request) {
	var req handlesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cleaned := normalizeHandles(req.Handles)
	if len(cleaned) == 0 {
		writeError(w, http.StatusBadRequest, "handles array is required")
		return
	}

	n, err := h.handleRepo.Upsert(r.Context(), cleaned)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"count": n})
}

func (h *Handlers) listHandles(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-ingest.Retention)
	if raw := r.URL.Query().Get("since"); raw != "" {
		if ms := stats.ClampedNumber(raw, -1); ms >= 0 {
			since = time.UnixMilli(int64(ms))
		}
	}

	handles, err := h.handleRepo.ListWithStats(r.Context(), since)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"handles": handles})
}

type rankingRequest struct {
	Handles []string `json:"handles"`
	Count   *float64 `json:"count"`
	Window  string   `json:"window"`
}

func (h *Handlers) outliers(w http.ResponseWriter, r *http.Request) {
	h.rank(w, r, ranker.RankOutliers, func(ranked []ranker.RankedTweet) any {
		return mapRankedTweets(ranked)
	})
}

func (h *Handlers) matrix(w http.ResponseWriter, r *http.Request) {
	h.rank(w, r, ranker.RankByEngagement, func(ranked []ranker.RankedTweet) any {
		return mapEngagementTweets(ranked)
	})
}

func (h *Handlers) rank(w http.ResponseWriter, r *http.Request,
	rankFn func([]domain.Tweet, int) ([]ranker.RankedTweet, int),
	mapFn func([]ranker.RankedTweet) any) {
	var req rankingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	handles := normalizeHandles(req.Handles)
	if len(handles) == 0 {
		stored, err := h.handleRepo.ListActive(r.Context())
		if err != nil {
			h.fail(w, err)
			return
		}
		handles = stored
	}
	if len(handles) == 0 {
		writeError(w, http.StatusBadRequest, "No handles found. Run Fetch first.")
		return
	}

	since := time.Now().Add(-ranker.ResolveWindow(req.Window))
	rows, err := h.tweetRepo.GetByWindow(r.Context(), handles, since)
	if err != nil {
		h.fail(w, err)
		return
	}

	ranked, total := rankFn(rows, count(req.Count, 20))
	writeJSON(w, http.StatusOK, map[string]any{
		"tweets":          mapFn(ranked),
		"totalCandidates": total,
	})
}

type historyRequest struct {
	Handle        string   `json:"handle"`
	Text          string   `json:"text"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Source        string   `json:"source"`
	MinLikes      *int     `json:"minLikes"`
	MinRetweets   *int     `json:"minRetweets"`
	MinReplies    *int     `json:"minReplies"`
	MinEngagement *int     `json:"minEngagement"`
	SortBy        string   `json:"sortBy"`
	SortDir       string   `json:"sortDir"`
	Page          *float64 `json:"page"`
	PageSize      *float64 `json:"pageSize"`
}

func (h *Handlers) queryHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q := history.Query{
		Handle:        req.Handle,
		Text:          req.Text,
		Start:         parseTime(req.Start),
		End:           parseTime(req.End),
		Source:        req.Source,
		MinLikes:      req.MinLikes,
		MinRetweets:   req.MinRetweets,
		MinReplies:    req.MinReplies,
		MinEngagement: req.MinEngagement,
		SortBy:        req.SortBy,
		SortDir:       req.SortDir,
		Page:          1,
		PageSize:      history.DefaultPageSize,
	}
	if req.Page != nil {
		q.Page = stats.BoundedInt(*req.Page, 1, 1<<31-1, 1)
	}
	if req.PageSize != nil {
		q.PageSize = stats.BoundedInt(*req.PageSize, 1, history.MaxPageSize, history.DefaultPageSize)
	}

	page, err := h.history.Query(r.Context(), q)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tweets":     mapRankedTweets(page.Tweets),
		"total":      page.Total,
		"page":       page.Page,
		"pageSize":   page.PageSize,
		"totalPages": page.TotalPages,
	})
}

type autoSelectRequest struct {
	Count *float64 `json:"count"`
	Top   *float64 `json:"top"`
}

func (h *Handlers) autoSelect(w http.ResponseWriter, r *http.Request) {
	var req autoSelectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	batch := count(req.Count, triage.DefaultBatchSize)
	top := triage.DefaultTopCount
	if req.Top != nil {
		top = stats.BoundedInt(*req.Top, 1, triage.MaxTopCount, triage.DefaultTopCount)
	}

	selected, total, err := h.triage.AutoSelect(r.Context(), batch, top)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"selected": selected,
		"total":    total,
	})
}

type selectionRequest struct {
	TweetID   string `json:"tweetId"`
	Handle    string `json:"handle"`
	Reasoning string `json:"reasoning"`
	Scope     string `json:"scope"`
}

func (h *Handlers) addSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TweetID == "" || req.Handle == "" {
		writeError(w, http.StatusBadRequest, "tweetId and handle are required")
		return
	}

	added, err := h.selectionRepo.Add(r.Context(), domain.Selection{
		TweetID:   req.TweetID,
		Handle:    domain.NormalizeHandle(req.Handle),
		Reasoning: req.Reasoning,
		Scope:     req.Scope,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"added": added})
}

func (h *Handlers) removeSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TweetID == "" {
		writeError(w, http.StatusBadRequest, "tweetId is required")
		return
	}

	removed, err := h.selectionRepo.Remove(r.Context(), req.TweetID)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (h *Handlers) clearSelections(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.selectionRepo.Clear(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}

func (h *Handlers) listSelections(w http.ResponseWriter, r *http.Request) {
	selections, err := h.selectionRepo.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	out := make([]map[string]any, 0, len(selections))
	for _, sel := range selections {
		out = append(out, map[string]any{
			"tweetId":   sel.TweetID,
			"handle":    sel.Handle,
			"reasoning": sel.Reasoning,
			"scope":     sel.Scope,
			"addedAt":   sel.AddedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"selections": out})
}

type scriptRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Output string `json:"output"`
}

func (h *Handlers) saveScript(w http.ResponseWriter, r *http.Request) {
	var req scriptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Model == "" || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "model and prompt are required")
		return
	}

	id, err := h.scriptRepo.SaveScript(r.Context(), domain.Script{
		Model:  req.Model,
		Prompt: req.Prompt,
		Output: req.Output,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *Handlers) listScripts(w http.ResponseWriter, r *http.Request) {
	scripts, err := h.scriptRepo.ListScripts(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scripts": scripts})
}

type templateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (h *Handlers) addTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "name and content are required")
		return
	}

	id, err := h.scriptRepo.AddTemplate(r.Context(), domain.PromptTemplate{
		Name:    req.Name,
		Content: req.Content,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *Handlers) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.scriptRepo.ListTemplates(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// fail maps an error to the right status code using the error taxonomy.
func (h *Handlers) fail(w http.ResponseWriter, err error) {
	h.logger.Error("Request failed", "error", err)
	switch {
	case pkgerrors.IsNotFound(err):
		writeError(w, http.StatusNotFound, pkgerrors.GetMessage(err))
	case pkgerrors.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, pkgerrors.GetMessage(err))
	case pkgerrors.IsServiceUnavailable(err):
		writeError(w, http.StatusBadGateway, pkgerrors.GetMessage(err))
	default:
		writeError(w, http.StatusInternalServerError, pkgerrors.GetMessage(err))
	}
}
