package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autism-diet-planner/internal/app"
	"autism-diet-planner/internal/config"
	"autism-diet-planner/internal/llm"
	"autism-diet-planner/internal/metrics"
	"autism-diet-planner/internal/session"
	"autism-diet-planner/internal/shared"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	res   string
	err   error
	turns int
}

func (s *stubChat) Send(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	if s.err != nil {
		return llm.ContentResponse{}, s.err
	}
	s.turns++
	return llm.ContentResponse{Content: s.res, Usage: shared.TokenUsage{Model: "stub"}}, nil
}

func (s *stubChat) Reset()     { s.turns = 0 }
func (s *stubChat) Turns() int { return s.turns }

type stubProvider struct {
	chat *stubChat
}

func (p *stubProvider) Name() string                { return "stub" }
func (p *stubProvider) NewSession() llm.ChatSession { return p.chat }
func (p *stubProvider) Close() error                { return nil }

func newTestServer(t *testing.T, chat *stubChat, assetDir string) *Server {
	t.Helper()
	cfg := &config.Config{
		SessionSecret:  "session-secret",
		DownloadSecret: "download-secret",
		SessionTTL:     time.Hour,
		LLMTimeout:     time.Second,
		AssetDir:       assetDir,
	}
	provider := &stubProvider{chat: chat}
	application := app.NewApp(cfg, provider, session.NewRegistry(provider, 10, time.Hour), nil, metrics.NewCollectors())
	return NewServer(cfg, application, metrics.NewCollectors())
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postPlan(t *testing.T, s *Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/plan", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, s, req)
}

func validForm() url.Values {
	return url.Values{
		"age_range":        {"11-20"},
		"body_weight_kg":   {"45"},
		"height_cm":        {"150"},
		"autism_severity":  {"Moderate"},
		"diet_type":        {"Vegetarian"},
		"preferences":      {"Soft", "Sweet"},
		"allergies":        {"Gluten"},
		"goal":             {"Expand Variety"},
		"activity_level":   {"Sedentary"},
		"hydration_liters": {"1.5"},
		"is_gfcf":          {"true"},
	}
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestIndex_FormDefaults(t *testing.T) {
	s := newTestServer(t, &stubChat{}, t.TempDir())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parse(t, rec)

	assert.Equal(t, "50", doc.Find("#body_weight_kg").AttrOr("value", ""))
	assert.Equal(t, "150", doc.Find("#height_cm").AttrOr("value", ""))
	assert.Equal(t, "2.0", doc.Find("#hydration_liters").AttrOr("value", ""))
	assert.Equal(t, "Vegetarian", doc.Find(`input[name="diet_type"][checked]`).AttrOr("value", ""))
	assert.Equal(t, 6, doc.Find("#age_range option").Length())
	assert.Equal(t, 5, doc.Find(`input[name="allergies"]`).Length())
	assert.Equal(t, 4, doc.Find("ul.tips li").Length())
	assert.Contains(t, doc.Find(".warning").Text(), "Background image not found")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestIndex_Background(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bg.jpg"), []byte("jpeg-bytes"), 0644))
	s := newTestServer(t, &stubChat{}, dir)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "data:image/jpeg;base64,anBlZy1ieXRlcw==")
	assert.NotContains(t, body, "Background image not found")
}

func TestPlan_Generated(t *testing.T) {
	s := newTestServer(t, &stubChat{res: "Monday breakfast: Idli with chutney"}, t.TempDir())

	rec := postPlan(t, s, validForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies(), "session cookie issued")

	doc := parse(t, rec)
	assert.Equal(t, "Monday breakfast: Idli with chutney", doc.Find("#plan-text").Text())
	assert.Equal(t, 0, doc.Find("#sample-plan").Length())

	link := doc.Find("a.download")
	require.Equal(t, 1, link.Length())
	assert.Equal(t, "diet_plan.txt", link.AttrOr("download", ""))

	dl := do(t, s, httptest.NewRequest(http.MethodGet, link.AttrOr("href", ""), nil))
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "text/plain; charset=utf-8", dl.Header().Get("Content-Type"))
	assert.Contains(t, dl.Header().Get("Content-Disposition"), `filename="diet_plan.txt"`)
	assert.Equal(t, "Monday breakfast: Idli with chutney", dl.Body.String())
}

func TestPlan_FallbackOnServiceError(t *testing.T) {
	chat := &stubChat{err: &llm.ServiceError{Provider: "stub", Err: errors.New("quota exceeded")}}
	s := newTestServer(t, chat, t.TempDir())

	rec := postPlan(t, s, validForm())
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parse(t, rec)

	assert.Equal(t, app.FallbackNotice, strings.TrimSpace(doc.Find("#fallback-notice").Text()))

	headers := doc.Find("#sample-plan thead th").Map(func(_ int, sel *goquery.Selection) string { return sel.Text() })
	assert.Equal(t, []string{"Meal", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}, headers)

	rows := doc.Find("#sample-plan tbody tr")
	require.Equal(t, 5, rows.Length())
	breakfast := rows.First().Find("td")
	assert.Equal(t, 7, breakfast.Length())
	breakfast.Each(func(_ int, td *goquery.Selection) {
		assert.Equal(t, "Idli with chutney", td.Text())
	})
	assert.NotContains(t, doc.Find("#sample-plan").Text(), "Paratha with curd")

	var csvHref string
	doc.Find("a.download").Each(func(_ int, a *goquery.Selection) {
		if a.AttrOr("download", "") == "sample_diet_plan.csv" {
			csvHref = a.AttrOr("href", "")
		}
	})
	require.NotEmpty(t, csvHref)

	dl := do(t, s, httptest.NewRequest(http.MethodGet, csvHref, nil))
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "text/csv", dl.Header().Get("Content-Type"))
	assert.Contains(t, dl.Header().Get("Content-Disposition"), `filename="sample_diet_plan.csv"`)
	assert.True(t, strings.HasPrefix(dl.Body.String(), "Meal,Monday,Tuesday,Wednesday,Thursday,Friday,Saturday,Sunday"))
}

func TestPlan_InvalidInput(t *testing.T) {
	s := newTestServer(t, &stubChat{res: "unused"}, t.TempDir())

	form := validForm()
	form.Set("body_weight_kg", "500")
	form.Set("goal", "Get Taller")

	rec := postPlan(t, s, form)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	doc := parse(t, rec)

	assert.Equal(t, "must be at most 200", strings.TrimPrefix(doc.Find(`li[data-field="BodyWeightKg"]`).Text(), "BodyWeightKg "))
	assert.Equal(t, 1, doc.Find(`li[data-field="Goal"]`).Length())
	assert.Equal(t, 0, doc.Find("#plan-text").Length())
	assert.Equal(t, "500", doc.Find("#body_weight_kg").AttrOr("value", ""), "user input is kept")
}

func TestDownload_BadToken(t *testing.T) {
	s := newTestServer(t, &stubChat{}, t.TempDir())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/download/not-a-token", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	token, err := s.tokens.Sign("unknown-result", app.ArtifactCSV)
	require.NoError(t, err)
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/download/"+token, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionReset(t *testing.T) {
	chat := &stubChat{res: "plan"}
	s := newTestServer(t, chat, t.TempDir())

	rec := postPlan(t, s, validForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, chat.Turns())

	req := httptest.NewRequest(http.MethodPost, "/session/reset", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	reset := do(t, s, req)
	assert.Equal(t, http.StatusSeeOther, reset.Code)
	assert.Equal(t, "/?reset=1", reset.Header().Get("Location"))
	assert.Equal(t, 0, chat.Turns())
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, &stubChat{}, t.TempDir())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health metrics.SysHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestTokenSigner(t *testing.T) {
	signer := NewTokenSigner("secret", time.Minute)

	token, err := signer.Sign("r1", app.ArtifactXLSX)
	require.NoError(t, err)

	id, kind, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "r1", id)
	assert.Equal(t, app.ArtifactXLSX, kind)

	_, _, err = NewTokenSigner("other", time.Minute).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, _, err = signer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
