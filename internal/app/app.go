package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autism-diet-planner/internal/config"
	"autism-diet-planner/internal/diet"
	"autism-diet-planner/internal/llm"
	"autism-diet-planner/internal/metrics"
	"autism-diet-planner/internal/planner"
	"autism-diet-planner/internal/session"
	"autism-diet-planner/internal/shared"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

// FallbackNotice is shown above the sample plan when the service could not answer.
const FallbackNotice = "The diet plan service is unavailable right now. Showing a sample plan built from your diet type and allergies instead."

const (
	maxResults = 500
	resultTTL  = 30 * time.Minute
)

// App holds the application's dependencies.
type App struct {
	provider     llm.ChatProvider
	sessions     *session.Registry
	metricsStore *metrics.Store
	collectors   *metrics.Collectors
	results      *expirable.LRU[string, *Result]
	timeout      time.Duration
}

// NewApp creates and initializes a new App instance. metricsStore and
// collectors may be nil.
func NewApp(
	cfg *config.Config,
	provider llm.ChatProvider,
	sessions *session.Registry,
	metricsStore *metrics.Store,
	collectors *metrics.Collectors,
) *App {
	return &App{
		provider:     provider,
		sessions:     sessions,
		metricsStore: metricsStore,
		collectors:   collectors,
		results:      expirable.NewLRU[string, *Result](maxResults, nil, resultTTL),
		timeout:      cfg.LLMTimeout,
	}
}

// Generate asks the service for a diet plan in the chat of sessionID. Any
// failure of the service is absorbed: the result then carries the fallback
// plan instead of text. Only an invalid profile is returned as an error.
func (a *App) Generate(ctx context.Context, sessionID string, profile diet.Profile) (*Result, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	prompt, err := planner.BuildPrompt(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	chat := a.sessions.Get(sessionID)

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := chat.Send(callCtx, prompt)
	meta := shared.GenerationMeta{
		Provider: a.provider.Name(),
		Usage:    resp.Usage,
		Latency:  time.Since(start),
	}

	res := &Result{
		ID:        uuid.NewString(),
		Profile:   profile,
		CreatedAt: time.Now().UTC(),
	}

	if err != nil {
		var serr *llm.ServiceError
		if errors.As(err, &serr) {
			log.Warn().Err(err).Str("provider", serr.Provider).Str("session_id", sessionID).Msg("generation failed, using fallback plan")
		} else {
			log.Error().Err(err).Str("session_id", sessionID).Msg("unexpected generation error, using fallback plan")
		}
		meta.Outcome = metrics.OutcomeFallback
		res.Kind = KindFallback
		res.Notice = FallbackNotice
		res.Plan = planner.Build(profile.DietType, profile.Allergies)
	} else {
		meta.Outcome = metrics.OutcomeGenerated
		res.Kind = KindGenerated
		res.Text = resp.Content
		log.Info().
			Str("session_id", sessionID).
			Int("prompt_tokens", resp.Usage.PromptTokens).
			Int("completion_tokens", resp.Usage.CompletionTokens).
			Dur("latency", meta.Latency).
			Msg("diet plan generated")
	}

	a.record(ctx, meta)
	a.results.Add(res.ID, res)
	return res, nil
}

// record stores usage; failures here never affect the user.
func (a *App) record(ctx context.Context, meta shared.GenerationMeta) {
	if a.collectors != nil {
		a.collectors.Observe(meta)
	}
	if a.metricsStore == nil {
		return
	}
	if err := a.metricsStore.RecordMeta(context.WithoutCancel(ctx), meta); err != nil {
		log.Warn().Err(err).Msg("failed to record usage metric")
	}
}

// Result returns a cached result by ID.
func (a *App) Result(id string) (*Result, bool) {
	return a.results.Get(id)
}

// Download renders one artifact of a cached result.
func (a *App) Download(resultID string, kind Artifact) (*Download, error) {
	res, ok := a.results.Get(resultID)
	if !ok {
		return nil, ErrResultNotFound
	}
	return res.Render(kind)
}

// ResetSession clears the chat history of sessionID.
func (a *App) ResetSession(sessionID string) bool {
	return a.sessions.Reset(sessionID)
}

// ActiveSessions returns the number of live chat sessions.
func (a *App) ActiveSessions() int {
	return a.sessions.Len()
}

// DailyUsage returns recent usage totals, or nil when no store is configured.
func (a *App) DailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	if a.metricsStore == nil {
		return nil, nil
	}
	return a.metricsStore.GetDailyUsage(ctx, days)
}
