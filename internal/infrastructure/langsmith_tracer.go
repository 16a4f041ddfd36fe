package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"

	"binary_joke_bot/internal/config"
)

const uploadTimeout = 10 * time.Second

// LangSmithTracer records LLM calls as LangSmith runs. It plugs into
// langchaingo as a callbacks.Handler; uploads happen in the background and
// failures are only logged.
type LangSmithTracer struct {
	callbacks.SimpleHandler

	apiKey   string
	project  string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
	now      func() time.Time

	wg sync.WaitGroup
}

var _ callbacks.Handler = (*LangSmithTracer)(nil)

type runKey struct{}

type traceRun struct {
	mu       sync.Mutex
	id       uuid.UUID
	name     string
	metadata map[string]any
	start    time.Time
	inputs   map[string]any
	done     bool
}

type runPayload struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	RunType     string         `json:"run_type"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Inputs      map[string]any `json:"inputs"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	Error       string         `json:"error,omitempty"`
	SessionName string         `json:"session_name,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

func NewLangSmithTracer(cfg config.Config, logger *slog.Logger) *LangSmithTracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LangSmithTracer{
		apiKey:   cfg.LangSmithAPIKey,
		project:  cfg.LangSmithProject,
		endpoint: cfg.LangSmithEndpoint,
		client:   &http.Client{Timeout: uploadTimeout},
		logger:   logger,
		now:      time.Now,
	}
}

// StartRun attaches a new run to ctx. Callbacks fired with the returned
// context are recorded under that run.
func (t *LangSmithTracer) StartRun(ctx context.Context, name string, metadata map[string]any) context.Context {
	run := &traceRun{
		id:       uuid.New(),
		name:     name,
		metadata: metadata,
		start:    t.now(),
	}
	return context.WithValue(ctx, runKey{}, run)
}

// RunID returns the id of the run attached to ctx, if any.
func RunID(ctx context.Context) (uuid.UUID, bool) {
	run, ok := ctx.Value(runKey{}).(*traceRun)
	if !ok {
		return uuid.Nil, false
	}
	return run.id, true
}

func (t *LangSmithTracer) HandleLLMGenerateContentStart(ctx context.Context, ms []llms.MessageContent) {
	run, ok := ctx.Value(runKey{}).(*traceRun)
	if !ok {
		return
	}
	run.mu.Lock()
	run.start = t.now()
	run.inputs = map[string]any{"messages": messageInputs(ms)}
	run.mu.Unlock()
}

func (t *LangSmithTracer) HandleLLMGenerateContentEnd(ctx context.Context, res *llms.ContentResponse) {
	outputs := map[string]any{}
	if res != nil {
		generations := make([]string, 0, len(res.Choices))
		for _, c := range res.Choices {
			generations = append(generations, c.Content)
		}
		outputs["generations"] = generations
	}
	t.finish(ctx, outputs, nil)
}

func (t *LangSmithTracer) HandleLLMError(ctx context.Context, err error) {
	t.finish(ctx, nil, err)
}

// Wait blocks until pending uploads are done.
func (t *LangSmithTracer) Wait() {
	t.wg.Wait()
}

func (t *LangSmithTracer) finish(ctx context.Context, outputs map[string]any, runErr error) {
	run, ok := ctx.Value(runKey{}).(*traceRun)
	if !ok {
		return
	}

	run.mu.Lock()
	if run.done {
		run.mu.Unlock()
		return
	}
	run.done = true
	payload := runPayload{
		ID:          run.id.String(),
		Name:        run.name,
		RunType:     "llm",
		StartTime:   run.start.UTC(),
		EndTime:     t.now().UTC(),
		Inputs:      run.inputs,
		Outputs:     outputs,
		SessionName: t.project,
	}
	run.mu.Unlock()

	if payload.Inputs == nil {
		payload.Inputs = map[string]any{}
	}
	if len(run.metadata) > 0 {
		payload.Extra = map[string]any{"metadata": run.metadata}
	}
	if runErr != nil {
		payload.Error = runErr.Error()
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uploadTimeout)
		defer cancel()
		if err := t.post(uploadCtx, payload); err != nil {
			t.logger.Warn("trace upload failed", "run_id", payload.ID, "error", err)
		}
	}()
}

func (t *LangSmithTracer) post(ctx context.Context, payload runPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"/runs", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("langsmith status: %d", resp.StatusCode)
	}
	return nil
}

func messageInputs(ms []llms.MessageContent) []map[string]string {
	out := make([]map[string]string, 0, len(ms))
	for _, m := range ms {
		var text bytes.Buffer
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				text.WriteString(tc.Text)
			}
		}
		out = append(out, map[string]string{
			"role":    string(m.Role),
			"content": text.String(),
		})
	}
	return out
}
