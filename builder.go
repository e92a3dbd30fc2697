package prdflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/randalmurphal/prdflow/config"
	prderrors "github.com/randalmurphal/prdflow/errors"
	"github.com/randalmurphal/prdflow/flow"
	"github.com/randalmurphal/prdflow/flow/checkpoint"
	"github.com/randalmurphal/prdflow/llm"
	"github.com/randalmurphal/prdflow/prompt"
	"github.com/randalmurphal/prdflow/rag"
	"github.com/randalmurphal/prdflow/task"
)

// retrievalK is how many passages a turn pulls from the retriever.
const retrievalK = 3

// Builder is the conversational document builder. One Builder serves
// many sessions; per-session state lives entirely in the checkpoint
// store, keyed by session id, so a Builder can be restarted (or
// replaced by another process) between turns.
type Builder struct {
	graph     *flow.CompiledGraph[ConversationState]
	store     checkpoint.Store
	client    llm.Client
	claudeCfg llm.ClaudeConfig
	retriever rag.Retriever
	prompts   *prompt.Loader
	catalog   *Catalog
	tuning    Tuning
	models    *task.ModelSelector
	logger    *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithCheckpointStore sets the durable checkpoint store. Defaults to an
// in-memory store, which does not survive restarts.
func WithCheckpointStore(store checkpoint.Store) Option {
	return func(b *Builder) { b.store = store }
}

// WithLLMClient sets the LLM client. Defaults to the claude CLI.
func WithLLMClient(client llm.Client) Option {
	return func(b *Builder) { b.client = client }
}

// WithRAGRetriever enables passage retrieval for incoming messages.
func WithRAGRetriever(retriever rag.Retriever) Option {
	return func(b *Builder) { b.retriever = retriever }
}

// WithPromptLoader sets the prompt template loader.
func WithPromptLoader(loader *prompt.Loader) Option {
	return func(b *Builder) { b.prompts = loader }
}

// WithSectionCatalog overrides the built-in section catalog.
func WithSectionCatalog(catalog *Catalog) Option {
	return func(b *Builder) { b.catalog = catalog }
}

// WithWorkflowTuning overrides the timing and threshold knobs.
func WithWorkflowTuning(tuning Tuning) Option {
	return func(b *Builder) { b.tuning = tuning }
}

// WithModelSelector overrides per-task model selection.
func WithModelSelector(selector *task.ModelSelector) Option {
	return func(b *Builder) { b.models = selector }
}

// WithLog sets the structured logger.
func WithLog(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder compiles the workflow graph and wires the services. When
// no LLM client is supplied it falls back to the claude CLI, and fails
// if the binary is unavailable.
func NewBuilder(opts ...Option) (*Builder, error) {
	graph, err := BuildGraph()
	if err != nil {
		return nil, err
	}

	b := &Builder{
		graph:   graph,
		store:   checkpoint.NewMemoryStore(),
		prompts: prompt.NewLoader(""),
		catalog: DefaultCatalog(),
		tuning:  DefaultTuning(),
		models:  task.DefaultModelSelector(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.client == nil {
		client, err := llm.NewClaudeCLI(b.claudeCfg)
		if err != nil {
			return nil, err
		}
		b.client = client
	}
	return b, nil
}

// withClaudeConfig sets the config used when the claude CLI fallback
// client is constructed.
func withClaudeConfig(cfg llm.ClaudeConfig) Option {
	return func(b *Builder) { b.claudeCfg = cfg }
}

// NewBuilderFromSettings wires a Builder from resolved configuration:
// the checkpoint database, catalog and prompt overrides, tuning knobs,
// log level, and the claude CLI binary and model. Explicit options take
// precedence over the settings.
func NewBuilderFromSettings(settings config.Settings, opts ...Option) (*Builder, error) {
	base := []Option{withClaudeConfig(llm.ClaudeConfig{
		BinaryPath: settings.ClaudeBinary,
		Model:      settings.Model,
	})}

	tuning := DefaultTuning()
	if settings.AssemblerCooldown > 0 {
		tuning.AssemblerCooldown = settings.AssemblerCooldown
	}
	if settings.SummaryInterval > 0 {
		tuning.SummaryInterval = settings.SummaryInterval
	}
	base = append(base, WithWorkflowTuning(tuning))

	if settings.CheckpointPath != "" {
		store, err := checkpoint.NewSQLiteStore(settings.CheckpointPath)
		if err != nil {
			return nil, fmt.Errorf("open checkpoint store: %w", err)
		}
		base = append(base, WithCheckpointStore(store))
	}
	if settings.CatalogPath != "" {
		catalog, err := LoadCatalog(settings.CatalogPath)
		if err != nil {
			return nil, err
		}
		base = append(base, WithSectionCatalog(catalog))
	}
	if settings.PromptDir != "" {
		loader := prompt.NewLoader("")
		loader.AddSearchDir(settings.PromptDir)
		base = append(base, WithPromptLoader(loader))
	}
	if settings.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(settings.LogLevel)); err == nil {
			base = append(base, WithLog(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))))
		}
	}

	return NewBuilder(append(base, opts...)...)
}

// Close releases the checkpoint store.
func (b *Builder) Close() error {
	return b.store.Close()
}

// TurnResult is what a caller sees after one turn.
type TurnResult struct {
	SessionID string

	// Reply is the latest assistant message, "" when the turn produced
	// none.
	Reply string

	Stage         Stage
	AwaitingInput bool
	AwaitReason   string

	// CompletedSections / TotalSections report drafting progress.
	CompletedSections int
	TotalSections     int

	// Done reports that the run reached the end of the workflow rather
	// than pausing for input.
	Done bool
}

// SectionReport is one section's slice of a Draft.
type SectionReport struct {
	Key             string  `json:"key"`
	Title           string  `json:"title"`
	Status          Status  `json:"status"`
	CompletionScore float64 `json:"completionScore"`
	Content         string  `json:"content,omitempty"`
}

// Draft is a read-only view of the document in progress.
type Draft struct {
	SessionID string          `json:"sessionId"`
	Stage     Stage           `json:"stage"`
	Snapshot  string          `json:"snapshot,omitempty"`
	Sections  []SectionReport `json:"sections"`
	Issues    []string        `json:"issues,omitempty"`
}

// StartSession begins a new session from a raw product idea and runs
// the workflow until it needs the user. The returned session id keys
// every later call.
func (b *Builder) StartSession(ctx context.Context, userID, idea string) (*TurnResult, error) {
	state := NewConversationState(userID, idea)
	res, err := b.graph.Run(b.runContext(ctx), state, b.runOptions(state.Config.SessionID)...)
	if err != nil {
		return nil, err
	}
	return b.turnResult(res), nil
}

// SendMessage delivers one user message to a session. A suspended
// session resumes at the interrupt with the message as payload; a
// session whose last run finished is re-entered at the input node with
// the message staged, so the conversation continues either way.
func (b *Builder) SendMessage(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	rctx := b.runContext(ctx)

	ragContext := b.retrieve(ctx, message)
	var payload any = message
	if ragContext != "" {
		payload = map[string]any{
			"data":        message,
			"rag_enabled": true,
			"rag_context": ragContext,
		}
	}

	res, err := b.graph.Resume(rctx, b.store, sessionID, payload, b.turnOptions()...)
	switch {
	case err == nil:
		return b.turnResult(res), nil
	case errors.Is(err, flow.ErrNotSuspended):
		// The previous run finished (e.g. after an export). Stage the
		// message and re-enter the graph at the input node.
		state := res.State
		state.LatestInput = message
		if ragContext != "" {
			state.RAGEnabled = true
			state.RAGContext = ragContext
		}
		opts := append(b.runOptions(sessionID), flow.WithStart(NodeHumanInput))
		res, err = b.graph.Run(rctx, state, opts...)
		if err != nil {
			return nil, err
		}
		return b.turnResult(res), nil
	default:
		return nil, b.mapStoreErr(err)
	}
}

// Draft returns the current document view for a session.
func (b *Builder) Draft(ctx context.Context, sessionID string) (*Draft, error) {
	state, _, err := b.graph.StateAt(ctx, b.store, sessionID)
	if err != nil {
		return nil, b.mapLoadErr(err)
	}

	draft := &Draft{
		SessionID: sessionID,
		Stage:     state.Stage,
		Snapshot:  state.Snapshot,
		Issues:    state.Issues,
	}
	for _, key := range state.orderedKeys() {
		section := state.Sections[key]
		draft.Sections = append(draft.Sections, SectionReport{
			Key:             key,
			Title:           b.catalog.Title(key),
			Status:          section.Status,
			CompletionScore: section.CompletionScore,
			Content:         section.Content,
		})
	}
	return draft, nil
}

// Export freezes the assembled document as a new immutable version.
// Only markdown is supported.
func (b *Builder) Export(ctx context.Context, sessionID, format string) (Version, error) {
	if format != FormatMarkdown {
		return Version{}, prderrors.ErrUnsupportedFormat
	}

	state, _, err := b.graph.StateAt(ctx, b.store, sessionID)
	if err != nil {
		return Version{}, b.mapLoadErr(err)
	}
	if state.Snapshot == "" {
		return Version{}, prderrors.ErrNotAssembled
	}

	opts := append(b.runOptions(sessionID), flow.WithStart(NodeExporter))
	res, err := b.graph.Run(b.runContext(ctx), state, opts...)
	if err != nil {
		return Version{}, err
	}
	versions := res.State.Versions
	if len(versions) == 0 {
		return Version{}, prderrors.ErrNotAssembled
	}
	return versions[len(versions)-1], nil
}

// Refine runs a polish pass over the assembled document and pauses for
// review.
func (b *Builder) Refine(ctx context.Context, sessionID string) (*TurnResult, error) {
	state, _, err := b.graph.StateAt(ctx, b.store, sessionID)
	if err != nil {
		return nil, b.mapLoadErr(err)
	}
	if state.Snapshot == "" {
		return nil, prderrors.ErrNotAssembled
	}

	opts := append(b.runOptions(sessionID), flow.WithStart(NodeRefiner))
	res, err := b.graph.Run(b.runContext(ctx), state, opts...)
	if err != nil {
		return nil, err
	}
	return b.turnResult(res), nil
}

// ListVersions returns every exported version, oldest first.
func (b *Builder) ListVersions(ctx context.Context, sessionID string) ([]Version, error) {
	state, _, err := b.graph.StateAt(ctx, b.store, sessionID)
	if err != nil {
		return nil, b.mapLoadErr(err)
	}
	return append([]Version(nil), state.Versions...), nil
}

// GetVersion returns one exported version by id.
func (b *Builder) GetVersion(ctx context.Context, sessionID, versionID string) (Version, error) {
	state, _, err := b.graph.StateAt(ctx, b.store, sessionID)
	if err != nil {
		return Version{}, b.mapLoadErr(err)
	}
	for _, v := range state.Versions {
		if v.ID == versionID {
			return v, nil
		}
	}
	return Version{}, prderrors.ErrVersionNotFound
}

// retrieve pulls supporting passages for the message; retrieval
// failures are logged and skipped, never fatal to the turn.
func (b *Builder) retrieve(ctx context.Context, message string) string {
	if b.retriever == nil {
		return ""
	}
	passages, err := b.retriever.Retrieve(ctx, message, nil, retrievalK)
	if err != nil {
		b.logger.Warn("retrieval failed", "error", err)
		return ""
	}
	return rag.ContextString(passages)
}

// runContext injects the builder's services for a graph run.
func (b *Builder) runContext(ctx context.Context) flow.Context {
	ctx = WithLLM(ctx, b.client)
	ctx = WithPrompts(ctx, b.prompts)
	ctx = WithCatalog(ctx, b.catalog)
	ctx = WithTuning(ctx, b.tuning)
	ctx = WithModels(ctx, b.models)
	if b.retriever != nil {
		ctx = WithRetriever(ctx, b.retriever)
	}
	return flow.NewContext(ctx)
}

// runOptions are the options for a run that starts a thread.
func (b *Builder) runOptions(sessionID string) []flow.RunOption {
	return append(b.turnOptions(),
		flow.WithCheckpointing(b.store),
		flow.WithThreadID(sessionID),
	)
}

// turnOptions are the options shared by every run and resume.
func (b *Builder) turnOptions() []flow.RunOption {
	return []flow.RunOption{
		flow.WithMaxIterations(b.tuning.MaxIterations),
		flow.WithLogger(b.logger),
	}
}

// mapStoreErr translates a failed resume: a missing thread is a missing
// session, graph execution failures pass through untouched, and
// anything left is the store failing to load the thread.
func (b *Builder) mapStoreErr(err error) error {
	if errors.Is(err, checkpoint.ErrNotFound) {
		return prderrors.ErrSessionNotFound
	}
	var nodeErr *flow.NodeError
	var routeErr *flow.RouteError
	var panicErr *flow.PanicError
	if errors.As(err, &nodeErr) || errors.As(err, &routeErr) || errors.As(err, &panicErr) ||
		errors.Is(err, flow.ErrMaxIterations) {
		return err
	}
	return fmt.Errorf("%w: %v", prderrors.ErrSessionUnavailable, err)
}

// mapLoadErr translates a state-load failure: a missing thread is a
// missing session, anything else means the store itself failed.
func (b *Builder) mapLoadErr(err error) error {
	if errors.Is(err, checkpoint.ErrNotFound) {
		return prderrors.ErrSessionNotFound
	}
	return fmt.Errorf("%w: %v", prderrors.ErrSessionUnavailable, err)
}

// turnResult projects a run result for the caller.
func (b *Builder) turnResult(res flow.Result[ConversationState]) *TurnResult {
	state := res.State
	reply := ""
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == llm.RoleAssistant {
			reply = state.Messages[i].Content
			break
		}
	}
	return &TurnResult{
		SessionID:         state.Config.SessionID,
		Reply:             reply,
		Stage:             state.Stage,
		AwaitingInput:     state.AwaitingInput,
		AwaitReason:       state.AwaitReason,
		CompletedSections: state.CompletedCount(),
		TotalSections:     len(state.Sections),
		Done:              !res.Suspended,
	}
}
