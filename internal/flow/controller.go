// Package flow drives one candidate through an assessment session:
// intake, preparation of the briefing and question pool, camera check,
// the timed question run, and submission for evaluation.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/screeniq/internal/media"
	"github.com/jonathan/screeniq/internal/types"
)

// State is a step of the assessment flow.
type State string

// Flow states, in order. StateSubmitting is terminal.
const (
	StateIntake      State = "intake"
	StateParsing     State = "parsing"
	StateBriefing    State = "briefing"
	StateSystemCheck State = "system_check"
	StateAssessment  State = "assessment"
	StateSubmitting  State = "submitting"
)

// CameraStatus is the outcome of the most recent camera request.
type CameraStatus string

// Camera statuses
const (
	CameraIdle    CameraStatus = "idle"
	CameraGranted CameraStatus = "granted"
	CameraDenied  CameraStatus = "denied"
)

// Generator is the remote side of a session.
type Generator interface {
	GenerateBriefing(ctx context.Context, job *types.Job) (string, error)
	GenerateQuestionPool(ctx context.Context, job *types.Job, resumeContext string) ([]types.Question, error)
	// Evaluate must return a usable result even when err is non-nil.
	Evaluate(ctx context.Context, job *types.Job, questions []types.Question, answers map[string]types.CandidateAnswer) (types.EvaluationResult, error)
}

// ResumeSource turns a resume reference into plain text for question generation.
type ResumeSource interface {
	Resolve(ctx context.Context, ref, mime string) (string, error)
}

// Deps are the collaborators a Controller needs.
type Deps struct {
	Generator  Generator
	Camera     media.Camera
	Visibility media.VisibilitySource
	// Optional.
	Resume ResumeSource
	Clock  clockwork.Clock
}

// Options tune a session. Zero values select the defaults.
type Options struct {
	SessionLength   int
	Duration        time.Duration
	EvaluateTimeout time.Duration
	OnStateChange   func(from, to State)
	// OnComplete is invoked exactly once, when the session reaches StateSubmitting
	// and the evaluation has returned.
	OnComplete func(types.SessionOutcome)
}

// Defaults
const (
	DefaultSessionLength   = 10
	DefaultDuration        = 600 * time.Second
	DefaultEvaluateTimeout = 2 * time.Minute
	BriefingPlaceholder    = "Preparing your custom assessment pool..."
)

type transition struct{ from, to State }

// Controller is the state machine for a single assessment session.
// All methods are safe for concurrent use.
type Controller struct {
	id   string
	job  types.Job
	deps Deps
	opts Options

	mu     sync.Mutex
	state  State
	closed bool
	intake types.CandidateIntake

	prepared     chan struct{}
	briefing     string
	pool         []types.Question
	briefingErr  error
	poolErr      error
	cameraStatus CameraStatus
	stream       *media.Stream

	questions   []types.Question
	index       int
	answers     map[string]types.CandidateAnswer
	qStart      time.Time
	startedAt   time.Time
	remaining   int
	tabSwitches int

	ticker      clockwork.Ticker
	stopTicker  chan struct{}
	unsubscribe func()

	submitted bool
	outcome   *types.SessionOutcome
	done      chan struct{}
}

// New creates a controller in StateIntake for job.
func New(job types.Job, deps Deps, opts Options) (*Controller, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("flow: generator is required")
	}
	if deps.Camera == nil {
		return nil, fmt.Errorf("flow: camera is required")
	}
	if deps.Visibility == nil {
		return nil, fmt.Errorf("flow: visibility source is required")
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if opts.SessionLength <= 0 {
		opts.SessionLength = DefaultSessionLength
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.EvaluateTimeout <= 0 {
		opts.EvaluateTimeout = DefaultEvaluateTimeout
	}

	return &Controller{
		id:           uuid.NewString(),
		job:          job,
		deps:         deps,
		opts:         opts,
		state:        StateIntake,
		prepared:     make(chan struct{}),
		cameraStatus: CameraIdle,
		remaining:    int(opts.Duration / time.Second),
		done:         make(chan struct{}),
	}, nil
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Job returns the job the session assesses.
func (c *Controller) Job() types.Job { return c.job }

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed after OnComplete has returned.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Outcome returns the session outcome once submission has finished.
func (c *Controller) Outcome() (types.SessionOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcome == nil {
		return types.SessionOutcome{}, false
	}
	return *c.outcome, true
}

// SubmitIntake validates the candidate's details and starts preparing the session:
// the briefing and the question pool are requested in parallel. The flow moves to
// StateBriefing once both requests have settled, successfully or not.
func (c *Controller) SubmitIntake(ctx context.Context, intake types.CandidateIntake) error {
	if err := intake.Validate(); err != nil {
		return fmt.Errorf("invalid intake: %w", err)
	}

	c.mu.Lock()
	if err := c.require(StateIntake); err != nil {
		c.mu.Unlock()
		return err
	}
	c.intake = intake
	t := c.setState(StateParsing)
	c.mu.Unlock()
	c.notify(t)

	// Preparation outlives the caller's request.
	go c.prepare(context.WithoutCancel(ctx), intake)
	return nil
}

func (c *Controller) prepare(ctx context.Context, intake types.CandidateIntake) {
	var (
		briefing    string
		pool        []types.Question
		briefingErr error
		poolErr     error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		briefing, briefingErr = c.deps.Generator.GenerateBriefing(gctx, &c.job)
		return nil
	})
	g.Go(func() error {
		resumeText := ""
		if c.deps.Resume != nil {
			text, err := c.deps.Resume.Resolve(gctx, intake.ResumeRef, intake.ResumeMIME)
			if err != nil {
				log.Printf("[flow] session %s: resume context unavailable: %v", c.id, err)
			}
			resumeText = text
		}
		pool, poolErr = c.deps.Generator.GenerateQuestionPool(gctx, &c.job, resumeText)
		return nil
	})
	_ = g.Wait()

	if briefingErr != nil {
		log.Printf("[flow] session %s: briefing failed: %v", c.id, briefingErr)
	}
	if poolErr != nil {
		log.Printf("[flow] session %s: question pool failed, padding will be used: %v", c.id, poolErr)
	}
	if strings.TrimSpace(briefing) == "" {
		briefing = BriefingPlaceholder
	}

	c.mu.Lock()
	c.briefing = briefing
	c.pool = pool
	c.briefingErr = briefingErr
	c.poolErr = poolErr
	var t *transition
	if !c.closed && c.state == StateParsing {
		t = c.setState(StateBriefing)
	}
	close(c.prepared)
	c.mu.Unlock()
	c.notify(t)
}

// WaitPrepared blocks until both preparation requests have settled.
func (c *Controller) WaitPrepared(ctx context.Context) error {
	select {
	case <-c.prepared:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Briefing returns the briefing text, or the placeholder and false while preparing.
func (c *Controller) Briefing() (string, bool) {
	select {
	case <-c.prepared:
	default:
		return BriefingPlaceholder, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.briefing, true
}

// StartSystemCheck moves from the briefing to the camera check.
func (c *Controller) StartSystemCheck() error {
	c.mu.Lock()
	if c.state == StateParsing && !c.closed {
		c.mu.Unlock()
		return ErrNotReady
	}
	if err := c.require(StateBriefing); err != nil {
		c.mu.Unlock()
		return err
	}
	t := c.setState(StateSystemCheck)
	c.mu.Unlock()
	c.notify(t)
	return nil
}

// RequestCamera asks for camera access. A denial returns ErrCameraDenied and may be
// retried; it never ends the session.
func (c *Controller) RequestCamera(ctx context.Context) error {
	c.mu.Lock()
	if err := c.require(StateSystemCheck); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.stream != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	stream, err := c.deps.Camera.Acquire(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.stream == nil {
			c.cameraStatus = CameraDenied
		}
		return fmt.Errorf("%w: %w", ErrCameraDenied, err)
	}
	if c.closed || c.state != StateSystemCheck || c.stream != nil {
		// Lost a race with teardown or another request; this stream is not ours to keep.
		stream.Stop()
		if c.stream != nil && !c.closed {
			return nil
		}
		return c.require(StateSystemCheck)
	}
	c.stream = stream
	c.cameraStatus = CameraGranted
	return nil
}

// BeginTest fixes the active question set and starts the countdown and the
// visibility listener.
func (c *Controller) BeginTest() error {
	c.mu.Lock()
	if err := c.require(StateSystemCheck); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.cameraStatus != CameraGranted || c.stream == nil {
		c.mu.Unlock()
		return ErrCameraRequired
	}

	c.questions = selectQuestions(c.pool, c.opts.SessionLength, &c.job)
	c.answers = make(map[string]types.CandidateAnswer, len(c.questions))
	c.index = 0
	now := c.deps.Clock.Now()
	c.qStart = now
	c.startedAt = now
	c.remaining = int(c.opts.Duration / time.Second)

	c.unsubscribe = c.deps.Visibility.Subscribe(c.onVisibility)
	c.ticker = c.deps.Clock.NewTicker(time.Second)
	c.stopTicker = make(chan struct{})
	go c.runTimer(c.ticker, c.stopTicker)

	t := c.setState(StateAssessment)
	c.mu.Unlock()
	c.notify(t)
	return nil
}

func (c *Controller) runTimer(ticker clockwork.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-ticker.Chan():
			c.Tick()
		case <-stop:
			return
		}
	}
}

// Tick is the countdown callback. Remaining time is derived from the session clock,
// so a late or dropped tick never stretches the assessment. At zero the session is
// submitted with whatever answers exist.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.state != StateAssessment || c.submitted || c.closed {
		c.mu.Unlock()
		return
	}
	elapsed := int(c.deps.Clock.Since(c.startedAt) / time.Second)
	c.remaining = int(c.opts.Duration/time.Second) - elapsed
	if c.remaining > 0 {
		c.mu.Unlock()
		return
	}
	c.remaining = 0
	log.Printf("[flow] session %s: time expired, auto-submitting", c.id)
	snap, t := c.beginSubmit(types.SubmitTimer)
	c.mu.Unlock()
	c.notify(t)

	c.finish(context.Background(), snap)
}

func (c *Controller) onVisibility(v media.Visibility) {
	if v != media.Hidden {
		return
	}
	c.mu.Lock()
	if c.state == StateAssessment && !c.submitted {
		c.tabSwitches++
	}
	c.mu.Unlock()
}

// RecordAnswer records value for the current question. The time taken is measured
// from when the question became current, in whole seconds.
func (c *Controller) RecordAnswer(value string, confidence types.ConfidenceLevel) error {
	if !confidence.Valid() {
		return fmt.Errorf("invalid confidence level %q", confidence)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRunning(); err != nil {
		return err
	}
	q := &c.questions[c.index]
	if strings.TrimSpace(value) == "" || !containsOption(q, value) {
		return ErrInvalidAnswer
	}

	secs := int(c.deps.Clock.Since(c.qStart) / time.Second)
	if secs < 0 {
		secs = 0
	}
	c.answers[q.ID] = types.CandidateAnswer{Value: value, Confidence: confidence, TimeTaken: secs}
	return nil
}

// Next advances to the following question once the current one is answered.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRunning(); err != nil {
		return err
	}
	if _, ok := c.answers[c.questions[c.index].ID]; !ok {
		return ErrNotAnswered
	}
	if c.index >= len(c.questions)-1 {
		return ErrNoMoreQuestions
	}
	c.index++
	c.qStart = c.deps.Clock.Now()
	return nil
}

// Submit finishes the assessment from the last, answered question and returns the
// evaluated outcome. If the countdown already submitted, ErrAlreadySubmitted is returned.
func (c *Controller) Submit(ctx context.Context) (types.SessionOutcome, error) {
	c.mu.Lock()
	if err := c.requireRunning(); err != nil {
		c.mu.Unlock()
		return types.SessionOutcome{}, err
	}
	if c.index < len(c.questions)-1 {
		c.mu.Unlock()
		return types.SessionOutcome{}, ErrNotLastQuestion
	}
	if _, ok := c.answers[c.questions[c.index].ID]; !ok {
		c.mu.Unlock()
		return types.SessionOutcome{}, ErrNotAnswered
	}
	snap, t := c.beginSubmit(types.SubmitManual)
	c.mu.Unlock()
	c.notify(t)

	return c.finish(ctx, snap), nil
}

type submission struct {
	reason      types.SubmitReason
	intake      types.CandidateIntake
	questions   []types.Question
	answers     map[string]types.CandidateAnswer
	tabSwitches int
}

// beginSubmit trips the single-fire submit latch and releases the session's
// resources. Callers hold c.mu and have checked c.submitted.
func (c *Controller) beginSubmit(reason types.SubmitReason) (submission, *transition) {
	c.submitted = true
	c.releaseLocked()

	answers := make(map[string]types.CandidateAnswer, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}
	snap := submission{
		reason:      reason,
		intake:      c.intake,
		questions:   append([]types.Question(nil), c.questions...),
		answers:     answers,
		tabSwitches: c.tabSwitches,
	}
	return snap, c.setState(StateSubmitting)
}

func (c *Controller) finish(ctx context.Context, snap submission) types.SessionOutcome {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.EvaluateTimeout)
	defer cancel()

	result, err := c.deps.Generator.Evaluate(ctx, &c.job, snap.questions, snap.answers)
	if err != nil {
		log.Printf("[flow] session %s: evaluation fell back to default: %v", c.id, err)
	}

	outcome := types.SessionOutcome{
		SessionID:      c.id,
		CandidateName:  snap.intake.Name,
		CandidateEmail: snap.intake.Email,
		LinkedInURL:    snap.intake.LinkedInURL,
		JobID:          c.job.ID,
		Status:         types.StatusForScore(result.Score, c.job.Cutoff()),
		Evaluation:     result,
		Answers:        snap.answers,
		TabSwitches:    snap.tabSwitches,
		IntegrityScore: types.IntegrityScore(snap.tabSwitches),
		SubmitReason:   snap.reason,
		AppliedAt:      c.deps.Clock.Now(),
	}

	c.mu.Lock()
	c.outcome = &outcome
	c.mu.Unlock()

	if c.opts.OnComplete != nil {
		c.opts.OnComplete(outcome)
	}
	close(c.done)
	return outcome
}

// Close tears the session down: the countdown stops, the visibility listener is
// detached and the camera is released, whatever the current state. A session closed
// before submission never completes.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.releaseLocked()
}

func (c *Controller) releaseLocked() {
	if c.stopTicker != nil {
		close(c.stopTicker)
		c.stopTicker = nil
	}
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.stream != nil {
		c.stream.Stop()
	}
}

func (c *Controller) require(s State) error {
	if c.closed {
		return ErrClosed
	}
	if c.state != s {
		return fmt.Errorf("%w: in %s, need %s", ErrInvalidTransition, c.state, s)
	}
	return nil
}

func (c *Controller) requireRunning() error {
	if c.submitted {
		return ErrAlreadySubmitted
	}
	return c.require(StateAssessment)
}

func (c *Controller) setState(to State) *transition {
	from := c.state
	c.state = to
	return &transition{from: from, to: to}
}

func (c *Controller) notify(t *transition) {
	if t == nil || c.opts.OnStateChange == nil {
		return
	}
	c.opts.OnStateChange(t.from, t.to)
}

// IsCameraDenied reports whether err is a retryable camera denial.
func IsCameraDenied(err error) bool {
	return errors.Is(err, ErrCameraDenied)
}
