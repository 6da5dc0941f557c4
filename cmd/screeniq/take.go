package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/jonathan/screeniq/internal/events"
	"github.com/jonathan/screeniq/internal/flow"
	"github.com/jonathan/screeniq/internal/media"
	"github.com/jonathan/screeniq/internal/observability"
	"github.com/jonathan/screeniq/internal/types"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take an assessment interactively in the terminal",
	Long: "Run one assessment session for a job in the terminal: the briefing, the camera check, " +
		"the timed questions and the evaluation. Suspending the process (Ctrl-Z) counts as leaving the page.",
	RunE: runTake,
}

var (
	takeJobID      string
	takeName       string
	takeEmail      string
	takeLinkedIn   string
	takeResume     string
	takeResumeMIME string
	takeRecord     string
)

func init() {
	takeCmd.Flags().StringVarP(&takeJobID, "job", "j", "", "Job ID to apply for (required)")
	takeCmd.Flags().StringVar(&takeName, "name", "", "Candidate name (prompted when empty)")
	takeCmd.Flags().StringVar(&takeEmail, "email", "", "Candidate email (prompted when empty)")
	takeCmd.Flags().StringVar(&takeLinkedIn, "linkedin", "", "LinkedIn profile URL")
	takeCmd.Flags().StringVarP(&takeResume, "resume", "r", "", "Resume file, URL, s3:// URI or object key (required)")
	takeCmd.Flags().StringVar(&takeResumeMIME, "resume-mime", "", "Resume MIME type (detected when empty)")
	takeCmd.Flags().StringVar(&takeRecord, "record", "", "Append the outcome to this JSON-lines file")

	_ = takeCmd.MarkFlagRequired("job")
	_ = takeCmd.MarkFlagRequired("resume")
	rootCmd.AddCommand(takeCmd)
}

func runTake(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return err
	}
	st, err := loadStore(ctx, cfg)
	if err != nil {
		return err
	}
	job := st.Job(ctx, takeJobID)
	if job == nil {
		return fmt.Errorf("job %q not found", takeJobID)
	}
	if !job.IsOpen() {
		return fmt.Errorf("job %q is not accepting applications", takeJobID)
	}

	svc, closeLLM, err := newAssessor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLLM()

	resolver, err := newResumeResolver(ctx, cfg)
	if err != nil {
		return err
	}
	pub := newPublisher(cfg)
	defer pub.Close() //nolint:errcheck

	con := newConsole(cmd.InOrStdin(), cmd.OutOrStdout())
	printer := observability.NewPrinter(cmd.OutOrStdout())

	intake := types.CandidateIntake{
		Name:        takeName,
		Email:       takeEmail,
		LinkedInURL: takeLinkedIn,
		ResumeRef:   takeResume,
		ResumeMIME:  takeResumeMIME,
	}
	if intake.Name == "" {
		if intake.Name, err = con.ask(ctx, nil, "Full name: "); err != nil {
			return err
		}
	}
	if intake.Email == "" {
		if intake.Email, err = con.ask(ctx, nil, "Email: "); err != nil {
			return err
		}
	}

	bus := media.NewVisibilityBus()
	stopWatch := watchSuspend(bus)
	defer stopWatch()

	outcome, err := takeAssessment(ctx, con, printer, takeOptions{
		Job:        *job,
		Intake:     intake,
		Generator:  svc,
		Resume:     resolver,
		Visibility: bus,
		Publish:    events.Logged(pub),
		Flow: flow.Options{
			SessionLength:   cfg.Questions(),
			Duration:        cfg.Duration(),
			EvaluateTimeout: cfg.EvaluationTimeout(),
		},
	})
	if err != nil {
		return err
	}

	st.MergeOutcome(ctx, outcome)
	if takeRecord != "" {
		if err := appendRecord(takeRecord, outcome); err != nil {
			return err
		}
		printer.PrintNotice("Outcome recorded in %s", takeRecord)
	}
	return nil
}

// takeOptions configures one terminal session.
type takeOptions struct {
	Job        types.Job
	Intake     types.CandidateIntake
	Generator  flow.Generator
	Resume     flow.ResumeSource
	Visibility media.VisibilitySource
	// Optional.
	Publish func(context.Context, events.Update)
	Clock   clockwork.Clock
	Flow    flow.Options
}

// takeAssessment runs a session to completion against the console and returns its outcome.
func takeAssessment(ctx context.Context, con *console, printer *observability.Printer, opts takeOptions) (types.SessionOutcome, error) {
	camera := &media.PermissionCamera{
		Prompt: func(ctx context.Context) (bool, error) {
			answer, err := con.ask(ctx, nil, "Allow camera access for proctoring? [y/N]: ")
			if err != nil {
				return false, err
			}
			return isYes(answer), nil
		},
	}

	var ctrl *flow.Controller
	// submitting closes as soon as the session stops taking answers, before evaluation ends.
	submitting := make(chan struct{})
	var submittingOnce sync.Once

	flowOpts := opts.Flow
	flowOpts.OnStateChange = func(from, to flow.State) {
		if to == flow.StateSubmitting {
			submittingOnce.Do(func() { close(submitting) })
		}
		if opts.Publish == nil {
			return
		}
		opts.Publish(ctx, events.Update{
			Type:      events.TypeStateChanged,
			SessionID: ctrl.ID(),
			JobID:     opts.Job.ID,
			From:      string(from),
			To:        string(to),
			At:        time.Now(),
		})
	}
	if opts.Publish != nil {
		flowOpts.OnComplete = func(outcome types.SessionOutcome) {
			opts.Publish(ctx, events.Update{
				Type:      events.TypeCompleted,
				SessionID: outcome.SessionID,
				JobID:     outcome.JobID,
				Outcome:   &outcome,
				At:        time.Now(),
			})
		}
	}

	ctrl, err := flow.New(opts.Job, flow.Deps{
		Generator:  opts.Generator,
		Camera:     camera,
		Visibility: opts.Visibility,
		Resume:     opts.Resume,
		Clock:      opts.Clock,
	}, flowOpts)
	if err != nil {
		return types.SessionOutcome{}, err
	}
	defer ctrl.Close()

	printer.PrintJob(&opts.Job)
	if err := ctrl.SubmitIntake(ctx, opts.Intake); err != nil {
		return types.SessionOutcome{}, err
	}
	printer.PrintNotice(flow.BriefingPlaceholder)
	if err := ctrl.WaitPrepared(ctx); err != nil {
		return types.SessionOutcome{}, err
	}
	briefing, _ := ctrl.Briefing()
	printer.PrintBriefing(briefing)
	for _, w := range ctrl.Snapshot().Warnings {
		printer.PrintNotice("Note: %s", w)
	}

	if _, err := con.ask(ctx, nil, "Press Enter to start the system check... "); err != nil {
		return types.SessionOutcome{}, err
	}
	if err := ctrl.StartSystemCheck(); err != nil {
		return types.SessionOutcome{}, err
	}
	for {
		err := ctrl.RequestCamera(ctx)
		if err == nil {
			break
		}
		if errors.Is(err, io.EOF) || !flow.IsCameraDenied(err) {
			return types.SessionOutcome{}, err
		}
		printer.PrintNotice("Camera access is required to continue. Allow it to proceed.")
	}

	if err := ctrl.BeginTest(); err != nil {
		return types.SessionOutcome{}, err
	}
	printer.PrintNotice("Camera connected. The clock is running.")

	if err := answerQuestions(ctx, con, printer, ctrl, submitting); err != nil {
		return types.SessionOutcome{}, err
	}

	select {
	case <-ctrl.Done():
	case <-ctx.Done():
		return types.SessionOutcome{}, ctx.Err()
	}
	outcome, _ := ctrl.Outcome()
	printer.PrintOutcome(&outcome)
	return outcome, nil
}

// answerQuestions walks the active questions until the candidate submits or time runs out.
// Prompts are abandoned once submitting closes.
func answerQuestions(ctx context.Context, con *console, printer *observability.Printer, ctrl *flow.Controller, submitting <-chan struct{}) error {
	for {
		v := ctrl.Snapshot()
		if v.Question == nil {
			return nil
		}
		printer.PrintQuestion(v.QuestionIndex, v.QuestionCount, *v.Question, time.Duration(v.Remaining)*time.Second)

		value, err := askAnswer(ctx, con, printer, submitting, *v.Question)
		if errors.Is(err, errTimeUp) {
			printer.PrintNotice("Time is up. Your answers were submitted automatically.")
			return nil
		}
		if err != nil {
			return err
		}
		confidence, err := askConfidence(ctx, con, printer, submitting)
		if errors.Is(err, errTimeUp) {
			printer.PrintNotice("Time is up. Your answers were submitted automatically.")
			return nil
		}
		if err != nil {
			return err
		}

		if err := ctrl.RecordAnswer(value, confidence); err != nil {
			if errors.Is(err, flow.ErrAlreadySubmitted) {
				return nil
			}
			if errors.Is(err, flow.ErrInvalidAnswer) {
				printer.PrintNotice("That is not one of the options.")
				continue
			}
			return err
		}

		if v.QuestionIndex < v.QuestionCount-1 {
			if err := ctrl.Next(); err != nil && !errors.Is(err, flow.ErrAlreadySubmitted) {
				return err
			}
			continue
		}

		printer.PrintNotice("Submitting your answers for evaluation...")
		if _, err := ctrl.Submit(ctx); err != nil && !errors.Is(err, flow.ErrAlreadySubmitted) {
			return err
		}
		return nil
	}
}

// askAnswer reads an option number, or free text for questions without options.
func askAnswer(ctx context.Context, con *console, printer *observability.Printer, done <-chan struct{}, q types.Question) (string, error) {
	for {
		if len(q.Options) == 0 {
			answer, err := con.ask(ctx, done, "Your answer: ")
			if err != nil || answer != "" {
				return answer, err
			}
			continue
		}

		answer, err := con.ask(ctx, done, fmt.Sprintf("Answer [1-%d]: ", len(q.Options)))
		if err != nil {
			return "", err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 1 && n <= len(q.Options) {
			return q.Options[n-1], nil
		}
		printer.PrintNotice("Enter a number between 1 and %d.", len(q.Options))
	}
}

var confidenceKeys = map[string]types.ConfidenceLevel{
	"":         "",
	"u":        types.ConfidenceUnsure,
	"unsure":   types.ConfidenceUnsure,
	"s":        types.ConfidenceSomewhat,
	"somewhat": types.ConfidenceSomewhat,
	"c":        types.ConfidenceCertain,
	"certain":  types.ConfidenceCertain,
}

func askConfidence(ctx context.Context, con *console, printer *observability.Printer, done <-chan struct{}) (types.ConfidenceLevel, error) {
	for {
		answer, err := con.ask(ctx, done, "Confidence [u]nsure/[s]omewhat/[c]ertain (Enter to skip): ")
		if err != nil {
			return "", err
		}
		if level, ok := confidenceKeys[answer]; ok {
			return level, nil
		}
		printer.PrintNotice("Type u, s or c, or press Enter.")
	}
}
