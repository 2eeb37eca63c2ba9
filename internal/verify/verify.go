// Package verify runs AI justification checks for quiz answers. One
// verification is in flight at a time; results stream back through a
// callback and are guarded by a generation token so superseded attempts
// can never touch current state.
package verify

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/llm"
	"github.com/anupamd/revise/internal/store"
)

// Config bounds a verification attempt.
type Config struct {
	// StreamStartTimeout aborts an attempt if no text has arrived yet.
	// A slow stream that has already produced text is not affected.
	StreamStartTimeout time.Duration

	// FullStreamTimeout aborts an attempt regardless of partial progress.
	FullStreamTimeout time.Duration

	// FailureThreshold is the number of consecutive error outcomes that
	// auto-disables verification for the rest of the session.
	FailureThreshold int

	MaxTokens int
}

// DefaultConfig returns the standard verification bounds.
func DefaultConfig() Config {
	return Config{
		StreamStartTimeout: 10 * time.Second,
		FullStreamTimeout:  30 * time.Second,
		FailureThreshold:   3,
		MaxTokens:          1024,
	}
}

// Input carries everything the verifier needs to judge one submission.
type Input struct {
	QuestionIndex  int // original (unshuffled) index
	Question       string
	Options        []content.QuizOption
	CorrectAnswer  string
	SelectedAnswer string
	Justification  string
	Explanation    string
}

// Update is one state change of a verification attempt. Updates for a
// stale Generation must be discarded by the receiver; the orchestrator
// already drops them, so this is belt and suspenders for async delivery.
type Update struct {
	Generation    int
	QuestionIndex int
	Verification  store.AiVerification

	// AutoDisabled is set on the terminal update that tripped the
	// consecutive-failure threshold. The receiver should turn
	// verification off for the remainder of the session.
	AutoDisabled bool
}

// Orchestrator coordinates verification attempts against an LLM
// provider. It is safe for use from the single-threaded UI loop plus
// its own internal goroutines.
type Orchestrator struct {
	provider llm.Provider
	cfg      Config
	onUpdate func(Update)

	mu           sync.Mutex
	generation   int
	inFlight     bool
	pendingReset bool
	failures     int
	last         *Input
}

// New creates an orchestrator. onUpdate receives every state change,
// including the synchronous pending update emitted by Verify.
func New(provider llm.Provider, cfg Config, onUpdate func(Update)) *Orchestrator {
	return &Orchestrator{provider: provider, cfg: cfg, onUpdate: onUpdate}
}

// Verify starts a verification attempt for a submission. It emits a
// provisional pending update synchronously before returning, then
// streams the attempt in the background. Any prior attempt is
// superseded.
func (o *Orchestrator) Verify(ctx context.Context, input Input) {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.inFlight = true
	o.pendingReset = false
	in := input
	o.last = &in
	o.mu.Unlock()

	// Provisional placeholder. Never a final verdict: status says so.
	o.emit(Update{
		Generation:    gen,
		QuestionIndex: input.QuestionIndex,
		Verification: store.AiVerification{
			Verdict: store.VerdictFail,
			Status:  store.VerificationPending,
		},
	})

	go o.run(ctx, gen, input)
}

// Retry re-issues the last payload verbatim, starting over from a fresh
// pending state. Reports whether there was a payload to retry.
func (o *Orchestrator) Retry(ctx context.Context) bool {
	o.mu.Lock()
	last := o.last
	o.mu.Unlock()
	if last == nil {
		return false
	}
	o.Verify(ctx, *last)
	return true
}

// Reset invalidates the current attempt. If one is in flight its
// eventual terminal result is still applied first, then the reset
// executes — the deferred-reset rule. Late stream results after the
// reset are dropped by the generation token.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		o.pendingReset = true
		return
	}
	o.generation++
	o.last = nil
}

// Invalidate drops any in-flight attempt immediately (no deferred
// apply) and clears the failure counter. Used when the user toggles
// verification off.
func (o *Orchestrator) Invalidate() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.inFlight = false
	o.pendingReset = false
	o.failures = 0
	o.last = nil
}

// InFlight reports whether an attempt is outstanding.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// ConsecutiveFailures returns the current error streak.
func (o *Orchestrator) ConsecutiveFailures() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failures
}

func (o *Orchestrator) run(ctx context.Context, gen int, input Input) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.FullStreamTimeout)
	defer cancel()
	ctx = llm.WithPurpose(ctx, "verification")

	// The start timer only fires while nothing has arrived.
	var started atomic.Bool
	startTimer := time.AfterFunc(o.cfg.StreamStartTimeout, func() {
		if !started.Load() {
			cancel()
		}
	})
	defer startTimer.Stop()

	var acc strings.Builder
	req := llm.Request{
		System: verdictSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildVerdictMessage(input)},
		},
		MaxTokens: o.cfg.MaxTokens,
	}

	_, err := o.provider.GenerateStream(ctx, req, func(text string) {
		started.Store(true)
		acc.WriteString(text)
		o.emitLive(Update{
			Generation:    gen,
			QuestionIndex: input.QuestionIndex,
			Verification: store.AiVerification{
				Verdict:     store.VerdictFail,
				Explanation: acc.String(),
				Status:      store.VerificationStreaming,
			},
		})
	})

	if err != nil {
		msg := err.Error()
		if ctx.Err() != nil {
			if started.Load() {
				msg = "verification stream timed out"
			} else {
				msg = "verification stream did not start in time"
			}
		}
		o.finish(gen, Update{
			Generation:    gen,
			QuestionIndex: input.QuestionIndex,
			Verification: store.AiVerification{
				Verdict: store.VerdictFail,
				Status:  store.VerificationError,
				Error:   msg,
			},
		})
		return
	}

	verdict, explanation := ParseVerdict(acc.String())
	o.finish(gen, Update{
		Generation:    gen,
		QuestionIndex: input.QuestionIndex,
		Verification: store.AiVerification{
			Verdict:     verdict,
			Explanation: explanation,
			Status:      store.VerificationComplete,
		},
	})
}

// emitLive delivers a non-terminal update if its generation is current.
func (o *Orchestrator) emitLive(u Update) {
	o.mu.Lock()
	stale := u.Generation != o.generation
	o.mu.Unlock()
	if stale {
		return
	}
	o.emit(u)
}

// finish delivers a terminal update, runs failure accounting, then
// executes any deferred reset.
func (o *Orchestrator) finish(gen int, u Update) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	o.inFlight = false

	if u.Verification.Status == store.VerificationError {
		o.failures++
		if o.failures >= o.cfg.FailureThreshold {
			o.failures = 0
			u.AutoDisabled = true
		}
	} else {
		o.failures = 0
	}

	if o.pendingReset || u.AutoDisabled {
		o.pendingReset = false
		o.generation++
		o.last = nil
	}
	o.mu.Unlock()

	o.emit(u)
}

func (o *Orchestrator) emit(u Update) {
	if o.onUpdate != nil {
		o.onUpdate(u)
	}
}
