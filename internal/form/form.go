// Package form drives the two-step waitlist signup: email first, then name,
// then the welcome-mail and enrollment calls.
package form

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

type Step int

const (
	StepEmail Step = 1
	StepName  Step = 2
)

const (
	MsgInvalidEmail    = "Please enter a valid email address."
	MsgAlreadyJoined   = "You're already on the waitlist."
	MsgTooManyAttempts = "Too many attempts. Please wait a minute and try again."
	MsgGeneric         = "Something went wrong. Please try again."
)

// DefaultCelebrationDelay is how long after success the celebration fires.
const DefaultCelebrationDelay = 300 * time.Millisecond

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrSubmitInProgress = errors.New("form: submission already in progress")
	ErrEmailStepPending = errors.New("form: email has not been accepted yet")
)

// MailPolicy decides whether a failed welcome email blocks enrollment.
type MailPolicy int

const (
	MailRequired MailPolicy = iota
	MailBestEffort
)

type EnrollRequest struct {
	Email      string
	FirstName  string
	ReferredBy string
}

type EnrollResult struct {
	Code     string
	NotionID string
}

// Client performs the two server calls of a submission.
type Client interface {
	SendWelcome(ctx context.Context, email, name string) error
	Enroll(ctx context.Context, req EnrollRequest) (EnrollResult, error)
}

// State is a snapshot of the form.
type State struct {
	Step      Step
	Email     string
	Name      string
	Loading   bool
	Success   bool
	Message   string
	Code      string
	ShareLink string
}

type Option func(*Form)

// WithOrigin sets the site origin share links point at.
func WithOrigin(origin string) Option {
	return func(f *Form) { f.origin = origin }
}

// WithReferral attaches the referral code the visitor arrived with.
func WithReferral(code string) Option {
	return func(f *Form) { f.referral = strings.TrimSpace(code) }
}

// WithCelebration calls fn once, delay after a successful submission.
func WithCelebration(delay time.Duration, fn func()) Option {
	return func(f *Form) {
		f.celebrationDelay = delay
		f.celebrate = fn
	}
}

func WithMailPolicy(policy MailPolicy) Option {
	return func(f *Form) { f.mailPolicy = policy }
}

type Form struct {
	client           Client
	origin           string
	referral         string
	mailPolicy       MailPolicy
	celebrationDelay time.Duration
	celebrate        func()

	mu    sync.Mutex
	state State
}

func New(client Client, opts ...Option) *Form {
	f := &Form{
		client:           client,
		mailPolicy:       MailRequired,
		celebrationDelay: DefaultCelebrationDelay,
		state:            State{Step: StepEmail},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Referral() string {
	return f.referral
}

func (f *Form) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Email = email
}

func (f *Form) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Name = name
}

// SubmitEmail validates the email locally and advances to the name step.
// It never touches the network.
func (f *Form) SubmitEmail() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !IsValidEmail(f.state.Email) {
		f.state.Message = MsgInvalidEmail
		return false
	}

	f.state.Email = strings.TrimSpace(f.state.Email)
	f.state.Step = StepName
	f.state.Message = ""
	return true
}

// SubmitName sends the welcome email and then enrolls. Only one submission
// runs at a time; a second call while loading returns ErrSubmitInProgress.
func (f *Form) SubmitName(ctx context.Context) error {
	f.mu.Lock()
	if f.state.Loading {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	if f.state.Step != StepName {
		f.mu.Unlock()
		return ErrEmailStepPending
	}
	f.state.Loading = true
	f.state.Message = ""
	email, name := f.state.Email, strings.TrimSpace(f.state.Name)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.state.Loading = false
		f.mu.Unlock()
	}()

	if err := f.client.SendWelcome(ctx, email, name); err != nil && f.mailPolicy == MailRequired {
		f.fail(err)
		return err
	}

	result, err := f.client.Enroll(ctx, EnrollRequest{
		Email:      email,
		FirstName:  name,
		ReferredBy: f.referral,
	})
	if err != nil {
		f.fail(err)
		return err
	}

	f.mu.Lock()
	f.state.Success = true
	f.state.Code = result.Code
	f.state.ShareLink = ShareLink(f.origin, result.Code)
	f.state.Email = ""
	f.state.Name = ""
	f.mu.Unlock()

	if f.celebrate != nil {
		time.AfterFunc(f.celebrationDelay, f.celebrate)
	}
	return nil
}

// Reset returns to an empty email step. The referral code is kept.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = State{Step: StepEmail}
}

func (f *Form) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Message = MessageFor(err)
}

// MessageFor collapses a submission error into one of the three user messages.
func MessageFor(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusConflict:
			return MsgAlreadyJoined
		case http.StatusTooManyRequests:
			return MsgTooManyAttempts
		}
	}
	return MsgGeneric
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// ShareLink is origin + "/?ref=" + code.
func ShareLink(origin, code string) string {
	return strings.TrimRight(origin, "/") + "/?ref=" + url.QueryEscape(code)
}
