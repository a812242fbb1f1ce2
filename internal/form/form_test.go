package form

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu          sync.Mutex
	mailCalls   int
	enrollCalls int
	lastEnroll  EnrollRequest

	mailErr   error
	enrollErr error
	code      string
	block     chan struct{}
}

func (c *fakeClient) SendWelcome(ctx context.Context, email, name string) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mailCalls++
	return c.mailErr
}

func (c *fakeClient) Enroll(ctx context.Context, req EnrollRequest) (EnrollResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enrollCalls++
	c.lastEnroll = req
	if c.enrollErr != nil {
		return EnrollResult{}, c.enrollErr
	}
	return EnrollResult{Code: c.code, NotionID: "page-1"}, nil
}

func (c *fakeClient) calls() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mailCalls, c.enrollCalls
}

func TestForm_InitialState(t *testing.T) {
	f := New(&fakeClient{})

	state := f.State()
	assert.Equal(t, StepEmail, state.Step)
	assert.False(t, state.Loading)
	assert.False(t, state.Success)
}

func TestForm_SubmitEmail(t *testing.T) {
	t.Run("invalid email stays on step one", func(t *testing.T) {
		client := &fakeClient{}
		f := New(client)

		f.SetEmail("foo")
		assert.False(t, f.SubmitEmail())

		state := f.State()
		assert.Equal(t, StepEmail, state.Step)
		assert.Equal(t, MsgInvalidEmail, state.Message)
		mail, enroll := client.calls()
		assert.Zero(t, mail)
		assert.Zero(t, enroll)
	})

	t.Run("valid email advances without network", func(t *testing.T) {
		client := &fakeClient{}
		f := New(client)

		f.SetEmail("a@b.com")
		assert.True(t, f.SubmitEmail())

		state := f.State()
		assert.Equal(t, StepName, state.Step)
		assert.Empty(t, state.Message)
		mail, enroll := client.calls()
		assert.Zero(t, mail)
		assert.Zero(t, enroll)
	})
}

func TestForm_SubmitName_Success(t *testing.T) {
	client := &fakeClient{code: "ABCDEFGH"}
	celebrated := make(chan struct{})
	f := New(client,
		WithOrigin("https://example.com/"),
		WithReferral("REF23456"),
		WithCelebration(10*time.Millisecond, func() { close(celebrated) }),
	)

	f.SetEmail("a@b.com")
	require.True(t, f.SubmitEmail())
	f.SetName("  ")

	require.NoError(t, f.SubmitName(context.Background()))

	state := f.State()
	assert.True(t, state.Success)
	assert.False(t, state.Loading)
	assert.Equal(t, "ABCDEFGH", state.Code)
	assert.Equal(t, "https://example.com/?ref=ABCDEFGH", state.ShareLink)
	assert.Empty(t, state.Email)
	assert.Empty(t, state.Name)

	assert.Equal(t, EnrollRequest{Email: "a@b.com", FirstName: "", ReferredBy: "REF23456"}, client.lastEnroll)

	select {
	case <-celebrated:
	case <-time.After(time.Second):
		t.Fatal("celebration did not fire")
	}
}

func TestForm_SubmitName_Failures(t *testing.T) {
	tests := []struct {
		name        string
		client      *fakeClient
		policy      MailPolicy
		wantMessage string
		wantEnroll  int
	}{
		{
			name:        "mail failure aborts enrollment",
			client:      &fakeClient{mailErr: errors.New("boom")},
			policy:      MailRequired,
			wantMessage: MsgGeneric,
			wantEnroll:  0,
		},
		{
			name:        "mail rate limited",
			client:      &fakeClient{mailErr: &StatusError{StatusCode: http.StatusTooManyRequests}},
			policy:      MailRequired,
			wantMessage: MsgTooManyAttempts,
			wantEnroll:  0,
		},
		{
			name:        "best effort mail still enrolls",
			client:      &fakeClient{mailErr: errors.New("boom"), code: "ABCDEFGH"},
			policy:      MailBestEffort,
			wantMessage: "",
			wantEnroll:  1,
		},
		{
			name:        "already enrolled",
			client:      &fakeClient{enrollErr: &StatusError{StatusCode: http.StatusConflict}},
			policy:      MailRequired,
			wantMessage: MsgAlreadyJoined,
			wantEnroll:  1,
		},
		{
			name:        "enrollment server error",
			client:      &fakeClient{enrollErr: &StatusError{StatusCode: http.StatusInternalServerError}},
			policy:      MailRequired,
			wantMessage: MsgGeneric,
			wantEnroll:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.client, WithMailPolicy(tt.policy))
			f.SetEmail("a@b.com")
			require.True(t, f.SubmitEmail())

			_ = f.SubmitName(context.Background())

			state := f.State()
			assert.False(t, state.Loading)
			assert.Equal(t, tt.wantMessage, state.Message)
			_, enroll := tt.client.calls()
			assert.Equal(t, tt.wantEnroll, enroll)
		})
	}
}

func TestForm_SubmitName_RejectsConcurrentSubmission(t *testing.T) {
	client := &fakeClient{code: "ABCDEFGH", block: make(chan struct{})}
	f := New(client)
	f.SetEmail("a@b.com")
	require.True(t, f.SubmitEmail())

	done := make(chan error, 1)
	go func() { done <- f.SubmitName(context.Background()) }()

	require.Eventually(t, func() bool { return f.State().Loading }, time.Second, time.Millisecond)
	assert.ErrorIs(t, f.SubmitName(context.Background()), ErrSubmitInProgress)

	close(client.block)
	require.NoError(t, <-done)
	assert.False(t, f.State().Loading)

	mail, enroll := client.calls()
	assert.Equal(t, 1, mail)
	assert.Equal(t, 1, enroll)
}

func TestForm_SubmitName_RequiresEmailStep(t *testing.T) {
	f := New(&fakeClient{})
	assert.ErrorIs(t, f.SubmitName(context.Background()), ErrEmailStepPending)
}

func TestForm_Reset(t *testing.T) {
	f := New(&fakeClient{code: "ABCDEFGH"}, WithReferral("REF23456"))
	f.SetEmail("a@b.com")
	require.True(t, f.SubmitEmail())
	require.NoError(t, f.SubmitName(context.Background()))

	f.Reset()

	assert.Equal(t, State{Step: StepEmail}, f.State())
	assert.Equal(t, "REF23456", f.Referral())
}

func TestShareLink(t *testing.T) {
	assert.Equal(t, "https://site.test/?ref=ABCDEFGH", ShareLink("https://site.test", "ABCDEFGH"))
	assert.Equal(t, "https://site.test/?ref=ABCDEFGH", ShareLink("https://site.test/", "ABCDEFGH"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.com"))
	assert.False(t, IsValidEmail("foo"))
	assert.False(t, IsValidEmail("a b@c.com"))
	assert.False(t, IsValidEmail("a@b"))
}
