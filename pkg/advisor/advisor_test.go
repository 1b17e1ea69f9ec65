package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAdvisor struct {
	mock.Mock
}

func (m *mockAdvisor) GenerateAnnouncement(ctx context.Context, a Announcement) (string, error) {
	args := m.Called(ctx, a)
	return args.String(0), args.Error(1)
}

func (m *mockAdvisor) DetectFraud(ctx context.Context, stakes []Stake) (bool, error) {
	args := m.Called(ctx, stakes)
	return args.Bool(0), args.Error(1)
}

func fakeGemini(reply string, err error, seen *string) *Gemini {
	return &Gemini{
		StationName: "Home Radio 99.7",
		Shortcode:   "*789#",
		generate: func(_ context.Context, prompt string) (string, error) {
			if seen != nil {
				*seen = prompt
			}
			return reply, err
		},
	}
}

func TestGemini_FraudVerdict(t *testing.T) {
	stakes := []Stake{{Phone: "0241234567", Amount: 5, Time: time.UnixMilli(1700000000000)}}

	var prompt string
	suspected, err := fakeGemini(" TRUE\n", nil, &prompt).DetectFraud(context.Background(), stakes)
	require.NoError(t, err)
	assert.True(t, suspected)
	assert.Contains(t, prompt, "Phone: 0241234567, Amount: 5.00, Time: 1700000000000")

	suspected, err = fakeGemini("false", nil, nil).DetectFraud(context.Background(), stakes)
	require.NoError(t, err)
	assert.False(t, suspected)

	_, err = fakeGemini("probably not", nil, nil).DetectFraud(context.Background(), stakes)
	assert.Error(t, err)
}

func TestGemini_NoStakesSkipsModel(t *testing.T) {
	g := fakeGemini("", errors.New("must not be called"), nil)
	suspected, err := g.DetectFraud(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, suspected)
}

func TestGemini_Announcement(t *testing.T) {
	var prompt string
	text, err := fakeGemini("  Big winners today!  ", nil, &prompt).GenerateAnnouncement(context.Background(),
		Announcement{DrawID: "CASH-1", Pool: 5010, WinnerCount: 1, Prize: 3507, Currency: "GHS"})
	require.NoError(t, err)
	assert.Equal(t, "Big winners today!", text)
	assert.Contains(t, prompt, "Home Radio 99.7")
	assert.Contains(t, prompt, "GHS 3507.00")
	assert.Contains(t, prompt, "dial *789#")

	_, err = fakeGemini("   ", nil, nil).GenerateAnnouncement(context.Background(), Announcement{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestFailOpen_Fallbacks(t *testing.T) {
	next := new(mockAdvisor)
	next.On("GenerateAnnouncement", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))
	next.On("DetectFraud", mock.Anything, mock.Anything).Return(true, errors.New("quota exceeded"))

	f := FailOpen{Next: next, Timeout: time.Second, FallbackAnnouncement: "fallback"}

	text, err := f.GenerateAnnouncement(context.Background(), Announcement{DrawID: "CASH-1"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", text)

	suspected, err := f.DetectFraud(context.Background(), []Stake{{}})
	require.NoError(t, err)
	assert.False(t, suspected)
	next.AssertExpectations(t)
}

func TestFailOpen_RecoversPanic(t *testing.T) {
	next := new(mockAdvisor)
	next.On("GenerateAnnouncement", mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("boom") })

	f := FailOpen{Next: next, FallbackAnnouncement: "fallback"}
	text, err := f.GenerateAnnouncement(context.Background(), Announcement{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", text)
}

func TestFailOpen_PassesThrough(t *testing.T) {
	next := new(mockAdvisor)
	next.On("GenerateAnnouncement", mock.Anything, mock.Anything).Return("script", nil)
	next.On("DetectFraud", mock.Anything, mock.Anything).Return(true, nil)

	f := FailOpen{Next: next, Timeout: time.Second, FallbackAnnouncement: "fallback"}
	text, _ := f.GenerateAnnouncement(context.Background(), Announcement{})
	assert.Equal(t, "script", text)
	suspected, _ := f.DetectFraud(context.Background(), []Stake{{}})
	assert.True(t, suspected)
}

func TestStatic(t *testing.T) {
	s := Static{StationName: "Home Radio 99.7", Shortcode: "*789#"}
	text, err := s.GenerateAnnouncement(context.Background(), Announcement{DrawID: "CASH-1", WinnerCount: 2, Prize: 10, Currency: "GHS"})
	require.NoError(t, err)
	assert.Contains(t, text, "2 lucky listeners")

	suspected, err := s.DetectFraud(context.Background(), []Stake{{}})
	require.NoError(t, err)
	assert.False(t, suspected)
}
