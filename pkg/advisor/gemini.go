package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("advisor: empty model response")

type generateFunc func(ctx context.Context, prompt string) (string, error)

// Gemini asks a Gemini model for announcements and fraud verdicts
type Gemini struct {
	StationName string
	Shortcode   string

	generate generateFunc
	closer   func() error
}

// NewGemini connects to the Gemini API with the given key and model name
func NewGemini(ctx context.Context, apiKey, model, stationName, shortcode string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	gm := client.GenerativeModel(model)
	return &Gemini{
		StationName: stationName,
		Shortcode:   shortcode,
		generate: func(ctx context.Context, prompt string) (string, error) {
			resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
			if err != nil {
				return "", err
			}
			return responseText(resp), nil
		},
		closer: client.Close,
	}, nil
}

// Close releases the underlying client
func (g *Gemini) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}

// GenerateAnnouncement writes a short radio script for the draw
func (g *Gemini) GenerateAnnouncement(ctx context.Context, a Announcement) (string, error) {
	text, err := g.generate(ctx, g.announcementPrompt(a))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// DetectFraud asks the model whether the stakes look coordinated or automated.
// Anything but an exact "true" or "false" answer is an error.
func (g *Gemini) DetectFraud(ctx context.Context, stakes []Stake) (bool, error) {
	if len(stakes) == 0 {
		return false, nil
	}
	text, err := g.generate(ctx, fraudPrompt(stakes))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("advisor: unexpected fraud verdict %q", text)
}

func (g *Gemini) announcementPrompt(a Announcement) string {
	return fmt.Sprintf(`Write a 30-second high-energy radio announcement script for "Home Radio Cash Out" on %s.
The draw ID is %s.
The total jackpot was %s %.2f.
There were %d lucky listeners who each won %s %.2f.
The script should sound like a professional Ghanaian radio hypeman/DJ.
Mention that the money has already been sent to their Mobile Money wallets.
Encourage others to dial %s to be the next winner.`,
		g.StationName, a.DrawID, a.Currency, a.Pool, a.WinnerCount, a.Currency, a.Prize, g.Shortcode)
}

func fraudPrompt(stakes []Stake) string {
	var b strings.Builder
	for _, s := range stakes {
		fmt.Fprintf(&b, "Phone: %s, Amount: %.2f, Time: %d\n", s.Phone, s.Amount, s.Time.UnixMilli())
	}
	return `Analyze the following lottery stakes for suspicious patterns.
Suspicious patterns include:
1. High frequency of bets from the same phone number in a short time.
2. Coordinated betting (multiple numbers betting identical amounts at exact same times).
3. Stakes that look like bot behavior.

Stakes Data:
` + b.String() + `
Respond ONLY with "true" if fraud is suspected, or "false" if it looks organic. Do not add any explanation.`
}

func responseText(resp *genai.GenerateContentResponse) string {
	var text string
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				text += string(txt)
			}
		}
	}
	return text
}
