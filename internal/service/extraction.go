package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"promptplay-api/internal/model"
)

// UpstreamError is a fatal adapter failure: the LLM call itself failed, or
// its reply did not match the required JSON shape. Raw carries the upstream
// text for diagnosis.
type UpstreamError struct {
	Op  string
	Raw string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Raw)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ExtractionService turns one free-text prompt into the structured fields of
// a game request via a single LLM call plus strict shape validation.
type ExtractionService struct {
	llm ChatCompleter
}

func NewExtractionService(llm ChatCompleter) *ExtractionService {
	return &ExtractionService{llm: llm}
}

const extractionSystemTemplate = `You are an assistant that converts natural language requests into structured JSON.
Extract the following information from the user's prompt:
- sport (e.g., "tennis", "football", "basketball")
- location (e.g., "The Meadows, Edinburgh", "Holyrood Park")
- datetime_utc (convert relative terms like "tomorrow", "this Wednesday 4pm" to ISO format datetime. Today is %s)
- players_needed (if they say "for 2 people", they need 1 more player. If they say "need 3 players", then players_needed is 3)

Respond ONLY with valid JSON in this exact format:
{
    "sport": "string",
    "location": "string",
    "datetime_utc": "ISO datetime string",
    "players_needed": number
}

Do not include any explanation or markdown formatting.`

// extractionReply is the only shape the extraction adapter accepts. Pointer
// fields distinguish "absent" from zero values; unknown fields are rejected.
type extractionReply struct {
	Sport         *string `json:"sport"`
	Location      *string `json:"location"`
	DatetimeUTC   *string `json:"datetime_utc"`
	PlayersNeeded *int    `json:"players_needed"`
}

// Extract runs the extraction pipeline. Three outcomes:
//   - (extracted, nil, nil): all fields present, caller may persist.
//   - (nil, needsInfo, nil): prompt is missing fields - a normal result,
//     not an error.
//   - (nil, nil, err): the LLM call failed or returned an unparsable reply;
//     err is an *UpstreamError carrying the raw text.
//
// now anchors the resolution of relative time expressions like "tomorrow".
func (s *ExtractionService) Extract(ctx context.Context, prompt string, now time.Time) (*model.ExtractedGame, *model.NeedsInfo, error) {
	systemMessage := fmt.Sprintf(extractionSystemTemplate, now.Format("2006-01-02 15:04:05"))

	reply, err := s.llm.Complete(ctx, systemMessage, prompt, 0.3)
	if err != nil {
		return nil, nil, &UpstreamError{Op: "extraction llm call", Err: err}
	}

	parsed, err := parseExtractionReply(reply)
	if err != nil {
		return nil, nil, &UpstreamError{Op: "parse extraction reply", Raw: reply, Err: err}
	}

	var missing []string
	var suggestions []string

	if !fieldPresent(parsed.Sport) {
		missing = append(missing, "sport")
		suggestions = append(suggestions, "Please specify what sport you want to play (e.g., tennis, football, basketball)")
	}
	if !fieldPresent(parsed.Location) {
		missing = append(missing, "location")
		suggestions = append(suggestions, "Please specify where you want to play (e.g., The Meadows, Holyrood Park)")
	}

	var datetimeUTC time.Time
	if !fieldPresent(parsed.DatetimeUTC) {
		missing = append(missing, "datetime")
		suggestions = append(suggestions, "Please specify when you want to play (e.g., tomorrow 4pm, this Wednesday afternoon)")
	} else {
		datetimeUTC, err = parseISODatetime(*parsed.DatetimeUTC)
		if err != nil {
			missing = append(missing, "datetime")
			suggestions = append(suggestions, "Please specify when you want to play (e.g., tomorrow 4pm, this Wednesday afternoon)")
		}
	}

	if parsed.PlayersNeeded == nil || *parsed.PlayersNeeded == 0 {
		missing = append(missing, "players_needed")
		suggestions = append(suggestions, "Please specify how many players you need (e.g., need 2 more players, for 3 people)")
	}

	if len(missing) > 0 {
		return nil, &model.NeedsInfo{
			Error:         "Missing required information",
			MissingFields: missing,
			Suggestions:   strings.Join(suggestions, " "),
			YourPrompt:    prompt,
		}, nil
	}

	return &model.ExtractedGame{
		Sport:         *parsed.Sport,
		Location:      *parsed.Location,
		DatetimeUTC:   datetimeUTC,
		PlayersNeeded: *parsed.PlayersNeeded,
	}, nil, nil
}

// parseExtractionReply enforces the reply contract: a single JSON object with
// no fields beyond the four enumerated ones. Any deviation is rejected rather
// than guessed around.
func parseExtractionReply(reply string) (*extractionReply, error) {
	dec := json.NewDecoder(strings.NewReader(reply))
	dec.DisallowUnknownFields()

	var parsed extractionReply
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("reply is not the required JSON object: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("reply contains trailing data after the JSON object")
	}

	return &parsed, nil
}

// fieldPresent reports whether a string field carries a real value. The LLM
// sometimes emits the literals "unknown" or "null" instead of omitting a
// field it couldn't extract.
func fieldPresent(v *string) bool {
	if v == nil {
		return false
	}
	trimmed := strings.TrimSpace(*v)
	return trimmed != "" && trimmed != "unknown" && trimmed != "null"
}

// parseISODatetime parses an ISO-8601 timestamp, tolerating a missing zone
// suffix (the model occasionally drops it).
func parseISODatetime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q: %w", value, err)
	}
	return t.UTC(), nil
}
