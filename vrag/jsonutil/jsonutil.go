// Package jsonutil pulls JSON bodies out of model responses and reads/writes
// JSON files used as simple key-value stores.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
)

// ErrNoJSON is returned when a response carries no {...} body.
var ErrNoJSON = errors.New("no JSON object found in response")

// jsonBodyPattern is greedy: it spans from the first '{' to the last '}', so a
// response holding several objects is captured as one (invalid) body.
var jsonBodyPattern = regexp.MustCompile(`(?s)\{.*\}`)

// DecodeError reports a located JSON body that failed to decode.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse JSON: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LocateJSONStringBody returns the substring from the first '{' to the last
// '}' of content. ok is false when there is no such span.
func LocateJSONStringBody(content string) (body string, ok bool) {
	body = jsonBodyPattern.FindString(content)
	return body, body != ""
}

// ConvertResponseToJSON locates and decodes the JSON object in response.
func ConvertResponseToJSON(response string) (map[string]any, error) {
	body, ok := LocateJSONStringBody(response)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoJSON, response)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		log.Error().Err(err).Str("body", body).Msg("Failed to parse JSON")
		return nil, &DecodeError{Body: body, Err: err}
	}
	return data, nil
}
