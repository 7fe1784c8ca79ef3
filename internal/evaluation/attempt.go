package evaluation

import (
	"time"

	"mbebench/internal/question"
)

// ErrorKind classifies a failed attempt.
type ErrorKind string

const (
	// ErrorKindProvider marks transport failures and non-2xx responses.
	ErrorKindProvider ErrorKind = "provider_error"
	// ErrorKindTimeout marks a call that exceeded the per-call timeout.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindUnparseable marks a response without a valid structured letter.
	ErrorKindUnparseable ErrorKind = "unparseable"
)

// Attempt is one provider's answer to one question. Attempts are never
// mutated after Run returns them.
type Attempt struct {
	QuestionID  int             `json:"question_id"`
	ProviderID  string          `json:"provider_id"`
	Model       string          `json:"model"`
	RawResponse string          `json:"raw_response,omitempty"`
	Letter      question.Letter `json:"letter"`
	Error       string          `json:"error,omitempty"`
	ErrorKind   ErrorKind       `json:"error_kind,omitempty"`
	Duration    time.Duration   `json:"duration_ns"`
}

// Failed reports whether the attempt produced no usable letter.
func (a Attempt) Failed() bool {
	return a.Error != ""
}

// Correct reports whether the attempt matches the expected letter.
func (a Attempt) Correct(expected question.Letter) bool {
	return !a.Failed() && a.Letter == expected
}

// ProviderInfo identifies an adapter in run metadata.
type ProviderInfo struct {
	ID    string `json:"id"`
	Model string `json:"model"`
	Mode  string `json:"mode"`
}
