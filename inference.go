package joblens

import "context"

// AvailabilityStatus describes the readiness of an inference capability.
type AvailabilityStatus string

// Availability statuses reported by InferenceClient implementations.
const (
	StatusUnavailable  AvailabilityStatus = "unavailable"
	StatusDownloadable AvailabilityStatus = "downloadable"
	StatusDownloading  AvailabilityStatus = "downloading"
	StatusAvailable    AvailabilityStatus = "available"
)

// Availability is the answer to an availability check. Available may be
// reported optimistically while the capability is still downloading, since
// it will become usable without further caller action.
type Availability struct {
	Available bool               `json:"available"`
	Status    AvailabilityStatus `json:"status"`
}

// SessionOptions configure a new inference session.
type SessionOptions struct {
	// Model names the model to use; implementations apply their own default
	// when empty.
	Model string

	// SystemPrompt primes the session for its task.
	SystemPrompt string

	// Temperature controls sampling randomness. Extraction wants low values.
	Temperature float64
}

// InferenceSession is a stateful handle to a model. Sessions are expensive
// to create; the engine keeps at most one alive and reuses it across
// extraction runs.
type InferenceSession interface {
	// Prompt sends text to the model and returns its full response.
	// Cancellation is cooperative via ctx; there is no implicit timeout.
	Prompt(ctx context.Context, text string) (string, error)

	// Destroy releases the session's resources. The session must not be
	// used afterwards.
	Destroy() error
}

// InferenceClient abstracts the host inference capability.
type InferenceClient interface {
	// Availability reports the capability's readiness.
	Availability(ctx context.Context) (AvailabilityStatus, error)

	// Create opens a new session. For downloadable capabilities the call's
	// side effect is beginning the background acquisition of the model.
	Create(ctx context.Context, opts SessionOptions) (InferenceSession, error)
}

// TokenCounter counts tokens in text for a specific model. The engine uses
// it, when available, to budget page content before prompting.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
