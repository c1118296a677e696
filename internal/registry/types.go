package registry

// Response is the registry's JSON envelope for every endpoint.
type Response[T any] struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Data       T      `json:"data"`
	Error      any    `json:"error"`
	Message    string `json:"message,omitempty"`
}

// AuthHeaders identify and authenticate the caller on provider routes.
type AuthHeaders struct {
	ProviderID string
	Signature  string
	Message    string
}

// MetricSnapshot is one provider's already-measured metric values for an
// epoch, keyed by metric name. Measurement happens upstream; this package
// only transports the numbers.
type MetricSnapshot struct {
	Provider  string             `json:"provider"`
	Epoch     uint64             `json:"epoch"`
	Metrics   map[string]float64 `json:"metrics"`
	Collected int64              `json:"collectedAt"`
}

// EpochMetrics is the registry payload for one scoring epoch.
type EpochMetrics struct {
	Epoch     uint64           `json:"epoch"`
	Snapshots []MetricSnapshot `json:"snapshots"`
}
