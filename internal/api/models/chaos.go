package models

// StressCPURequest is the body for POST /chaos/stress-cpu.
type StressCPURequest struct {
	// Duration in seconds. Must be positive.
	Duration float64 `json:"duration"`

	// Intensity in (0, 1].
	Intensity float64 `json:"intensity"`
}

// SlowResponseRequest is the body for POST /chaos/slow-response.
type SlowResponseRequest struct {
	// Delay in seconds added to every request. Must be non-negative.
	Delay float64 `json:"delay"`

	// Duration in seconds. Zero or omitted means the delay persists until
	// the process restarts.
	Duration float64 `json:"duration,omitempty"`
}

// TriggerErrorRequest is the body for POST /chaos/trigger-error.
type TriggerErrorRequest struct {
	// ErrorType selects the failure mode ("exception", "timeout", "generic").
	ErrorType string `json:"error_type"`

	// Duration in seconds. Defaults to 30 when omitted.
	Duration float64 `json:"duration,omitempty"`
}

// MemoryLeakRequest is the body for POST /chaos/memory-leak.
type MemoryLeakRequest struct {
	// SizeMB is the amount of memory to leak. Must be positive.
	SizeMB int `json:"size_mb"`
}

// DBFailureRequest is the body for POST /chaos/simulate-db-failure.
type DBFailureRequest struct {
	// Duration in seconds. Must be positive.
	Duration float64 `json:"duration"`
}

// RedisLatencyRequest is the body for POST /chaos/simulate-redis-latency.
type RedisLatencyRequest struct {
	// DelayMs added to every cache operation. Must be non-negative.
	DelayMs int `json:"delay_ms"`

	// Duration in seconds. Must be positive.
	Duration float64 `json:"duration"`
}

// ChaosResponse acknowledges an accepted fault injection.
type ChaosResponse struct {
	Status  string `json:"status"`
	Fault   string `json:"fault"`
	Message string `json:"message,omitempty"`

	// TotalLeakedMB is set for memory-leak responses: the cumulative total.
	TotalLeakedMB int `json:"total_leaked_mb,omitempty"`
}
