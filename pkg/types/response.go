package types

// ErrorBody is the flat failure payload shared by every endpoint.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// HealthBody is returned by the liveness and readiness probes.
type HealthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
