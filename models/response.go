package models

// HealthCheckResponse returns the health check response struct
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// SessionResponse is the body returned by the session endpoint. State is one
// of "authenticated-with-profile" or "authenticated-without-profile"; an
// unauthenticated caller never reaches the handler.
type SessionResponse struct {
	State   string       `json:"state"`
	Account Account      `json:"account"`
	Profile *UserProfile `json:"profile,omitempty"`
}

// Session states
const (
	SessionWithProfile    = "authenticated-with-profile"
	SessionWithoutProfile = "authenticated-without-profile"
)
