package config

// APIConfig defines the optional HTTP API.
type APIConfig struct {
	// Addr enables the HTTP API when non-empty, e.g. ":8080".
	Addr string `json:"addr"`
}
