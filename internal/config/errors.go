package config

// ConfigurationError wraps any failure to produce a usable Config. It is
// always startup-fatal; callers check it with errors.As to distinguish a
// bad config from a later runtime failure.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
