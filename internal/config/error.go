package config

// ConfigInitError reports a configuration that exists but cannot be used
// until a library is initialized.
type ConfigInitError struct {
	msg string
}

func (e *ConfigInitError) Error() string {
	if e.msg == "" {
		return "no library is configured; run `citegraph init <dir>`"
	}
	return e.msg
}
