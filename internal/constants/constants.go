package constants

const (
	Version        = `0.1.0`
	ConfigFile     = `cfg`
	ConfigFileType = `yaml`
	ConfigDir      = `/.citegraph/`

	// Library layout, relative to a library directory.
	StateDir  = `.citegraph`
	ViewFile  = `view.yaml`
	ReviewDir = `reviews`

	// EnvPrefix prefixes environment overrides, e.g. CITEGRAPH_LIBRARY.
	EnvPrefix = `CITEGRAPH`
)
