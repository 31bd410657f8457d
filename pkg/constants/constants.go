package constants

const (
	AppName = "biomatrix"

	// ConfigName is the config file name without extension, looked up in the --config directory.
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix prefixes environment overrides, e.g. BIOMATRIX_DATABASE_HOST.
	EnvPrefix = "BIOMATRIX"

	DefaultServiceName = "biomatrix"
)
