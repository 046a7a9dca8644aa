package config

const (
	defaultConfigPath       = "~/.config/decant/config.toml"
	defaultStateDir         = "~/.local/share/decant"
	defaultLogDir           = "~/.local/share/decant/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults. No services are
// defined by default; at least one must come from the configuration file.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Services: map[string]Service{},
	}
}
