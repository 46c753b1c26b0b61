package cli

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tasks  ApplicationTaskConfiguration   `mapstructure:"tasks"`
}

// ApplicationCommonConfiguration stores logging defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationTaskConfiguration stores task execution defaults from the configuration file.
type ApplicationTaskConfiguration struct {
	TaskfilePath string         `mapstructure:"taskfile"`
	NoDedupe     bool           `mapstructure:"no_dedupe"`
	Context      map[string]any `mapstructure:"context"`
}
