package config

// Settings mirrors the CLI flags. A nil field was not set in the file.
type Settings struct {
	SampleRate      *int    `hcl:"sample_rate,optional" yaml:"sample_rate"`
	BlockSize       *int    `hcl:"block_size,optional" yaml:"block_size"`
	Duration        *string `hcl:"duration,optional" yaml:"duration"`
	BitDepth        *int    `hcl:"bit_depth,optional" yaml:"bit_depth"`
	LFOShape        *string `hcl:"lfo_shape,optional" yaml:"lfo_shape"`
	OutputDir       *string `hcl:"output_dir,optional" yaml:"output_dir"`
	Workers         *int    `hcl:"workers,optional" yaml:"workers"`
	HealthcheckPort *int    `hcl:"healthcheck_port,optional" yaml:"healthcheck_port"`
	LogLevel        *string `hcl:"log_level,optional" yaml:"log_level"`
	LogFormat       *string `hcl:"log_format,optional" yaml:"log_format"`
}
