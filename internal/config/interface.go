package config

// Option defines a configuration option that can be passed to Load
type Option func(*options)

// options holds internal configuration options
type options struct {
	configPath  string
	searchPaths []string
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithSearchPath replaces the directories searched for the default
// configuration file. Default is the working directory.
func WithSearchPath(dirs ...string) Option {
	return func(o *options) {
		o.searchPaths = dirs
	}
}

// Thresholds holds the resolved per-metric bounds. A sample is healthy when
// every reading sits on the favourable side of its bound, bounds included.
type Thresholds struct {
	CPUMax    float64 // percent
	RAMMin    float64 // available MB
	DiskMax   float64 // percent busy
	ThreadMax float64 // total threads
}
