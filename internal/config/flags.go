package config

// Overrides holds command-line settings that win over the config file.
// Zero values leave the loaded setting alone.
type Overrides struct {
	Verbose bool
	Debug   bool
	Quiet   bool
	Format  string
	Root    string
	Scale   float64
	Archive bool
	WebP    bool
	LogFile string
	Search  []string
}

// apply applies CLI overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Verbose {
		cfg.Logging.Level = "info"
	}
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.Quiet {
		cfg.Logging.Level = "warn"
	}
	if o.Format != "" {
		cfg.Export.Format = o.Format
	}
	if o.Root != "" {
		cfg.Export.Root = o.Root
	}
	if o.Scale > 0 {
		cfg.Transform.BlenderToGameScale = float32(o.Scale)
	}
	if o.Archive {
		cfg.Export.Archive = true
	}
	if o.WebP {
		cfg.Export.WebPPreviews = true
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	cfg.Export.SearchPaths = append(cfg.Export.SearchPaths, o.Search...)
}
