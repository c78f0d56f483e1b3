package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Reader   ReaderConfig   `yaml:"reader"`
	Plugins  PluginsConfig  `yaml:"plugins"`
	Import   ImportConfig   `yaml:"import"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"LINGOREADER_DB" env-default:"lingoreader.db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// ReaderConfig holds pagination and phrase selection settings.
type ReaderConfig struct {
	SentencesPerPage int `yaml:"sentences_per_page" env:"READER_SENTENCES_PER_PAGE" env-default:"25"`
	ComposeWindow    int `yaml:"compose_window"     env:"READER_COMPOSE_WINDOW"     env-default:"64"`
}

// PluginsConfig selects the text processors. An empty Manifest loads the
// built-in set.
type PluginsConfig struct {
	Manifest string `yaml:"manifest" env:"PLUGINS_MANIFEST"`
}

// ImportConfig holds bulk import and web fetch settings.
type ImportConfig struct {
	Workers      int           `yaml:"workers"        env:"IMPORT_WORKERS"        env-default:"4"`
	BatchSize    int           `yaml:"batch_size"     env:"IMPORT_BATCH_SIZE"     env-default:"50"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"IMPORT_MAX_BODY_BYTES" env-default:"10485760"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"  env:"IMPORT_FETCH_TIMEOUT"  env-default:"30s"`
	UserAgent    string        `yaml:"user_agent"     env:"IMPORT_USER_AGENT"     env-default:"Mozilla/5.0 (compatible; lingoreader/0.1)"`
}
