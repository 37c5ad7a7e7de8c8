package config

// LogLevel is the minimum slog level written to stderr.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// Config is the top-level callscope configuration, corresponding to .callscope.yml.
type Config struct {
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Database DatabaseConfig `yaml:"database" koanf:"database"`
	Analysis AnalysisConfig `yaml:"analysis" koanf:"analysis"`
	Views    ViewsConfig    `yaml:"views" koanf:"views"`
	LogLevel LogLevel       `yaml:"log_level" koanf:"log_level"`
	Neo4j    Neo4jConfig    `yaml:"neo4j" koanf:"neo4j"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	AllowAll       bool     `yaml:"allow_all" koanf:"allow_all"`
}

// DatabaseConfig locates the SQLite file holding snapshots and the blacklist.
type DatabaseConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// AnalysisConfig tunes source analysis.
type AnalysisConfig struct {
	Include         []string `yaml:"include" koanf:"include"`
	Exclude         []string `yaml:"exclude" koanf:"exclude"`
	MaxFileSize     int64    `yaml:"max_file_size" koanf:"max_file_size"`
	BlacklistFile   string   `yaml:"blacklist_file" koanf:"blacklist_file"`
	ActionsOnly     bool     `yaml:"actions_only" koanf:"actions_only"`
	IncludeExternal bool     `yaml:"include_external" koanf:"include_external"`
}

// ViewsConfig holds view defaults.
type ViewsConfig struct {
	CallTreeDepth  int `yaml:"call_tree_depth" koanf:"call_tree_depth"`
	HeatmapSize    int `yaml:"heatmap_size" koanf:"heatmap_size"`
	ChordThreshold int `yaml:"chord_threshold" koanf:"chord_threshold"`
}

// Neo4jConfig is the export target.
type Neo4jConfig struct {
	URI       string `yaml:"uri" koanf:"uri"`
	Username  string `yaml:"username" koanf:"username"`
	Password  string `yaml:"password" koanf:"password"`
	Database  string `yaml:"database" koanf:"database"`
	BatchSize int    `yaml:"batch_size" koanf:"batch_size"`
}
