package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	LogLevel string         `yaml:"log_level"`
	GrpcHost string         `yaml:"grpc_host"`
	GrpcPort int            `yaml:"grpc_port"`
	Backend  MBackendConfig `yaml:"backend"`
	Sync     MSyncConfig    `yaml:"sync"`
	View     MViewConfig    `yaml:"view"`
	Storage  MStorageConfig `yaml:"storage"`
}

type MBackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	SnapshotPath   string `yaml:"snapshot_path"`
	HistoryPath    string `yaml:"history_path"`
	ChannelPath    string `yaml:"ws_path"`
	HistoryLimit   int    `yaml:"history_limit"`
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MSyncConfig struct {
	MaxReconnectAttempts   int  `yaml:"max_reconnect_attempts"`
	ReconnectBaseDelayMs   int  `yaml:"reconnect_base_delay_ms"`
	ProbeIntervalSeconds   int  `yaml:"probe_interval_seconds"`
	PollIntervalSeconds    int  `yaml:"poll_interval_seconds"`
	HistoryIntervalSeconds int  `yaml:"history_interval_seconds"`
	HistoryOnSnapshot      bool `yaml:"history_on_snapshot"`
	EventLogSize           int  `yaml:"event_log_size"`
}

type MViewConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	ChartWidth  int    `yaml:"chart_width"`
	ChartHeight int    `yaml:"chart_height"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"` // 0 keeps everything
}

// GetLogLevel lets the logger read the configured level.
func (c *MConfig) GetLogLevel() string {
	return c.LogLevel
}
