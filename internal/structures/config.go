package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type UpstreamConfig struct {
	BaseURL     string        `yaml:"baseUrl" validate:"required|fullUrl"`
	Owner       string        `yaml:"owner" validate:"required"`
	Repo        string        `yaml:"repo" validate:"required"`
	Token       string        `yaml:"token"`
	MaxTagPages int           `yaml:"maxTagPages" validate:"required|min:1"`
	PerPage     int           `yaml:"perPage" validate:"required|min:1|max:100"`
	MaxRetries  int           `yaml:"maxRetries"`
	BaseDelay   time.Duration `yaml:"baseDelay"`
	Timeout     time.Duration `yaml:"timeout" validate:"required|min:1"`
	RatePerSec  float64       `yaml:"ratePerSec"`
}

type ArtifactConfig struct {
	TTL               time.Duration `yaml:"ttl" validate:"required|min:1"`
	IssuesTTL         time.Duration `yaml:"issuesTTL" validate:"required|min:1"`
	RefreshInterval   time.Duration `yaml:"refreshInterval"`
	RecommendedWindow time.Duration `yaml:"recommendedWindow" validate:"required|min:1"`
	SupportWindow     time.Duration `yaml:"supportWindow" validate:"required|min:1"`
	CommitBatchSize   int           `yaml:"commitBatchSize" validate:"required|min:1"`
	BatchPause        time.Duration `yaml:"batchPause"`
	AggregateTimeout  time.Duration `yaml:"aggregateTimeout" validate:"required|min:1"`
	WindowsURL        string        `yaml:"windowsUrl" validate:"required"`
	LinuxURL          string        `yaml:"linuxUrl" validate:"required"`
}

type SnapshotConfig struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Upstream  UpstreamConfig `yaml:"upstream"`
	Artifacts ArtifactConfig `yaml:"artifacts"`
	WebServer Server         `yaml:"webServer"`
	Snapshot  SnapshotConfig `yaml:"snapshot"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
