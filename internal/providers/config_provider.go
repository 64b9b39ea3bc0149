package providers

import (
	"artifactd/internal/structures"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("upstream.token", "ARTIFACTD_UPSTREAM_TOKEN")
	viper.BindEnv("upstream.baseUrl", "ARTIFACTD_UPSTREAM_URL")
	viper.BindEnv("logger.level", "ARTIFACTD_LOG_LEVEL")
	viper.BindEnv("artifacts.ttl", "ARTIFACTD_ARTIFACTS_TTL")
	viper.BindEnv("artifacts.refreshInterval", "ARTIFACTD_REFRESH_INTERVAL")
	viper.BindEnv("snapshot.saveInterval", "ARTIFACTD_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "ARTIFACTD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "ARTIFACTD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "ArtifactDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
