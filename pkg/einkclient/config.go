package einkclient

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/eink-client/internal/constants"
	"github.com/fivetwenty-io/eink-client/pkg/eink"
)

// fileConfig is the on-disk form of eink.Config.
type fileConfig struct {
	eink.Config `mapstructure:",squash"`

	// LogLevel, when set, attaches a zerolog logger writing to stderr.
	LogLevel string `mapstructure:"log_level"`
}

// LoadConfig reads a YAML config file. An empty path looks for
// ~/.eink/config.yml and tolerates its absence. EINK_BASE_URL and
// EINK_SPECIFICATION_URL override the corresponding file settings.
func LoadConfig(path string) (*eink.Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(constants.ConfigFileName)
		v.SetConfigType("yaml")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, constants.ConfigDirName))
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)

	for _, key := range []string{"base_url", "specification_url"} {
		err := v.BindEnv(key)
		if err != nil {
			return nil, fmt.Errorf("binding environment for %s: %w", key, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg fileConfig

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.LogLevel != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
		if err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
		}

		cfg.Logger = eink.NewZerologLogger(zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger())
	}

	config := cfg.Config

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("retry_max", 0)
	v.SetDefault("retry_wait_min", constants.DefaultRetryWaitMin)
	v.SetDefault("retry_wait_max", constants.DefaultRetryWaitMax)
	v.SetDefault("user_agent", constants.DefaultUserAgent)
	v.SetDefault("debug", false)
}
