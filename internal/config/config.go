package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config carries the tunables of a run. The vCenter address and run mode
// come from the command line, not from here.
type Config struct {
	Core struct {
		KeyColumn        string `mapstructure:"key_column"`
		CredentialFile   string `mapstructure:"credential_file"`
		CredentialKeyEnv string `mapstructure:"credential_key_env"`
		LogPrefix        string `mapstructure:"log_prefix"`
	} `mapstructure:"core"`

	Provider struct {
		Insecure   bool   `mapstructure:"insecure"`
		Datacenter string `mapstructure:"datacenter"`
	} `mapstructure:"provider"`
}

// LoadConfig reads an optional config.yaml from path, applies environment
// overrides, and falls back to defaults for anything left unset.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)
	bindFromEnvironment(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if cfg.Core.KeyColumn == "" {
		return nil, errors.New("core.key_column must not be empty")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("core.key_column", "Server Name")
	v.SetDefault("core.credential_file", "credential_file.xml")
	v.SetDefault("core.credential_key_env", "VMATTR_CREDENTIAL_KEY")
	v.SetDefault("core.log_prefix", "log_file")

	v.SetDefault("provider.insecure", true)
	v.SetDefault("provider.datacenter", "")
}

func bindFromEnvironment(v *viper.Viper) {
	// Core configuration
	v.BindEnv("core.key_column", "VMATTR_CORE_KEY_COLUMN")
	v.BindEnv("core.credential_file", "VMATTR_CORE_CREDENTIAL_FILE")
	v.BindEnv("core.credential_key_env", "VMATTR_CORE_CREDENTIAL_KEY_ENV")
	v.BindEnv("core.log_prefix", "VMATTR_CORE_LOG_PREFIX")

	// Provider configuration
	v.BindEnv("provider.insecure", "VMATTR_PROVIDER_INSECURE")
	v.BindEnv("provider.datacenter", "VMATTR_PROVIDER_DATACENTER")
}
