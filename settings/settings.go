// Package settings loads operator settings for adasctl and other programs
// that embed the resolver.
package settings

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/goliatone/go-openadas/internal/corpus"
)

// EnvPrefix is the prefix for environment overrides, e.g. OPENADAS_DATA_ROOT.
const EnvPrefix = "OPENADAS"

// Settings drives resolver construction.
type Settings struct {
	// DataRoot is the directory file references resolve against. Empty
	// selects the per-user default.
	DataRoot           string `mapstructure:"data_root"`
	AllowExtrapolation bool   `mapstructure:"allow_extrapolation"`
	// ConfigFiles are layered weakest first on top of the embedded table.
	// The environment form is comma separated.
	ConfigFiles []string      `mapstructure:"config_files"`
	Engine      string        `mapstructure:"engine"`
	Log         LogConfig     `mapstructure:"log"`
	Corpus      corpus.Config `mapstructure:"-"`
}

// LogConfig selects the logger encoding and level.
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// SetDefaults registers the default value of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_root", "")
	v.SetDefault("allow_extrapolation", false)
	v.SetDefault("config_files", []string{})
	v.SetDefault("engine", "expr")
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}

// New returns a viper instance with defaults and environment binding. When
// file is non-empty it is read as the settings file; otherwise openadas.toml
// is looked up in the working directory and ~/.openadas, and its absence is
// not an error.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "settings: read %s", file)
		}
		return v, nil
	}

	v.SetConfigName("openadas")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if root, err := corpus.DefaultRoot(); err == nil {
		v.AddConfigPath(root)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "settings: read openadas.toml")
		}
	}
	return v, nil
}

// Load reads Settings from v and the corpus driver from the environment.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.Wrap(err, "settings: unmarshal")
	}
	corpusCfg, err := corpus.ConfigFromEnv(nil)
	if err != nil {
		return Settings{}, err
	}
	if corpusCfg.Root == "" {
		corpusCfg.Root = s.DataRoot
	}
	s.Corpus = corpusCfg
	return s, nil
}
