package corpus

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
)

// EnvPrefix is the prefix of the variables read by ConfigFromEnv.
const EnvPrefix = "OPENADAS_CORPUS_"

// Config selects and configures a Store.
//
//	OPENADAS_CORPUS_DRIVER: fs|s3|memory (default fs)
//	OPENADAS_CORPUS_ROOT: directory when driver=fs (default ~/.openadas)
//	OPENADAS_CORPUS_S3_*: see S3Config
type Config struct {
	Driver Driver   `env:"DRIVER" envDefault:"fs"`
	Root   string   `env:"ROOT"`
	S3     S3Config `envPrefix:"S3_"`
}

// ConfigFromEnv reads Config from environment, or from the process
// environment when environment is nil.
func ConfigFromEnv(environment map[string]string) (Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: environment})
	if err != nil {
		return Config{}, errors.Wrap(err, "corpus: parse environment")
	}
	return cfg, nil
}

// Open builds the Store cfg describes. The fs driver creates the default
// layout when it falls back to DefaultRoot.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		root := cfg.Root
		if root == "" {
			var err error
			if root, err = DefaultRoot(); err != nil {
				return nil, err
			}
			if err := EnsureLayout(root); err != nil {
				return nil, err
			}
		}
		return NewFilesystem(root)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, errors.WithHint(errors.Wrapf(ErrUnknownDriver, "%q", cfg.Driver),
			"valid drivers are fs, s3 and memory")
	}
}

// OpenFromEnv is Open(ctx, ConfigFromEnv(nil)).
func OpenFromEnv(ctx context.Context) (Store, error) {
	cfg, err := ConfigFromEnv(nil)
	if err != nil {
		return nil, err
	}
	return Open(ctx, cfg)
}
