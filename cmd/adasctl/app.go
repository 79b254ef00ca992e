package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	openadas "github.com/goliatone/go-openadas"
	"github.com/goliatone/go-openadas/adf"
	"github.com/goliatone/go-openadas/configfile"
	"github.com/goliatone/go-openadas/internal/corpus"
	"github.com/goliatone/go-openadas/logging"
	"github.com/goliatone/go-openadas/metrics"
	"github.com/goliatone/go-openadas/pkg/activity"
	"github.com/goliatone/go-openadas/settings"
)

// app holds what every subcommand needs. It is built once in the root
// command's PersistentPreRunE.
type app struct {
	settingsFile string
	metricsOut   string

	settings settings.Settings
	logger   *zap.Logger
	registry *prometheus.Registry
	corpus   corpus.Store
	resolver *openadas.Resolver
}

func (a *app) setup(ctx context.Context) error {
	v, err := settings.New(a.settingsFile)
	if err != nil {
		return err
	}
	s, err := settings.Load(v)
	if err != nil {
		return err
	}
	a.settings = s

	logger, err := logging.New(logging.Options{JSON: s.Log.JSON, Level: s.Log.Level})
	if err != nil {
		return err
	}
	a.logger = logger

	store, err := loadConfigStore(s.ConfigFiles, openadas.WithEngine(s.Engine))
	if err != nil {
		return err
	}

	source, err := corpus.Open(ctx, s.Corpus)
	if err != nil {
		return err
	}
	a.corpus = source

	a.registry = prometheus.NewRegistry()
	observer, err := metrics.New(a.registry)
	if err != nil {
		return err
	}

	// The fs corpus creates the default layout when no root is configured,
	// so the resolver can take the default root as given.
	dataRoot := s.DataRoot
	if dataRoot == "" {
		if dataRoot, err = corpus.DefaultRoot(); err != nil {
			return err
		}
	}

	a.resolver, err = openadas.New(
		openadas.WithConfigStore(store),
		openadas.WithDataRoot(dataRoot),
		openadas.WithFormatReader(adf.NewReader(source, dataRoot, adf.JSONDecoders())),
		openadas.WithExtrapolation(s.AllowExtrapolation),
		openadas.WithLogger(logger),
		openadas.WithObserver(observer),
		openadas.WithEngine(s.Engine),
		openadas.WithActivityHooks(activity.Hooks{logHook(logger)}),
	)
	return err
}

func (a *app) teardown() error {
	if a.logger != nil {
		// Sync fails for stderr on some platforms.
		_ = a.logger.Sync()
	}
	if a.metricsOut == "" || a.registry == nil {
		return nil
	}
	return errors.Wrap(prometheus.WriteToTextfile(a.metricsOut, a.registry), "write metrics")
}

// loadConfigStore layers the settings' config files, weakest first, over the
// embedded default table.
func loadConfigStore(files []string, opts ...openadas.Option) (*openadas.ConfigStore, error) {
	defaults, err := openadas.DefaultConfig()
	if err != nil {
		return nil, err
	}
	layers, err := configfile.LoadLayers(files, openadas.ScopePrioritySite)
	if err != nil {
		return nil, err
	}
	embedded := openadas.NewScope("embedded", openadas.ScopePriorityDefaults, openadas.WithScopeLabel("Embedded defaults"))
	layers = append(layers, openadas.NewLayer(embedded, defaults))
	stack, err := openadas.NewStack(layers...)
	if err != nil {
		return nil, err
	}
	return stack.Merge(opts...)
}

func logHook(logger *zap.Logger) activity.HookFunc {
	return func(_ context.Context, event activity.Event) error {
		logger.Debug("activity",
			zap.String("verb", event.Verb),
			zap.String("object_id", event.ObjectID),
			zap.Any("metadata", event.Metadata),
		)
		return nil
	}
}
