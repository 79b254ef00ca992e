package openadas

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-openadas/internal/corpus"
	"github.com/goliatone/go-openadas/pkg/activity"
	"github.com/goliatone/go-openadas/rates"
	"github.com/goliatone/go-openadas/tabulated"
)

// ErrNilSpecies is returned when a query passes a nil Species.
var ErrNilSpecies = errors.New("openadas: species must not be nil")

// Resolver maps physics queries onto configured data files and builds rate
// objects from them. It holds no mutable state: every call reads the
// immutable configuration and re-reads data through the FormatReader.
type Resolver struct {
	cfg         optionsConfig
	store       *ConfigStore
	dataRoot    string
	reader      FormatReader
	extrapolate bool
	logger      *zap.Logger
	observer    Observer
	emitter     *activity.Emitter
	functions   *FunctionRegistry
}

// New builds a resolver. Without WithConfig or WithConfigStore the embedded
// default table is used. Without WithDataRoot the per-user default directory
// is used and created, with one subdirectory per ADF format, when missing.
func New(opts ...Option) (*Resolver, error) {
	cfg := applyOptions(opts)

	store := cfg.store
	if store == nil {
		table := cfg.config
		if table == nil {
			defaults, err := DefaultConfig()
			if err != nil {
				return nil, err
			}
			table = &defaults
		}
		store = NewConfigStore(*table, opts...)
	}

	dataRoot := cfg.dataRoot
	if dataRoot == "" {
		root, err := corpus.DefaultRoot()
		if err != nil {
			return nil, err
		}
		if err := corpus.EnsureLayout(root); err != nil {
			return nil, err
		}
		dataRoot = root
	}

	reader := cfg.reader
	if reader == nil {
		reader = missingReader{}
	}

	r := &Resolver{
		cfg:         cfg,
		store:       store,
		dataRoot:    dataRoot,
		reader:      reader,
		extrapolate: cfg.extrapolation,
		logger:      cfg.zapLogger().Named("openadas"),
		observer:    cfg.observerOrNoop(),
		emitter:     activity.NewEmitter(cfg.activityHooks, activity.Config{Enabled: true, Channel: "openadas"}),
	}
	functions, err := r.builtinFunctions(cfg.functions)
	if err != nil {
		return nil, err
	}
	r.functions = functions
	return r, nil
}

// Config returns a deep copy of the resolver's configuration.
func (r *Resolver) Config() Config {
	return r.store.Config()
}

// Store returns the configuration store the resolver reads.
func (r *Resolver) Store() *ConfigStore {
	return r.store
}

// DataRoot returns the directory file references are resolved against.
func (r *Resolver) DataRoot() string {
	return r.dataRoot
}

// AllowExtrapolation reports the extrapolation flag passed to rate objects.
func (r *Resolver) AllowExtrapolation() bool {
	return r.extrapolate
}

// Wavelength returns the line wavelength in nanometres. An isotope without
// its own entry falls back to its parent element; no other substitution is
// made.
func (r *Resolver) Wavelength(species Species, stage int, transition Transition) (float64, error) {
	value, _, err := r.wavelength(QuantityWavelength, species, stage, transition)
	return value, err
}

// WavelengthTrace is Wavelength plus one provenance entry per lookup
// strategy attempted.
func (r *Resolver) WavelengthTrace(species Species, stage int, transition Transition) (float64, Trace, error) {
	return r.wavelength(QuantityWavelength, species, stage, transition)
}

// wavelengthStrategy derives the wavelength table key for a species. A
// strategy that does not apply returns false and is skipped.
type wavelengthStrategy struct {
	name string
	key  func(Species) (string, bool)
}

// wavelengthStrategies are tried in order; the first hit wins.
var wavelengthStrategies = []wavelengthStrategy{
	{
		name: "species",
		key: func(s Species) (string, bool) {
			return s.Symbol(), true
		},
	},
	{
		name: "element",
		key: func(s Species) (string, bool) {
			element := s.Element()
			if element.Symbol() == s.Symbol() {
				return "", false
			}
			return element.Symbol(), true
		},
	},
}

func (r *Resolver) wavelength(caller Quantity, species Species, stage int, transition Transition) (float64, Trace, error) {
	if species == nil {
		return 0, Trace{}, ErrNilSpecies
	}
	trace := Trace{Path: joinPath(configPath(QuantityWavelength, species.Symbol(), stage, transition))}
	var lastPath []string
	for i, strategy := range wavelengthStrategies {
		key, ok := strategy.key(species)
		if !ok {
			continue
		}
		path := configPath(QuantityWavelength, key, stage, transition)
		lastPath = path
		value, found := r.store.cfg.Wavelength.Lookup(key, stage, transition)
		step := Provenance{Strategy: strategy.name, Path: joinPath(path), Found: found}
		if found {
			step.Value = value
		}
		trace.Layers = append(trace.Layers, step)
		if !found {
			continue
		}
		r.observer.ObserveLookup(QuantityWavelength, LookupHit)
		if i > 0 {
			r.observer.ObserveFallback(caller)
		}
		r.logger.Debug("wavelength resolved",
			zap.String("quantity", string(caller)),
			zap.String("path", joinPath(path)),
			zap.String("strategy", strategy.name),
			zap.Float64("wavelength", value),
		)
		return value, trace, nil
	}

	r.observer.ObserveLookup(QuantityWavelength, LookupMiss)
	return 0, trace, &DataNotAvailableError{
		Quantity:   QuantityWavelength,
		Species:    []QueryParam{{Role: "ion", Species: species}},
		Stage:      stage,
		Transition: transitionPtr(transition),
		Path:       lastPath,
	}
}

// BeamCXRate returns one charge exchange rate per donor metastable level
// configured for (donor, receiver, stage), in configuration order. The
// wavelength is that of the receiver one stage below, before capture.
func (r *Resolver) BeamCXRate(ctx context.Context, donor, receiver Species, stage int, transition Transition) ([]*rates.BeamCXRate, error) {
	q := QuantityChargeExchange
	if err := requireSpecies(donor, receiver); err != nil {
		return nil, err
	}
	wavelength, _, err := r.wavelength(q, receiver, stage-1, transition)
	if err != nil {
		r.unavailable(ctx, q, err)
		return nil, err
	}

	d, rc := donor.Element().Symbol(), receiver.Element().Symbol()
	path := configPath(q, d, rc, stage)
	files, ok := r.store.cfg.ChargeExchange.Lookup(d, rc, stage)
	if !ok {
		err := &DataNotAvailableError{
			Quantity:   q,
			Species:    []QueryParam{{Role: "donor ion", Species: donor}, {Role: "receiver ion", Species: receiver}},
			Stage:      stage,
			Transition: transitionPtr(transition),
			Path:       path,
		}
		r.miss(ctx, q, err)
		return nil, err
	}
	r.observer.ObserveLookup(q, LookupHit)

	out := make([]*rates.BeamCXRate, 0, len(files))
	refs := make([]string, 0, len(files))
	for _, entry := range files {
		data, err := readTimed(r, q, func() (tabulated.Curve, error) {
			return r.reader.ReadChargeExchange(ctx, r.filePath(entry.File), transition)
		})
		if err != nil {
			return nil, err
		}
		rate, err := rates.NewBeamCXRate(entry.Metastable, wavelength, data, r.extrapolate)
		if err != nil {
			return nil, err
		}
		out = append(out, rate)
		refs = append(refs, string(entry.File))
	}
	r.resolved(ctx, q, path, []Species{donor, receiver}, stage, refs)
	return out, nil
}

// BeamStoppingRate returns the stopping rate of beam in plasma at stage.
func (r *Resolver) BeamStoppingRate(ctx context.Context, beam, plasma Species, stage int) (*rates.BeamStoppingRate, error) {
	q := QuantityBeamStopping
	if err := requireSpecies(beam, plasma); err != nil {
		return nil, err
	}
	b, p := beam.Element().Symbol(), plasma.Element().Symbol()
	path := configPath(q, b, p, stage)
	file, ok := r.store.cfg.BeamStopping.Lookup(b, p, stage)
	if !ok {
		err := &DataNotAvailableError{
			Quantity: q,
			Species:  []QueryParam{{Role: "beam ion", Species: beam}, {Role: "plasma ion", Species: plasma}},
			Stage:    stage,
			Path:     path,
		}
		r.miss(ctx, q, err)
		return nil, err
	}
	r.observer.ObserveLookup(q, LookupHit)

	data, err := readTimed(r, q, func() (tabulated.Surface, error) {
		return r.reader.ReadBeamStopping(ctx, r.filePath(file))
	})
	if err != nil {
		return nil, err
	}
	rate, err := rates.NewBeamStoppingRate(data, r.extrapolate)
	if err != nil {
		return nil, err
	}
	r.resolved(ctx, q, path, []Species{beam, plasma}, stage, []string{string(file)})
	return rate, nil
}

// BeamPopulationRate returns the population of a beam metastable level.
func (r *Resolver) BeamPopulationRate(ctx context.Context, beam Species, metastable int, plasma Species, stage int) (*rates.BeamPopulationRate, error) {
	q := QuantityBeamPopulation
	if err := requireSpecies(beam, plasma); err != nil {
		return nil, err
	}
	b, p := beam.Element().Symbol(), plasma.Element().Symbol()
	path := configPath(q, b, metastable, p, stage)
	file, ok := r.store.cfg.BeamPopulation.Lookup(b, metastable, p, stage)
	if !ok {
		err := &DataNotAvailableError{
			Quantity:   q,
			Species:    []QueryParam{{Role: "beam ion", Species: beam}, {Role: "plasma ion", Species: plasma}},
			Stage:      stage,
			Metastable: intPtr(metastable),
			Path:       path,
		}
		r.miss(ctx, q, err)
		return nil, err
	}
	r.observer.ObserveLookup(q, LookupHit)

	data, err := readTimed(r, q, func() (tabulated.Surface, error) {
		return r.reader.ReadBeamPopulation(ctx, r.filePath(file))
	})
	if err != nil {
		return nil, err
	}
	rate, err := rates.NewBeamPopulationRate(data, r.extrapolate)
	if err != nil {
		return nil, err
	}
	r.resolved(ctx, q, path, []Species{beam, plasma}, stage, []string{string(file)})
	return rate, nil
}

// BeamEmissionRate returns the emission rate of a beam line. The wavelength
// is looked up for the neutral beam species as given, so an isotope beam can
// still fall back to its element's line.
func (r *Resolver) BeamEmissionRate(ctx context.Context, beam, plasma Species, stage int, transition Transition) (*rates.BeamEmissionRate, error) {
	q := QuantityBeamEmission
	if err := requireSpecies(beam, plasma); err != nil {
		return nil, err
	}
	wavelength, _, err := r.wavelength(q, beam, 0, transition)
	if err != nil {
		r.unavailable(ctx, q, err)
		return nil, err
	}

	b, p := beam.Element().Symbol(), plasma.Element().Symbol()
	path := configPath(q, b, p, stage, transition)
	file, ok := r.store.cfg.BeamEmission.Lookup(b, p, stage, transition)
	if !ok {
		err := &DataNotAvailableError{
			Quantity:   q,
			Species:    []QueryParam{{Role: "beam ion", Species: beam}, {Role: "plasma ion", Species: plasma}},
			Stage:      stage,
			Transition: transitionPtr(transition),
			Path:       path,
		}
		r.miss(ctx, q, err)
		return nil, err
	}
	r.observer.ObserveLookup(q, LookupHit)

	data, err := readTimed(r, q, func() (tabulated.Surface, error) {
		return r.reader.ReadBeamPopulation(ctx, r.filePath(file))
	})
	if err != nil {
		return nil, err
	}
	rate, err := rates.NewBeamEmissionRate(wavelength, data, r.extrapolate)
	if err != nil {
		return nil, err
	}
	r.resolved(ctx, q, path, []Species{beam, plasma}, stage, []string{string(file)})
	return rate, nil
}

// ImpactExcitationRate returns the electron impact excitation rate of a line.
func (r *Resolver) ImpactExcitationRate(ctx context.Context, species Species, stage int, transition Transition) (*rates.ImpactExcitationRate, error) {
	wavelength, data, err := r.blockRate(ctx, QuantityExcitation, r.store.cfg.Excitation, species, stage, transition)
	if err != nil {
		return nil, err
	}
	rate, err := rates.NewImpactExcitationRate(wavelength, data, r.extrapolate)
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// RecombinationRate returns the recombination rate of a line.
func (r *Resolver) RecombinationRate(ctx context.Context, species Species, stage int, transition Transition) (*rates.RecombinationRate, error) {
	wavelength, data, err := r.blockRate(ctx, QuantityRecombination, r.store.cfg.Recombination, species, stage, transition)
	if err != nil {
		return nil, err
	}
	rate, err := rates.NewRecombinationRate(wavelength, data, r.extrapolate)
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// blockRate resolves the wavelength and loads the ADF15 block shared by the
// excitation and recombination queries.
func (r *Resolver) blockRate(ctx context.Context, q Quantity, table BlockTable, species Species, stage int, transition Transition) (float64, tabulated.Surface, error) {
	if err := requireSpecies(species); err != nil {
		return 0, tabulated.Surface{}, err
	}
	wavelength, _, err := r.wavelength(q, species, stage, transition)
	if err != nil {
		r.unavailable(ctx, q, err)
		return 0, tabulated.Surface{}, err
	}

	symbol := species.Element().Symbol()
	path := configPath(q, symbol, stage, transition)
	ref, ok := table.Lookup(symbol, stage, transition)
	if !ok {
		err := &DataNotAvailableError{
			Quantity:   q,
			Species:    []QueryParam{{Role: "ion", Species: species}},
			Stage:      stage,
			Transition: transitionPtr(transition),
			Path:       path,
		}
		r.miss(ctx, q, err)
		return 0, tabulated.Surface{}, err
	}
	r.observer.ObserveLookup(q, LookupHit)

	data, err := readTimed(r, q, func() (tabulated.Surface, error) {
		return r.reader.ReadBlock(ctx, r.filePath(ref.File), ref.Block)
	})
	if err != nil {
		return 0, tabulated.Surface{}, err
	}
	r.resolved(ctx, q, path, []Species{species}, stage, []string{string(ref.File)})
	return wavelength, data, nil
}

func (r *Resolver) filePath(file FileRef) string {
	return filepath.Join(r.dataRoot, string(file))
}

func readTimed[T any](r *Resolver, q Quantity, read func() (T, error)) (T, error) {
	start := time.Now()
	data, err := read()
	r.observer.ObserveRead(q, time.Since(start), err)
	return data, err
}

func requireSpecies(species ...Species) error {
	for _, s := range species {
		if s == nil {
			return ErrNilSpecies
		}
	}
	return nil
}

func (r *Resolver) miss(ctx context.Context, q Quantity, err *DataNotAvailableError) {
	r.observer.ObserveLookup(q, LookupMiss)
	r.unavailable(ctx, q, err)
}

func (r *Resolver) unavailable(ctx context.Context, q Quantity, err error) {
	var dna *DataNotAvailableError
	if !errors.As(err, &dna) {
		return
	}
	r.logger.Debug("data not available",
		zap.String("quantity", string(q)),
		zap.String("path", joinPath(dna.Path)),
		zap.Strings("species", dna.Symbols()),
		zap.Int("stage", dna.Stage),
	)
	r.emit(ctx, activity.BuildRateUnavailableEvent(activity.RateEventInput{
		QueryID:  uuid.NewString(),
		Quantity: string(q),
		Path:     joinPath(dna.Path),
		Species:  dna.Symbols(),
		Stage:    dna.Stage,
		Reason:   err.Error(),
	}))
}

func (r *Resolver) resolved(ctx context.Context, q Quantity, path []string, species []Species, stage int, files []string) {
	symbols := make([]string, len(species))
	for i, s := range species {
		symbols[i] = s.Symbol()
	}
	r.logger.Debug("rate resolved",
		zap.String("quantity", string(q)),
		zap.String("path", joinPath(path)),
		zap.Strings("species", symbols),
		zap.Int("stage", stage),
		zap.Strings("files", files),
	)
	r.emit(ctx, activity.BuildRateResolvedEvent(activity.RateEventInput{
		QueryID:  uuid.NewString(),
		Quantity: string(q),
		Path:     joinPath(path),
		Species:  symbols,
		Stage:    stage,
		Files:    files,
	}))
}

// emit notifies activity hooks. Hook failures are logged and never change
// the outcome of a query.
func (r *Resolver) emit(ctx context.Context, event activity.Event) {
	if !r.emitter.Enabled() {
		return
	}
	if err := r.emitter.Emit(ctx, event); err != nil {
		r.logger.Warn("activity hook failed", zap.String("verb", event.Verb), zap.Error(err))
	}
}
