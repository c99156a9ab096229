package picker

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/draft"
	"github.com/ramonehamilton/cube-drafter/internal/logger"
	"github.com/ramonehamilton/cube-drafter/internal/synergy"
)

// Strategy names a picker preset.
type Strategy string

const (
	StrategySynergyPowerFixing Strategy = "synergy-power-fixing"
	StrategyPowerFixing        Strategy = "power-fixing"
	StrategyGreedySynergy      Strategy = "greedy-synergy"
	StrategyRandom             Strategy = "random"
)

// Strategies lists every preset.
var Strategies = []Strategy{
	StrategySynergyPowerFixing,
	StrategyPowerFixing,
	StrategyGreedySynergy,
	StrategyRandom,
}

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	for _, strategy := range Strategies {
		if string(strategy) == s {
			return strategy, nil
		}
	}
	names := make([]string, len(Strategies))
	for i, strategy := range Strategies {
		names[i] = string(strategy)
	}
	return "", fmt.Errorf("unknown picker strategy %q (want one of %s)", s, strings.Join(names, ", "))
}

// Factory owns the precomputed state derived from a reference cube and
// creates pickers that share it. The shared state is never written after
// NewFactory returns, so pickers from one factory may run concurrently.
type Factory struct {
	strategy     Strategy
	neighbors    *synergy.CommonNeighbors
	centralities map[string]float64
	weights      map[string]WeightFunc
	logger       *logger.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithStrategy selects the preset used by Create.
func WithStrategy(s Strategy) FactoryOption {
	return func(f *Factory) {
		f.strategy = s
	}
}

// WithWeights overrides the weight of named components.
func WithWeights(weights map[string]WeightFunc) FactoryOption {
	return func(f *Factory) {
		for name, w := range weights {
			f.weights[name] = w
		}
	}
}

// WithLogger sets the logger handed to created pickers.
func WithLogger(log *logger.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = log
	}
}

// NewFactory precomputes the common-neighbor index and the default
// centralities of cards.
func NewFactory(cards []*cube.Card, opts ...FactoryOption) (*Factory, error) {
	f := &Factory{
		strategy: StrategySynergyPowerFixing,
		weights:  make(map[string]WeightFunc),
	}
	for _, opt := range opts {
		opt(f)
	}
	if _, err := ParseStrategy(string(f.strategy)); err != nil {
		return nil, err
	}
	for name := range f.weights {
		if !IsComponentName(name) {
			return nil, fmt.Errorf("unknown rating component %q", name)
		}
	}

	neighbors, err := synergy.AllCommonNeighbors(cards)
	if err != nil {
		return nil, fmt.Errorf("compute common neighbors: %w", err)
	}
	g, err := synergy.CreateGraph(cards)
	if err != nil {
		return nil, fmt.Errorf("build cube graph: %w", err)
	}

	f.neighbors = neighbors
	f.centralities = synergy.EigenvectorCentrality(g)
	return f, nil
}

// Strategy returns the preset used by Create.
func (f *Factory) Strategy() Strategy {
	return f.strategy
}

// CommonNeighbors returns the shared common-neighbor index.
func (f *Factory) CommonNeighbors() *synergy.CommonNeighbors {
	return f.neighbors
}

// Centralities returns the cube centrality of every card with synergy edges.
// The map is shared and must not be modified.
func (f *Factory) Centralities() map[string]float64 {
	return f.centralities
}

// Components returns the components of a preset with weight overrides
// applied. The random strategy has none.
func (f *Factory) Components(s Strategy) []Component {
	var components []Component
	switch s {
	case StrategySynergyPowerFixing:
		components = []Component{
			CardsOwnedPower(),
			PowerDelta(),
			CardsOwnedSynergy(),
			SynergyDelta(),
			CommonNeighbors(f.neighbors),
			LandFixing(),
		}
	case StrategyPowerFixing:
		components = []Component{
			CardsOwnedPower(),
			PowerDelta(),
			LandFixing(),
		}
	case StrategyGreedySynergy:
		components = []Component{
			CardsOwnedSynergy(),
			SynergyDelta(),
			CommonNeighbors(f.neighbors),
			CubeCentrality(f.centralities),
		}
	}

	for i, c := range components {
		if w, ok := f.weights[c.Name]; ok {
			components[i] = c.WithWeight(w)
		}
	}
	return components
}

// Create returns a new picker seeded with seed.
func (f *Factory) Create(seed int64) draft.Picker {
	rng := rand.New(rand.NewSource(seed))
	if f.strategy == StrategyRandom {
		return NewRandomPicker(rng)
	}
	return NewRatingsPicker(f.Components(f.strategy), rng, f.logger)
}

// ComponentNames lists every known component.
func ComponentNames() []string {
	names := []string{
		CardsOwnedPowerName,
		PowerDeltaName,
		CardsOwnedSynergyName,
		SynergyDeltaName,
		CommonNeighborsName,
		LandFixingName,
		CubeCentralityName,
	}
	sort.Strings(names)
	return names
}

// IsComponentName reports whether name is a known component.
func IsComponentName(name string) bool {
	for _, n := range ComponentNames() {
		if n == name {
			return true
		}
	}
	return false
}
