// Package deckbuild turns a drafted pool into a deck that maximizes synergy
// edges. Every main-color pair, with and without a splash, is built from
// synergy communities, and the build with the most edges wins.
package deckbuild

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/logger"
	"github.com/ramonehamilton/cube-drafter/internal/synergy"
)

var (
	// ErrNotEnoughCards means a color assignment has too few nonlands.
	ErrNotEnoughCards = errors.New("not enough cards")

	// ErrSplashUnsupported means the splash needs more fixing than the pool has.
	ErrSplashUnsupported = errors.New("not enough fixers to support splash")

	// ErrNoCommunityCore means community growth ran out of cards before
	// reaching the target.
	ErrNoCommunityCore = errors.New("communities do not cover the target")

	// ErrNoBuild means every color assignment failed.
	ErrNoBuild = errors.New("no build found")
)

// ComboError wraps the failure of a single color assignment.
type ComboError struct {
	Main   cube.ColorSet
	Splash cube.ColorSet
	Err    error
}

func (e *ComboError) Error() string {
	return fmt.Sprintf("build %s: %v", Attempt{Main: e.Main, Splash: e.Splash}, e.Err)
}

func (e *ComboError) Unwrap() error {
	return e.Err
}

// recoverable reports whether err only rules out one color assignment.
func recoverable(err error) bool {
	return errors.Is(err, ErrNotEnoughCards) ||
		errors.Is(err, ErrSplashUnsupported) ||
		errors.Is(err, ErrNoCommunityCore)
}

const (
	DefaultNonlands             = 23
	DefaultSplashFixerAllowance = 4
)

// BuildFunc builds a deck for one color assignment from the graph of the
// relevant cards. target is the number of nonlands to include.
type BuildFunc func(g *synergy.Graph, a Attempt, target int, opts Options) (*Build, error)

// Options configures a Builder.
type Options struct {
	// Nonlands is the target nonland count; smaller pools build with as
	// many nonlands as their best color assignment offers.
	Nonlands int

	// SplashFixerAllowance is subtracted from the number of fixers to get
	// the number of splashed cards allowed.
	SplashFixerAllowance int

	// BuildFunc overrides the per-assignment build. Defaults to CommunitiesBuild.
	BuildFunc BuildFunc

	Logger *logger.Logger
}

// DefaultOptions returns the standard 23-nonland configuration.
func DefaultOptions() Options {
	return Options{
		Nonlands:             DefaultNonlands,
		SplashFixerAllowance: DefaultSplashFixerAllowance,
	}
}

// Build is a finished deck.
type Build struct {
	Main   cube.ColorSet
	Splash cube.ColorSet

	// Cards is the whole deck: Core, then Filler, then FixerLands.
	Cards []*cube.Card
	// Core holds the cards chosen by community growth that survived.
	Core []*cube.Card
	// Filler holds the cards swapped in during refinement.
	Filler []*cube.Card
	// FixerLands holds the lands appended for the final color footprint.
	FixerLands []*cube.Card

	// Edges counts synergy edges among Cards in the whole pool's graph.
	Edges int

	// Attempts and Failures count the color assignments tried and failed
	// while searching for this build.
	Attempts int
	Failures int
}

// Colors returns main and splash colors together.
func (b *Build) Colors() cube.ColorSet {
	return b.Main.Union(b.Splash)
}

// Nonlands returns the number of nonland cards in the deck.
func (b *Build) Nonlands() int {
	return cube.CountNonlands(b.Cards)
}

// Sideboard returns the pool cards that did not make the deck.
func (b *Build) Sideboard(pool []*cube.Card) []*cube.Card {
	return cube.Without(pool, b.Cards)
}

// Builder searches color assignments for the best build.
type Builder struct {
	opts Options
}

// NewBuilder creates a builder, filling zero options with defaults.
func NewBuilder(opts Options) *Builder {
	if opts.Nonlands <= 0 {
		opts.Nonlands = DefaultNonlands
	}
	if opts.SplashFixerAllowance < 0 {
		opts.SplashFixerAllowance = DefaultSplashFixerAllowance
	}
	if opts.BuildFunc == nil {
		opts.BuildFunc = CommunitiesBuild
	}
	return &Builder{opts: opts}
}

// Best tries every color assignment and returns the build with the most
// synergy edges in the pool's graph. The first of equally good builds wins.
func (b *Builder) Best(pool []*cube.Card) (*Build, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: empty pool", ErrNoBuild)
	}
	full, err := synergy.CreateGraph(pool, synergy.KeepIsolated())
	if err != nil {
		return nil, fmt.Errorf("build pool graph: %w", err)
	}

	attempts := Attempts()
	relevant := make([][]*cube.Card, len(attempts))
	for i, a := range attempts {
		relevant[i] = relevantCards(pool, a)
	}

	tried, failures := 0, 0
	for _, target := range b.targets(relevant) {
		var best *Build
		for i, a := range attempts {
			tried++
			build, err := b.attempt(full, relevant[i], a, target)
			if err != nil {
				if !recoverable(err) {
					return nil, err
				}
				failures++
				b.opts.Logger.Debug("Failed to build %s, continuing: %v", a, err)
				continue
			}
			if best == nil || build.Edges > best.Edges {
				best = build
			}
		}

		if best != nil {
			best.Attempts = tried
			best.Failures = failures
			b.opts.Logger.Debug("Best build %s: %d nonlands, %d edges", Attempt{Main: best.Main, Splash: best.Splash}, best.Nonlands(), best.Edges)
			return best, nil
		}
		b.opts.Logger.Debug("No build with %d nonlands, lowering target", target)
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrNoBuild, tried)
}

// targets returns the nonland counts to try, largest first: the configured
// count, or, for small pools, each count some color assignment can reach.
func (b *Builder) targets(relevant [][]*cube.Card) []int {
	seen := make(map[int]bool)
	var targets []int
	for _, cards := range relevant {
		n := cube.CountNonlands(cards)
		if n > b.opts.Nonlands {
			n = b.opts.Nonlands
		}
		if n > 0 && !seen[n] {
			seen[n] = true
			targets = append(targets, n)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(targets)))
	return targets
}

func (b *Builder) attempt(full *synergy.Graph, relevant []*cube.Card, a Attempt, target int) (*Build, error) {
	if n := cube.CountNonlands(relevant); n < target {
		return nil, &ComboError{Main: a.Main, Splash: a.Splash, Err: fmt.Errorf("%w: %d of %d nonlands", ErrNotEnoughCards, n, target)}
	}

	build, err := b.opts.BuildFunc(full.Subgraph(relevant), a, target, b.opts)
	if err != nil {
		return nil, &ComboError{Main: a.Main, Splash: a.Splash, Err: err}
	}
	build.Main = a.Main
	build.Splash = a.Splash
	build.Edges = full.Subgraph(build.Cards).EdgeCount()
	return build, nil
}

// BestTwoColorSynergyBuild builds pool with default options and returns the
// deck's cards.
func BestTwoColorSynergyBuild(pool []*cube.Card) ([]*cube.Card, error) {
	build, err := NewBuilder(DefaultOptions()).Best(pool)
	if err != nil {
		return nil, err
	}
	return build.Cards, nil
}
