package deckbuild

import (
	"fmt"
	"sort"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/synergy"
)

// CommunitiesBuild builds a deck for one color assignment:
//
//  1. Split the cards into modularity communities.
//  2. Repeatedly add the whole community with the best ratio of edges added
//     to cards added until the build has at least target nonlands. With a
//     splash, start from every nonland fixer for the colors.
//  3. Cut the least central card until exactly target nonlands remain.
//  4. Swap leftover cards for the worst cards in the build while that adds
//     synergy.
//  5. With a splash, swap splashed cards for non-splashed leftovers until
//     the fixers can support them.
//  6. Append the fixing lands that fit the colors actually played.
func CommunitiesBuild(g *synergy.Graph, a Attempt, target int, opts Options) (*Build, error) {
	pool := g.Nodes()
	if n := cube.CountNonlands(pool); n < target {
		return nil, fmt.Errorf("%w: %d of %d nonlands", ErrNotEnoughCards, n, target)
	}

	colors := a.Colors()
	var nonlandFixers, landFixers []*cube.Card
	for _, c := range pool {
		if !fixerFor(c, colors) || splashed(c, a.Splash) {
			continue
		}
		if c.IsLand() {
			landFixers = append(landFixers, c)
		} else {
			nonlandFixers = append(nonlandFixers, c)
		}
	}

	var build []*cube.Card
	if a.Splash != 0 {
		build = append(build, nonlandFixers...)
	}

	build, err := growCommunities(g, build, target)
	if err != nil {
		return nil, err
	}
	core := cube.Names(build)

	build = trimLeastCentral(g, build, target)

	leftovers := cube.Without(pool, build)
	for {
		swap, ok := findBestSwap(g, build, leftovers, nil)
		if !ok || swap.improvement <= 0 {
			break
		}
		build = swap.apply(build)
		leftovers = cube.Without(leftovers, []*cube.Card{swap.add})
	}
	leftovers = cube.Without(pool, build)

	if a.Splash != 0 {
		fixers := len(landFixers)
		for _, c := range nonlandFixers {
			if cube.Contains(build, c) {
				fixers++
			}
		}
		allowed := fixers - opts.SplashFixerAllowance
		if allowed < 0 {
			allowed = 0
		}

		var splashCards []*cube.Card
		for _, c := range build {
			if splashed(c, a.Splash) {
				splashCards = append(splashCards, c)
			}
		}
		for len(splashCards) > allowed {
			var nonsplash []*cube.Card
			for _, c := range leftovers {
				if !splashed(c, a.Splash) {
					nonsplash = append(nonsplash, c)
				}
			}
			swap, ok := findBestSwap(g, build, nonsplash, splashCards)
			if !ok {
				return nil, fmt.Errorf("%w: %d splashed cards, %d allowed", ErrSplashUnsupported, len(splashCards), allowed)
			}
			build = swap.apply(build)
			splashCards = cube.Without(splashCards, []*cube.Card{swap.remove})
			leftovers = cube.Without(leftovers, []*cube.Card{swap.add})
		}
	}

	played := cube.CostColorsOf(build)
	var lands []*cube.Card
	for _, c := range landFixers {
		if fixerFor(c, played) && !cube.Contains(build, c) {
			lands = append(lands, c)
		}
	}

	result := &Build{FixerLands: lands}
	isCore := make(map[string]bool, len(core))
	for _, name := range core {
		isCore[name] = true
	}
	for _, c := range build {
		if isCore[c.Name] {
			result.Core = append(result.Core, c)
		} else {
			result.Filler = append(result.Filler, c)
		}
	}
	result.Cards = append(append(append(result.Cards, result.Core...), result.Filler...), lands...)
	return result, nil
}

type scoredCommunity struct {
	members []*cube.Card
	score   float64
}

// growCommunities adds whole communities to build, best edges-per-card
// first, until it has target nonlands. Cards already in build are skipped.
// Candidates are the top communities in density order followed by every
// card they leave out as a singleton, so untagged playables can still fill
// the target. Equal ratios go to the earlier candidate.
func growCommunities(g *synergy.Graph, build []*cube.Card, target int) ([]*cube.Card, error) {
	communities := growthCandidates(g)

	for cube.CountNonlands(build) < target {
		base := g.Subgraph(build).EdgeCount()

		scored := make([]scoredCommunity, 0, len(communities))
		for _, community := range communities {
			members := cube.Without(community, build)
			if len(members) == 0 {
				continue
			}
			withMembers := append(append([]*cube.Card(nil), build...), members...)
			added := g.Subgraph(withMembers).EdgeCount() - base
			scored = append(scored, scoredCommunity{
				members: members,
				score:   float64(added) / float64(len(members)),
			})
		}
		if len(scored) == 0 {
			return nil, fmt.Errorf("%w: %d of %d nonlands", ErrNoCommunityCore, cube.CountNonlands(build), target)
		}

		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].score > scored[j].score
		})
		build = append(build, scored[0].members...)

		communities = communities[:0:0]
		for _, s := range scored[1:] {
			communities = append(communities, s.members)
		}
	}
	return build, nil
}

func growthCandidates(g *synergy.Graph) [][]*cube.Card {
	var candidates [][]*cube.Card
	grouped := make(map[string]bool)
	for _, community := range synergy.TopCommunities(g) {
		candidates = append(candidates, community.Members)
		for _, c := range community.Members {
			grouped[c.Name] = true
		}
	}
	for _, c := range g.Nodes() {
		if !grouped[c.Name] {
			candidates = append(candidates, []*cube.Card{c})
		}
	}
	return candidates
}

// trimLeastCentral removes the least central card, recomputing centrality
// after each removal, until build has target nonlands.
func trimLeastCentral(g *synergy.Graph, build []*cube.Card, target int) []*cube.Card {
	for cube.CountNonlands(build) > target {
		centralities := synergy.SortedCentralities(g.Subgraph(build))
		least := centralities[len(centralities)-1].Card
		build = cube.Without(build, []*cube.Card{least})
	}
	return build
}

type cardSwap struct {
	remove      *cube.Card
	add         *cube.Card
	improvement int
}

func (s cardSwap) apply(build []*cube.Card) []*cube.Card {
	return append(cube.Without(build, []*cube.Card{s.remove}), s.add)
}

// findBestSwap pairs each nonland add candidate with the lowest-degree
// nonland removal candidate (the whole build if none are given) and returns
// the pair with the largest degree improvement. ok is false when no pair
// exists.
func findBestSwap(g *synergy.Graph, build, toAdd, toRemove []*cube.Card) (swap cardSwap, ok bool) {
	if len(toRemove) == 0 {
		toRemove = build
	}
	removals := cube.Nonlands(toRemove)

	for _, card := range cube.Nonlands(toAdd) {
		withCard := append(append([]*cube.Card(nil), build...), card)
		sub := g.Subgraph(withCard)

		var worst *cube.Card
		worstDegree := 0
		for _, r := range removals {
			if !cube.Contains(withCard, r) {
				continue
			}
			if d := sub.Degree(r); worst == nil || d < worstDegree {
				worst, worstDegree = r, d
			}
		}
		if worst == nil {
			continue
		}

		improvement := sub.Degree(card) - worstDegree
		if !ok || improvement > swap.improvement {
			swap = cardSwap{remove: worst, add: card, improvement: improvement}
			ok = true
		}
	}
	return swap, ok
}
