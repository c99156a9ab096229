// Package draftlog records every pack and pick of a draft as TOML and reads
// the record back into drafted pools.
package draftlog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/draft"
)

// Log is a whole draft:
//
//	[draft_info]
//	num_drafters = 6
//	num_phases = 3
//	cards_per_pack = 15
//
//	[[full_draft]]
//	drafter = 0
//	picks = [{pack = ["A", "B"], pick = "A"}, ...]
type Log struct {
	Info     draft.Info   `toml:"draft_info"`
	Drafters []DrafterLog `toml:"full_draft"`
}

// DrafterLog is one seat's picks in order.
type DrafterLog struct {
	Drafter int    `toml:"drafter"`
	Picks   []Pick `toml:"picks"`
}

// Pick is the pack a drafter saw and the card taken from it.
type Pick struct {
	Pack []string `toml:"pack"`
	Pick string   `toml:"pick"`
}

// Owned returns the picked card names in pick order.
func (d DrafterLog) Owned() []string {
	names := make([]string, len(d.Picks))
	for i, p := range d.Picks {
		names[i] = p.Pick
	}
	return names
}

// FromDrafters builds a log from finished drafters.
func FromDrafters(info draft.Info, drafters []*draft.Drafter) *Log {
	log := &Log{Info: info, Drafters: make([]DrafterLog, 0, len(drafters))}
	for i, d := range drafters {
		owned := d.Owned()
		history := d.PackHistory()
		picks := make([]Pick, 0, len(owned))
		for j, card := range owned {
			picks = append(picks, Pick{Pack: cube.Names(history[j]), Pick: card.Name})
		}
		log.Drafters = append(log.Drafters, DrafterLog{Drafter: i, Picks: picks})
	}
	return log
}

// Marshal encodes the log as TOML.
func (l *Log) Marshal() ([]byte, error) {
	data, err := toml.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal draft log: %w", err)
	}
	return data, nil
}

// Dumps encodes the draft of drafters as TOML.
func Dumps(info draft.Info, drafters []*draft.Drafter) ([]byte, error) {
	return FromDrafters(info, drafters).Marshal()
}

// Write saves the draft of drafters to path, creating its directory.
func Write(path string, info draft.Info, drafters []*draft.Drafter) error {
	data, err := Dumps(info, drafters)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create draft log directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write draft log: %w", err)
	}
	return nil
}

// Parse decodes a TOML draft log. It rejects logs without drafters, with a
// drafter count that disagrees with draft_info, or with a pick that is not
// in its pack.
func Parse(data []byte) (*Log, error) {
	var log Log
	if err := toml.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parse draft log: %w", err)
	}
	if len(log.Drafters) == 0 {
		return nil, fmt.Errorf("draft log has no drafters")
	}
	if log.Info.Seats > 0 && len(log.Drafters) != log.Info.Seats {
		return nil, fmt.Errorf("draft log has %d drafters, want %d", len(log.Drafters), log.Info.Seats)
	}
	for _, d := range log.Drafters {
		for i, p := range d.Picks {
			if !containsName(p.Pack, p.Pick) {
				return nil, fmt.Errorf("drafter %d pick %d: %q not in pack", d.Drafter, i, p.Pick)
			}
		}
	}
	return &log, nil
}

// Load reads a draft log file.
func Load(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft log: %w", err)
	}
	return Parse(data)
}

// Pools resolves each drafter's picks against cards, in drafter order.
func (l *Log) Pools(cards []*cube.Card) ([][]*cube.Card, error) {
	byName := cube.ByName(cards)
	pools := make([][]*cube.Card, len(l.Drafters))
	for i, d := range l.Drafters {
		pool := make([]*cube.Card, 0, len(d.Picks))
		for _, name := range d.Owned() {
			card, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("drafter %d: unknown card %q", d.Drafter, name)
			}
			pool = append(pool, card)
		}
		pools[i] = pool
	}
	return pools, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
