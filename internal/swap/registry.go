// Package swap classifies raw transactions as DEX swaps and derives the
// wallet-perspective token flows from balance snapshots.
package swap

import (
	"sort"
	"strings"

	"solana-wallet-profiler/internal/domain"
)

// Registry maps DEX program ids to protocol names. Program ids are kept in
// sorted order so log scanning attributes the same protocol on every run.
type Registry struct {
	programs map[string]string
	ids      []string
}

// NewRegistry creates a registry from a program-id -> protocol-name map.
func NewRegistry(programs map[string]string) *Registry {
	r := &Registry{
		programs: make(map[string]string, len(programs)),
		ids:      make([]string, 0, len(programs)),
	}
	for id, name := range programs {
		r.programs[id] = name
		r.ids = append(r.ids, id)
	}
	sort.Strings(r.ids)
	return r
}

// Lookup returns the protocol name for a program id.
func (r *Registry) Lookup(programID string) (string, bool) {
	name, ok := r.programs[programID]
	return name, ok
}

// Classify reports whether the transaction touched a known DEX program and
// which protocol it was. Instruction program ids are checked first; when none
// match, log messages are scanned for a program id substring. The first match
// wins.
func (r *Registry) Classify(tx *domain.RawTransaction) (string, bool) {
	for _, ins := range tx.Instructions {
		if name, ok := r.programs[ins.ProgramID]; ok {
			return name, true
		}
	}
	for _, log := range tx.LogMessages {
		for _, id := range r.ids {
			if strings.Contains(log, id) {
				return r.programs[id], true
			}
		}
	}
	return "", false
}
