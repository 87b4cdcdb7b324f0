// Package service implements the dispatch engine: clustering paid orders into
// per-driver batches, splitting delivery revenue between driver and platform,
// and rolling completed batches up into weekly payouts.
package service

import "sort"

// sortedKeys gives map iteration a stable order so grouping, driver fallback
// and "first order in cluster" decisions are deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
