package service

import "strings"

const zoneOnlyAddress = "zone-only"

// ClusterKey derives the grouping key for an order: zone plus the normalized
// delivery address (lower-cased, whitespace collapsed, trimmed). Orders with
// no usable address cluster by zone alone. Textual equality only, no
// geographic matching.
func ClusterKey(zone, address string) string {
	addr := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	if addr == "" {
		addr = zoneOnlyAddress
	}
	return zone + "::" + addr
}
