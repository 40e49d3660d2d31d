package testutil

import (
	"itemsync/internal/sync/usecase"
)

// DefaultPartition is the partition used across fixtures.
const DefaultPartition = "tenant-1"

// ValidAttributes returns the minimal attribute payload that passes
// validation: both cross-link identifiers and a UPC code.
func ValidAttributes() map[string]interface{} {
	return map[string]interface{}{
		"upcCode":      "012345678905",
		"crossLinkIdA": 101,
		"crossLinkIdB": 202,
	}
}

// UpsertRequestFixture builds a valid request for the given natural key.
func UpsertRequestFixture(naturalKey string) usecase.UpsertRequest {
	return usecase.UpsertRequest{
		Partition:  DefaultPartition,
		NaturalKey: naturalKey,
		Attributes: ValidAttributes(),
	}
}
