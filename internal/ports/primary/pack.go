package primary

import "context"

// PackService moves cache and session-memory contents between machines as
// checksummed pack directories or zip archives.
type PackService interface {
	// ExportCachePack writes a cache-derived pack (audit events + derived
	// state snapshot + canonical hash). Empty destination stages under the
	// runtime pack cache. Returns the pack location.
	ExportCachePack(ctx context.Context, destination string) (string, error)

	// ImportCachePack appends audit events from the pack and reconciles
	// derived state from the local canonical documents. The pack's canonical
	// hash is compared against the current one only to report whether its
	// derived snapshot was compatible. Returns a human-readable result.
	ImportCachePack(ctx context.Context, source string) (string, error)

	// ExportSessionPack writes a session-memory pack, optionally filtered
	// to the given namespaces. Returns the pack location.
	ExportSessionPack(ctx context.Context, destination string, namespaces []string) (string, error)

	// ImportSessionPack appends all rows from the pack and returns
	// per-table imported counts. Either every row is written or none.
	ImportSessionPack(ctx context.Context, source string) (map[string]int, error)
}
