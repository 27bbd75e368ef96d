// Package fetcher implements the history-collection control loop.
//
// For one device the loop resolves the overall time bounds, then pages
// through the backend in time-windowed batches: decode each record,
// normalize its timestamp, assemble it, advance the cursor past the last
// record seen. Every failure class degrades into a skip (bad record) or a
// skip-ahead (bad batch) rather than aborting: completeness of the run is
// favored over fail-fast behavior. A hard batch cap guarantees termination
// even against a backend that never stops returning data.
package fetcher
