// Package api provides the client for the SEPA telemetry backend.
//
// The backend exposes two GET endpoints on separate API gateways:
//   - date bounds: overall first/last record timestamps for a device
//   - data fetch: one time-windowed batch of raw telemetry records
//
// Both take a "device" (EUI) parameter; HydroRanger and Theta queries must
// also carry a "type" discriminator because the backend stores those
// families in shared tables. Neither endpoint requires authentication.
package api
