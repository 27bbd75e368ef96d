// Package record defines the canonical telemetry record handed to sinks
// and the assembler that builds it from a raw envelope, a decoded reading
// and a device descriptor.
package record
