// Package decoder converts raw device payloads into engineering-unit
// readings.
//
// Each device family has a fixed big-endian binary layout (Theta is the
// exception: it transmits ASCII text). Scaling constants are taken from the
// firmware documentation and must not be "simplified": the rain-tip factor,
// the VWC calibration pair and the -777 no-sensor sentinel are what the
// hardware actually emits.
//
// Decoding is pure: the same payload always yields the same reading, and a
// malformed payload yields a *DecodeError.
package decoder
