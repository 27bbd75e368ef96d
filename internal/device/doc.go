// Package device defines the sensor catalog: the five supported device
// families, their descriptors, and the JSON catalog file they are loaded
// from.
//
// The catalog is loaded once before a collection run starts and is treated
// as immutable input for the run's duration.
package device
