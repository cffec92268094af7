// Package metrics measures synthesized controllers: the closed-loop
// spectrum of a design and prometheus counters over synthesis requests.
package metrics
