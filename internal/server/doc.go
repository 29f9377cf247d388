// Package server assembles a mymanager process.
//
// New opens the configured store and wires the storage adapter, the mock
// data generator, the remote facade (remote mode only), the web UI and the
// JSON API onto one HTTP mux next to /health and /health/ready. Run serves
// until its context ends, on a TCP address or as a tailnet node, then shuts
// down within ShutdownTimeout.
package server
