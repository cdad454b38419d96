// Package probe provides the two reachability primitives used by the
// connectivity monitor.
//
// The main components are:
//
//   - [Client]: best-effort HTTP liveness probe against a well-known URL
//   - [Interfaces]: the local network-presence signal derived from the
//     host's network interfaces
//
// Neither component interprets response content. A probe that receives any
// HTTP response counts as reachable; every transport error counts as
// unreachable.
package probe
