// Package store keeps the live connectivity state for the web widget.
//
// It holds the latest [Snapshot] plus a bounded ring of recent [Check]
// results and fans out every change as an [Event] to subscribers (the SSE
// and websocket handlers).
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Snapshot], [Check], [Event]: JSON representations served by the API
//
// Subscribers receive events via buffered channels with non-blocking sends;
// a slow subscriber misses events rather than blocking the monitor.
//
// Nothing is persisted: history lives only as long as the process.
package store
