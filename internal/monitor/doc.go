// Package monitor implements the connectivity monitor: the toggleable poll
// loop, the four pieces of connectivity state and the reconnect tone guard.
//
// # Ownership
//
// All state is owned by the goroutine running [Monitor.Run]. Every mutation
// (toggle, probe completion, platform signal, timer tick) is delivered to
// that goroutine over a channel and applied to completion before the next
// one is handled. Readers get copies through [Monitor.State] and the
// OnState callback.
//
// # Scheduling
//
// There is exactly one schedule handle. A probe runs immediately when
// checking is enabled; the next one is scheduled only after the previous
// one completes. A trigger that arrives while a probe is in flight (an
// online/offline signal, or a re-enable) is coalesced into a single
// follow-up probe instead of a second timer or an overlapping request.
//
// Disabling cancels the schedule. A probe already in flight is not aborted;
// its result is still applied but never reschedules.
package monitor
