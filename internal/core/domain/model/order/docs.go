// Package order implements the Order aggregate root and its status state
// machine. An order owns an append-only status history, at most one active
// driver assignment with the agent's reported position trail, and the
// delivery details (destination, schedule, ETA, attempt count) that routing
// and live tracking operate on.
//
// Status transitions go exclusively through Order.UpdateStatus, which appends
// to the history before overwriting the current status. The machine permits
// any transition between non-terminal statuses; terminal statuses
// (delivered, cancelled, refunded, returned) are final.
package order
