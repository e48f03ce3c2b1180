// Package events carries account notifications from the identity service to
// whatever sends the emails.
//
// Services emit an Event through an EventEmitter without knowing who handles
// it. AsyncEmitter makes delivery fire-and-forget so a slow or failing
// broker never affects the request that triggered it.
package events
