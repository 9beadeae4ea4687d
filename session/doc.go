// Package session keeps a per-caller chat: the selected model and an owned
// conversation that grows by one user and one assistant message per
// successful exchange.
package session
