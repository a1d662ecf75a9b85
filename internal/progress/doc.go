// Package progress publishes per-file batch events. The default Reporter
// writes them to the context logger; SocketIO forwards them to a socket.io
// namespace so a dashboard can follow long render batches.
package progress
