// Package subprocess supervises the bridge service process.
//
// This package spawns the Node.js bridge script as a child process with
// its three standard streams redirected to pipes, serializes writes to
// its stdin, and owns the resulting handles. It implements the
// protocol.Transport interface consumed by the connection layer.
package subprocess
