// Package protocol implements request/response correlation with the bridge
// service over line-delimited JSON.
//
// The package provides a Conn that owns the two background reader
// goroutines (stdout demultiplexer and stderr relay), the pending-request
// registry keyed by correlation id, and the readiness gate set by the
// bridge's one-time "ready" event.
//
// Three frame shapes travel on the wire, distinguished by best-effort
// structural parsing with the response shape tried first:
//
//	{"id":1,"method":"listProviders","params":{}}      request (out)
//	{"id":1,"result":{...}}                            response (in)
//	{"event":"message","data":{...}}                   event (in)
//
// Example usage:
//
//	proc, _ := subprocess.Spawn(log, nodePath, scriptPath, workDir)
//	conn := protocol.NewConn(log, proc, sink)
//	conn.Start()
//	if !conn.WaitReady(5 * time.Second) {
//		log.Warn("bridge not ready, continuing anyway")
//	}
//	result, err := conn.Call(ctx, "listProviders", map[string]any{})
package protocol
