// Package bridge provides a Go host for the provider bridge service.
//
// Desktop applications delegate AI-provider session management,
// authentication, and message streaming to a separate long-running bridge
// process. This package turns that child process's standard input/output
// pipes into a reliable, concurrent request/response channel with an
// independent out-of-band event stream.
//
// # Basic Usage
//
//	sink := bridge.NewDispatcher(log)
//
//	client, err := bridge.New(
//		bridge.WithLogger(log),
//		bridge.WithEventSink(sink),
//	)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	providers, err := client.ListProviders(ctx)
//
// # Streaming Output
//
// Provider output arrives out-of-band as events, not as responses. Attach
// a Dispatcher and subscribe:
//
//	token, events := sink.Subscribe()
//	defer sink.Unsubscribe(token)
//
//	_, err = client.SendMessage(ctx, "default", "hello")
//	for evt := range events {
//		// evt.Channel == bridge.MessageStreamChannel
//		fmt.Printf("%s\n", evt.Data)
//	}
//
// # Semantics
//
// Requests are correlated to responses solely by id; no ordering is
// guaranteed between distinct in-flight requests. Individual requests
// carry no timeout, so pass a context you control. When the bridge
// process dies, the transport notices via stdout EOF and subsequent
// calls fail fast with ErrNotRunning; the client never restarts the
// process on its own.
package bridge
