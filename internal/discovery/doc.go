// Package discovery locates the bridge service script.
//
// Discovery checks an explicit configured path, then the packaged resource
// location next to the running executable, then searches upward from the
// current working directory through a bounded number of ancestors for the
// fixed relative path dist/bridge/provider-bridge.js.
package discovery
