package bridge

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBridgeScript is a /bin/sh stand-in for the Node.js bridge: it
// announces readiness, answers the first request with a provider list,
// the second with an error, and then idles until killed.
const fakeBridgeScript = `
echo '{"event":"ready","data":{}}'
echo 'bridge online' >&2
read line
echo '{"id":1,"result":{"providers":["codex","claude","gemini"]}}'
read line
echo '{"id":2,"error":"invalid profile"}'
read line
`

// silentBridgeScript never sends the ready event.
const silentBridgeScript = `
sleep 30
`

func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "provider-bridge.js")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func newTestClient(t *testing.T, script string, extra ...Option) *Client {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("test drives a /bin/sh stand-in for the bridge")
	}

	opts := append([]Option{
		WithScriptPath(writeScript(t, script)),
		WithNodePath("/bin/sh"),
		WithWorkingDir(t.TempDir()),
	}, extra...)

	client, err := New(opts...)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestClient_EndToEnd(t *testing.T) {
	client := newTestClient(t, fakeBridgeScript)

	require.True(t, client.Alive())

	ctx := context.Background()

	result, err := client.ListProviders(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `{"providers":["codex","claude","gemini"]}`, string(result))

	_, err = client.SwitchProfile(ctx, "bogus")
	require.Error(t, err)
	require.Equal(t, "invalid profile", err.Error())
}

func TestClient_ReadinessTimeoutIsSoftFailure(t *testing.T) {
	start := time.Now()

	// The silent bridge never says ready: construction logs a warning
	// and still returns a usable client rather than hanging startup.
	client := newTestClient(t, silentBridgeScript, WithReadyTimeout(300*time.Millisecond))

	require.Less(t, time.Since(start), 5*time.Second)
	require.False(t, client.Alive())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.ListProviders(ctx)
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	client := newTestClient(t, fakeBridgeScript)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	require.False(t, client.Alive())
}

func TestClient_DeadProcessFailsFast(t *testing.T) {
	// The bridge dies right after announcing readiness.
	client := newTestClient(t, `echo '{"event":"ready","data":{}}'`)

	// EOF on stdout drops the input handle; the next call fails fast.
	require.Eventually(t, func() bool {
		return !client.Alive()
	}, 5*time.Second, 20*time.Millisecond)

	_, err := client.ListProviders(context.Background())
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestClient_ScriptNotFound(t *testing.T) {
	_, err := New(WithScriptPath(filepath.Join(t.TempDir(), "missing.js")))

	var notFound *ServiceNotFoundError

	require.ErrorAs(t, err, &notFound)
}
