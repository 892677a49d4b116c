package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/amfiles/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"example.json": `{"bla": 1}`,
		"gains.csv":    "run,gain\n1,2.5\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestListGetAndPath(t *testing.T) {
	testlog.Start(t)

	dir := seedDataDir(t)

	out, err := execute(t, "list", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "example.json\ngains.csv\n", out)

	out, err = execute(t, "get", "example.json", "--data-dir", dir, "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, `"bla": 1`)

	out, err = execute(t, "path", "gains.csv", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gains.csv"), strings.TrimSpace(out))

	_, err = execute(t, "get", "absent.json", "--data-dir", dir)
	assert.Error(t, err)
}

func TestGetFallsBackToRemote(t *testing.T) {
	testlog.Start(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/master/mirror.yaml" {
			_, _ = w.Write([]byte("gain: 3\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := seedDataDir(t)
	out, err := execute(t, "get", "mirror.yaml", "--data-dir", dir, "--remote-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `"gain": 3`)

	_, err = execute(t, "get", "mirror.yaml", "--data-dir", dir, "--remote-url", srv.URL, "--offline")
	assert.Error(t, err, "offline lookup must not reach the mirror")
}

func TestInitConfig(t *testing.T) {
	testlog.Start(t)

	target := filepath.Join(t.TempDir(), "corrcheck.toml")
	_, err := execute(t, "init-config", "--output", target)
	require.NoError(t, err)
	_, err = execute(t, "init-config", "--output", target)
	require.Error(t, err, "existing config must not be overwritten")
	_, err = execute(t, "list", "--config", target, "--data-dir", t.TempDir())
	require.NoError(t, err)
}
