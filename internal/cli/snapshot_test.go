package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportToStdout(t *testing.T) {
	db := testDB(t)

	_, err := execute(t, "--db", db, "set", "a", "A")
	require.NoError(t, err)
	_, err = execute(t, "--db", db, "set", "b", "B")
	require.NoError(t, err)

	out, err := execute(t, "--db", db, "export")
	require.NoError(t, err)
	// yaml.v3 sorts mapping keys.
	assert.Equal(t, "a: A\nb: B\n", out)
}

func TestImportRoundTrip(t *testing.T) {
	db := testDB(t)
	snapshot := filepath.Join(t.TempDir(), "snapshot.yaml")

	require.NoError(t, os.WriteFile(snapshot, []byte("x: hello\ny: world\n"), 0o644))

	out, err := execute(t, "--db", db, "import", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 keys")

	out, err = execute(t, "--db", db, "get", "x")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	out, err = execute(t, "--db", db, "get", "y")
	require.NoError(t, err)
	assert.Equal(t, "world\n", out)
}

func TestImportMissingFile(t *testing.T) {
	db := testDB(t)

	_, err := execute(t, "--db", db, "import", "/nonexistent/snapshot.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExportImportPreservesStructuredValues(t *testing.T) {
	src := testDB(t)
	dst := testDB(t)
	snapshot := filepath.Join(t.TempDir(), "snapshot.yaml")

	_, err := execute(t, "--db", src, "--json", "set", "cfg", `{"retries":3,"name":"kv"}`)
	require.NoError(t, err)

	_, err = execute(t, "--db", src, "export", "--out", snapshot)
	require.NoError(t, err)

	_, err = execute(t, "--db", dst, "import", snapshot)
	require.NoError(t, err)

	out, err := execute(t, "--db", dst, "--json", "get", "cfg")
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"kv\",\"retries\":3}\n", out)
}
