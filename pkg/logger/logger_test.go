package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesLogDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	l, err := New(path, "info")
	require.NoError(t, err)
	defer l.Close()

	l.Info("started")
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNew_StdoutOnly(t *testing.T) {
	l, err := New("", "info")
	require.NoError(t, err)
	defer l.Close()
	assert.Nil(t, l.file)
}
