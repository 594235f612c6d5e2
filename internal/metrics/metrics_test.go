package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentsAreIsolated(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.FilesIndexed.Inc()
	a.Occurrences.WithLabelValues("definition").Add(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.FilesIndexed))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FilesIndexed))
	assert.Equal(t, 3.0, testutil.ToFloat64(a.Occurrences.WithLabelValues("definition")))
}

func TestObserveFileNilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveFile(time.Second) })
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.FilesAborted.Inc()
	m.ObserveFile(20 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "pyscip.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pyscip_files_aborted_total 1")
	assert.Contains(t, string(data), "pyscip_index_file_seconds_count 1")
}
