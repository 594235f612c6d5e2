package indexer

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/pyscip/internal/metrics"
	"github.com/phobologic/pyscip/internal/model"
)

func TestIndexProjectRecordsMetrics(t *testing.T) {
	t.Parallel()

	prog := bind(t, map[string]string{
		"a.py":   "x = 1\nprint(x)\n",
		"bad.py": "import os\nos.sep\n",
	})
	m := metrics.New()
	idx, err := IndexProject(context.Background(), prog.Files(), poisoned{Program: prog, path: "bad.py"}, fakeVersions{}, Options{
		Metrics:  m,
		Metadata: model.Metadata{ProjectName: "demo"},
	})
	require.NoError(t, err)

	assert.Equal(t, "demo", idx.Metadata.ProjectName)
	assert.Equal(t, "3.9", idx.Metadata.PythonVersion)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesIndexed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesAborted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Occurrences.WithLabelValues("definition")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Occurrences.WithLabelValues("reference")))
	assert.Equal(t, float64(len(idx.Documents[0].Symbols)), testutil.ToFloat64(m.Symbols))
	assert.Equal(t, 1, testutil.CollectAndCount(m.IndexDuration))
}
