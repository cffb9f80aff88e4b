package metrics

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2quake/vtree/internal/backend/memory"
	"github.com/s2quake/vtree/pkg/vtree"
)

func fileRef(h vtree.Handle, path string) vtree.NodeRef {
	return vtree.NodeRef{Handle: h, Kind: vtree.KindFile, Path: path}
}

func TestInstrument_CountsOperations(t *testing.T) {
	rec := NewRecorder()
	b := rec.Instrument(memory.New(memory.Config{}))
	assert.Equal(t, memory.Kind, b.Kind())

	_, err := b.CreateFile(fileRef(2, "/a"), strings.NewReader("hello"), 5)
	require.NoError(t, err)
	_, err = b.Stat(fileRef(99, "/missing"))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operationsTotal.WithLabelValues("memory", OpCreateFile, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operationsTotal.WithLabelValues("memory", OpStat, "error")))
	assert.Equal(t, 5.0, testutil.ToFloat64(rec.bytesWritten.WithLabelValues("memory")))
}

func TestInstrument_CountsStreamBytes(t *testing.T) {
	rec := NewRecorder()
	b := rec.Instrument(memory.New(memory.Config{}))
	ref := fileRef(2, "/a")
	_, err := b.CreateFile(ref, strings.NewReader(""), 0)
	require.NoError(t, err)

	w, err := b.OpenWrite(ref)
	require.NoError(t, err)
	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := b.OpenRead(ref)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	assert.Equal(t, "0123456789", string(data))
	assert.Equal(t, 10.0, testutil.ToFloat64(rec.bytesRead.WithLabelValues("memory")))
	assert.Equal(t, 10.0, testutil.ToFloat64(rec.bytesWritten.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operationsTotal.WithLabelValues("memory", OpCommit, "success")))
}

func TestInstrument_Abort(t *testing.T) {
	rec := NewRecorder()
	b := rec.Instrument(memory.New(memory.Config{}))
	ref := fileRef(2, "/a")
	_, err := b.CreateFile(ref, strings.NewReader("x"), 1)
	require.NoError(t, err)

	w, err := b.OpenWrite(ref)
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operationsTotal.WithLabelValues("memory", OpAbort, "success")))
}

func TestRecordOperation_ErrorResult(t *testing.T) {
	rec := NewRecorder()
	rec.RecordOperation("local", OpRename, 0, errors.New("boom"))
	rec.RecordOperation("local", OpRename, 0, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operationsTotal.WithLabelValues("local", OpRename, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operationsTotal.WithLabelValues("local", OpRename, "success")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.operationDuration))
}

func TestWriteToTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.SetTreeSize(3, 7)
	rec.RecordOperation("memory", OpHash, 0, nil)

	path := filepath.Join(t.TempDir(), "vtree.prom")
	require.NoError(t, rec.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `vtree_tree_nodes{kind="folder"} 3`)
	assert.Contains(t, text, `vtree_tree_nodes{kind="file"} 7`)
	assert.Contains(t, text, `vtree_backend_operations_total{backend="memory",op="hash",result="success"} 1`)
}

func TestRecorders_AreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.RecordRead("memory", 4)

	assert.Equal(t, 4.0, testutil.ToFloat64(a.bytesRead.WithLabelValues("memory")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.bytesRead.WithLabelValues("memory")))
}
