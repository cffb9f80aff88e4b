package vtree_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s2quake/vtree/pkg/vtree"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, vtree.ExitSuccess},
		{"invalid config", vtree.ErrInvalidConfig, vtree.ExitConfigError},
		{"not found", vtree.NewError(vtree.OpResolve, "/a", vtree.ErrNotFound, nil), vtree.ExitNotFound},
		{"duplicate name", vtree.NewError(vtree.OpCreateFolder, "/a", vtree.ErrDuplicateName, nil), vtree.ExitDuplicateName},
		{"invalid path", fmt.Errorf("parse: %w", vtree.ErrInvalidPath), vtree.ExitInvalidPath},
		{"invalid operation", vtree.NewError(vtree.OpDelete, "/", vtree.ErrInvalidOperation, nil), vtree.ExitInvalidOperation},
		{"io failure", vtree.IOError(vtree.OpCreateFile, "/a", fs.ErrPermission), vtree.ExitIOFailure},
		{"disposed", vtree.ErrDisposed, vtree.ExitDisposed},
		{"unknown flag", errors.New("unknown flag: --nope"), vtree.ExitUsageError},
		{"wrong arg count", errors.New("accepts 1 arg(s), received 2"), vtree.ExitUsageError},
		{"unclassified", errors.New("boom"), vtree.ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, vtree.ExitCodeForError(tt.err))
		})
	}
}

func TestError_MatchesKindAndCause(t *testing.T) {
	err := vtree.IOError(vtree.OpRename, "/docs", fs.ErrExist)

	assert.ErrorIs(t, err, vtree.ErrIOFailure)
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.NotErrorIs(t, err, vtree.ErrNotFound)
	assert.Equal(t, "rename /docs: i/o failure: file already exists", err.Error())

	var e *vtree.Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, vtree.OpRename, e.Op)
	assert.Equal(t, "/docs", e.Path)
}

func TestIOError_KeepsExistingKind(t *testing.T) {
	inner := vtree.NewError(vtree.OpResolve, "/x", vtree.ErrNotFound, nil)

	err := vtree.IOError(vtree.OpMove, "/y", inner)

	assert.Same(t, inner, err)
	assert.NotErrorIs(t, err, vtree.ErrIOFailure)
	assert.Nil(t, vtree.IOError(vtree.OpMove, "/y", nil))
}

func TestError_MessageWithoutPathOrCause(t *testing.T) {
	err := vtree.NewError(vtree.OpScan, "", vtree.ErrInvalidOperation, nil)
	assert.Equal(t, "scan: invalid operation", err.Error())
}

func TestProgressFunc_NilIsNoop(t *testing.T) {
	var p vtree.ProgressFunc
	assert.NotPanics(t, func() { p.Report(1, 2) })

	var got []int64
	p = func(done, total int64) { got = append(got, done, total) }
	p.Report(3, 4)
	assert.Equal(t, []int64{3, 4}, got)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "folder", vtree.KindFolder.String())
	assert.Equal(t, "file", vtree.KindFile.String())
	assert.Equal(t, "unknown", vtree.Kind(9).String())
}

func TestError_CauseWrappingKindIsNotRepeated(t *testing.T) {
	cause := fmt.Errorf("empty name: %w", vtree.ErrInvalidPath)
	err := vtree.NewError(vtree.OpCreateFile, "/a", vtree.ErrInvalidPath, cause)

	assert.Equal(t, "create file /a: empty name: invalid path", err.Error())
	assert.ErrorIs(t, err, vtree.ErrInvalidPath)
}
