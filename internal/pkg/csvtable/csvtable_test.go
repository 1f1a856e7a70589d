package csvtable

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadColumnsPreservesOrderAndDuplicates(t *testing.T) {
	src := strings.NewReader("name,score,name,notes\nalice,10,a2,x\n")

	cols, err := ReadColumns(src)
	require.NoError(t, err)
	require.Equal(t, []string{"name", "score", "name", "notes"}, cols)
}

func TestReadColumnsIgnoresRowCount(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,status\n")
	for i := 0; i < 500; i++ {
		b.WriteString("1,ok\n")
	}

	cols, err := ReadColumns(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Equal(t, []string{"id", "status"}, cols)
}

func TestReadColumnsEmptyFile(t *testing.T) {
	cols, err := ReadColumns(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, cols)
}

func TestReaderFullScan(t *testing.T) {
	src := strings.NewReader("name,score\nalice,10\nbob,20\n")

	r, err := NewReader(src)
	require.NoError(t, err)

	first, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, Row{"name": "alice", "score": "10"}, first)

	second, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, Row{"name": "bob", "score": "20"}, second)

	_, err = r.Next()
	require.Equal(t, io.EOF, err)
}

func TestReaderToleratesRaggedRows(t *testing.T) {
	src := strings.NewReader("a,b,c\n1,2\n1,2,3,4\n")

	r, err := NewReader(src)
	require.NoError(t, err)

	short, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, Row{"a": "1", "b": "2"}, short)
	require.Equal(t, "", short["c"])

	long, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, Row{"a": "1", "b": "2", "c": "3"}, long)
}

func TestReaderHeaderOnlyFile(t *testing.T) {
	r, err := NewReader(strings.NewReader("x,y\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, r.Columns())

	_, err = r.Next()
	require.Equal(t, io.EOF, err)
}
