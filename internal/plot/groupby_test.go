package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByFirstSeenOrder(t *testing.T) {
	r := newReader(t, "status\na\nb\na\nc\n")

	result, err := GroupBy(r, []string{"status"})
	require.NoError(t, err)
	require.Equal(t, []ValueCount{
		{Value: "a", Count: 2},
		{Value: "b", Count: 1},
		{Value: "c", Count: 1},
	}, result["status"])
}

func TestGroupByIndependentColumns(t *testing.T) {
	r := newReader(t, "status,region\nok,north\nok,south\nerr,north\n")

	result, err := GroupBy(r, []string{"status", "region"})
	require.NoError(t, err)
	assert.Equal(t, []ValueCount{
		{Value: "ok", Count: 2},
		{Value: "err", Count: 1},
	}, result["status"])
	assert.Equal(t, []ValueCount{
		{Value: "north", Count: 2},
		{Value: "south", Count: 1},
	}, result["region"])
}

func TestGroupByMissingColumnCountsEmptyValue(t *testing.T) {
	r := newReader(t, "status\nok\nok\n")

	result, err := GroupBy(r, []string{"absent"})
	require.NoError(t, err)
	require.Equal(t, []ValueCount{{Value: "", Count: 2}}, result["absent"])
}

func TestGroupByEmptyColumnList(t *testing.T) {
	r := newReader(t, "status\nok\n")

	_, err := GroupBy(r, nil)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGroupByEmptyFile(t *testing.T) {
	r := newReader(t, "status\n")

	result, err := GroupBy(r, []string{"status"})
	require.NoError(t, err)
	require.Empty(t, result["status"])
}
