package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList(" a, b,,c ,"))
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , ,"))
	assert.Equal(t, "a, b", JoinList(SplitList("a,b")))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate("2024-02-29")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), *d)
	assert.Equal(t, "2024-02-29", FormatDate(d))

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
	assert.Equal(t, "", FormatDate(nil))
}

func TestParseOptionalID(t *testing.T) {
	id, err := ParseOptionalID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = ParseOptionalID("0")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = ParseOptionalID("42")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.EqualValues(t, 42, *id)
	assert.Equal(t, "42", FormatOptionalID(id))

	_, err = ParseOptionalID("abc")
	assert.Error(t, err)
	assert.Equal(t, "", FormatOptionalID(nil))
}
