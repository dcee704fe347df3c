package size

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainDigits(t *testing.T) {
	n, err := Parse("2048", 0, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(2048), n)
}

func TestParseMegabyteSuffix(t *testing.T) {
	n, err := Parse("4M", 0, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(4*1024*1024), n)
}

func TestParseGigabyteSuffix(t *testing.T) {
	n, err := Parse("1G", 0, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024*1024*1024), n)
}

func TestParseRejectsTrailingCharacterAfterSuffix(t *testing.T) {
	_, err := Parse("4M1", 0, math.MaxUint64)
	assert.Error(t, err)
}

func TestParseRejectsUnknownCharacter(t *testing.T) {
	_, err := Parse("4K", 0, math.MaxUint64)
	assert.Error(t, err)
}

func TestParseRejectsEmptyString(t *testing.T) {
	_, err := Parse("", 0, math.MaxUint64)
	assert.Error(t, err)
}

func TestParseEnforcesRange(t *testing.T) {
	_, err := Parse("10", 100, 1000)
	assert.Error(t, err)

	_, err = Parse("2000", 100, 1000)
	assert.Error(t, err)

	n, err := Parse("500", 100, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), n)
}

func TestParseRejectsDigitOverflow(t *testing.T) {
	_, err := Parse("99999999999999999999999999", 0, math.MaxUint64)
	assert.Error(t, err)
}
