package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, Check("s3cret", hash))
	assert.Error(t, Check("wrong", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("s3cret")
	require.NoError(t, err)
	second, err := Hash("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
