package pcapfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteBufferWriteAndOverflow(t *testing.T) {
	b := NewByteBuffer(8)

	n, err := b.Write([]byte("abcd"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, int64(4), b.Len())

	n, err = b.Write([]byte("wxyz"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, int64(8), b.Len())

	_, err = b.Write([]byte("x"))
	require.Error(t, err)
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrBufferFull, opErr.Code)
	assert.Equal(t, int64(8), b.Len()) // rejected write leaves state unchanged
}

func TestByteBufferWritevAllOrNothing(t *testing.T) {
	b := NewByteBuffer(6)

	_, err := b.Writev([][]byte{[]byte("abc"), []byte("defg")})
	require.Error(t, err)
	assert.Equal(t, int64(0), b.Len()) // combined length (7) exceeds capacity, nothing written

	n, err := b.Writev([][]byte{[]byte("abc"), []byte("def")})
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, []byte("abcdef"), b.Bytes())
}

func TestByteBufferCloseIsNoop(t *testing.T) {
	b := NewByteBuffer(4)
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}
