package gateway

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImagesRawBase64(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("hello"))

	out, err := decodeImages([]string{raw})

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "hello", string(out[0]))
}

func TestDecodeImagesDataURI(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("world"))
	dataURI := "data:image/png;base64," + encoded

	out, err := decodeImages([]string{dataURI})

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "world", string(out[0]))
}

func TestDecodeImagesInvalidBase64Errors(t *testing.T) {
	_, err := decodeImages([]string{"not-valid-base64!!"})
	assert.Error(t, err)
}

func TestDecodeImagesPreservesOrder(t *testing.T) {
	a := base64.StdEncoding.EncodeToString([]byte("a"))
	b := base64.StdEncoding.EncodeToString([]byte("b"))

	out, err := decodeImages([]string{a, b})

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", string(out[0]))
	assert.Equal(t, "b", string(out[1]))
}
