package common

import (
	"testing"

	"github.com/squareup/rowcodec/errors"
	"github.com/stretchr/testify/require"
)

func TestDecodeHex(t *testing.T) {
	b, err := DecodeHex("0x08 01\n ff")
	require.NoError(t, err)
	require.Equal(t, []byte{0x08, 0x01, 0xFF}, b)

	_, err = DecodeHex("0x0")
	require.Error(t, err)
	_, err = DecodeHex("zz")
	require.Error(t, err)
}

func TestDumpRow(t *testing.T) {
	require.Equal(t, "nil", DumpRow(nil))
	require.Equal(t, "", DumpRow([]byte{}))
	require.Equal(t, "08 01 ff", DumpRow([]byte{0x08, 0x01, 0xFF}))
}

func TestCopyByteSlice(t *testing.T) {
	orig := []byte{1, 2, 3}
	cp := CopyByteSlice(orig)
	cp[0] = 9
	require.Equal(t, byte(1), orig[0])
	require.Equal(t, []byte{1, 2, 3}, orig)
}

func decodeThatPanics(p interface{}) (err error) {
	defer RecoverInternalError(&err)
	panic(p)
}

func TestRecoverInternalError(t *testing.T) {
	err := decodeThatPanics("row corrupt")
	require.True(t, errors.HasCode(err, errors.InternalError), "%v", err)
	require.Contains(t, err.Error(), "reference")

	err = decodeThatPanics(errors.New("boom"))
	require.True(t, errors.HasCode(err, errors.InternalError))

	ok := func() (err error) {
		defer RecoverInternalError(&err)
		return nil
	}
	require.NoError(t, ok())
}
