package common

import (
	"encoding/hex"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/errors"
)

func InvokeCloser(closer io.Closer) {
	if closer != nil {
		err := closer.Close()
		if err != nil {
			log.Warnf("failed to close closer %v", err)
		}
	}
}

func CopyByteSlice(buff []byte) []byte {
	res := make([]byte, len(buff))
	copy(res, buff)
	return res
}

// DecodeHex parses a row given as hex. Whitespace and a leading 0x are ignored.
func DecodeHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex row")
	}
	return b, nil
}

// DumpRow renders a row as space separated hex bytes, the header byte first.
func DumpRow(row []byte) string {
	if row == nil {
		return "nil"
	}
	var sb strings.Builder
	for i, b := range row {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(hex.EncodeToString([]byte{b}))
	}
	return sb.String()
}
