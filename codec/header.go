// Package codec encodes property rows into the fixed-layout binary format and decodes single fields
// back out of them. Rows written by the legacy variable-offset format can still be read.
package codec

import (
	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/common"
)

const (
	ReaderVersion1 = 1
	ReaderVersion2 = 2

	// headerV2 marks a version 2 row. The low three bits carry the number of schema version bytes.
	headerV2 = 0x08

	maxVerBytes = 7

	// timestampSize is the width of the write timestamp appended after the variable region.
	timestampSize = 8
)

// GetVersions reads the schema version and the reader version a row was written with. schemaVer is
// -1 when the header is malformed. An empty row reports schema version 0 for reader version 2.
func GetVersions(row []byte) (schemaVer int64, readerVer int) {
	if len(row) == 0 {
		log.Warn("row data is empty, so there is no schema version")
		return 0, ReaderVersion2
	}
	header := row[0]
	readerVer = int((header&0x18)>>3) + 1
	var verBytes int
	switch readerVer {
	case ReaderVersion1:
		verBytes = int(header >> 5)
	case ReaderVersion2:
		verBytes = int(header & 0x07)
	default:
		log.Errorf("row header 0x%02x declares unsupported reader version %d", header, readerVer)
		return -1, readerVer
	}
	if 1+verBytes > len(row) {
		log.Errorf("row of %d bytes is too short for %d schema version bytes", len(row), verBytes)
		return -1, readerVer
	}
	return int64(common.ReadLittleEndianN(row, 1, verBytes)), readerVer
}

// encodeHeaderV2 appends the header byte and the minimal little-endian schema version.
func encodeHeaderV2(buf []byte, ver int64) []byte {
	if ver == 0 {
		return append(buf, headerV2)
	}
	n := common.BytesForUint(uint64(ver))
	if n > maxVerBytes {
		panic("schema version does not fit in seven bytes")
	}
	buf = append(buf, byte(headerV2|n))
	return common.AppendLittleEndianN(buf, uint64(ver), n)
}

func numNullBytes(numNullable int) int {
	if numNullable == 0 {
		return 0
	}
	return ((numNullable - 1) >> 3) + 1
}
