package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC8(t *testing.T) {
	// Reference value from the Sensirion datasheets
	assert.Equal(t, byte(0x92), crc8([]byte{0xbe, 0xef}))
	assert.Equal(t, byte(0xff), crc8(nil))
}

func TestWords(t *testing.T) {
	buf := appendWord(nil, 0xbeef)
	buf = appendWord(buf, 0x1234)
	assert.Equal(t, []byte{0xbe, 0xef, 0x92}, buf[:3])

	ws, err := words(buf)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0xbeef, 0x1234}, ws)

	buf[5] ^= 0x01
	_, err = words(buf)
	assert.ErrorIs(t, err, ErrChecksum)
}
