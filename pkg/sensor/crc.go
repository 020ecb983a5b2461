package sensor

// crc8 is the CRC used by Sensirion and Aosong sensors: polynomial 0x31, init 0xFF, no reflection.
func crc8(data []byte) byte {
	crc := byte(0xff)
	for _, b := range data {
		crc ^= b
		for range 8 {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// words decodes big-endian 16-bit words, each followed by its crc8.
func words(buf []byte) ([]uint16, error) {
	out := make([]uint16, 0, len(buf)/3)
	for i := 0; i+2 < len(buf); i += 3 {
		if crc8(buf[i:i+2]) != buf[i+2] {
			return nil, ErrChecksum
		}
		out = append(out, uint16(buf[i])<<8|uint16(buf[i+1]))
	}
	return out, nil
}

// appendWord appends a big-endian word and its crc8.
func appendWord(buf []byte, w uint16) []byte {
	b := []byte{byte(w >> 8), byte(w)}
	return append(buf, b[0], b[1], crc8(b))
}
