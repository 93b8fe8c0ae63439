package sen5x

// crc8 is the Sensirion CRC-8 (polynomial 0x31, init 0xFF) computed over
// one 16-bit word.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// checkWords verifies the CRC that trails every 2-byte word of a response.
func checkWords(cmd uint16, raw []byte) error {
	for i := 0; i+2 < len(raw); i += 3 {
		want := crc8(raw[i : i+2])
		if raw[i+2] != want {
			return &CRCError{Cmd: cmd, Word: i / 3, Got: raw[i+2], Want: want}
		}
	}
	return nil
}

// stripCRC returns the payload bytes of a response without the CRC bytes.
func stripCRC(raw []byte) []byte {
	out := make([]byte, 0, len(raw)/3*2)
	for i := 0; i+1 < len(raw); i += 3 {
		out = append(out, raw[i], raw[i+1])
	}
	return out
}
