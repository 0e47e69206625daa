package sno

import "encoding/binary"

// words encodes little-endian 32-bit words.
func words(ws ...int32) []byte {
	out := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.LittleEndian.PutUint32(out[4*i:], uint32(w))
	}
	return out
}

// at returns buf extended with zeros so that data lands at offset off.
func at(buf []byte, off int, data []byte) []byte {
	if len(buf) < off+len(data) {
		buf = append(buf, make([]byte, off+len(data)-len(buf))...)
	}
	copy(buf[off:], data)
	return buf
}

func header(typ uint32, hash, uid int32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b, Magic)
	binary.LittleEndian.PutUint32(b[4:], typ)
	return append(b, words(0, hash, uid)...)
}
