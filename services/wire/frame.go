// services/wire/frame.go
package wire

import (
	"pdmcode-go/errcode"
	"pdmcode-go/types"
)

// Companion-link frame layout:
//
//	magic(2) = A5 5A
//	type(1)
//	len(2, big-endian)
//	payload(len)
//	crc16(2, big-endian, CCITT over type+len+payload)
const (
	magic0 = 0xA5
	magic1 = 0x5A

	FrameSnapshot byte = 0x01
	FrameDiag     byte = 0x02

	maxPayload = 4096
	overhead   = 7
)

// crc16 is CRC-16/CCITT-FALSE, the variant the companion MCU computes
// in hardware.
func crc16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// AppendFrame appends one framed payload to dst.
func AppendFrame(dst []byte, typ byte, payload []byte) ([]byte, error) {
	if len(payload) > maxPayload {
		return dst, &errcode.E{C: errcode.CapacityExceeded, Op: "wire.frame"}
	}
	start := len(dst)
	dst = append(dst, magic0, magic1, typ,
		byte(len(payload)>>8), byte(len(payload)))
	dst = append(dst, payload...)
	crc := crc16(dst[start+2:])
	return append(dst, byte(crc>>8), byte(crc)), nil
}

// DecodeFrame parses one frame from the head of buf. It returns the
// bytes consumed so a stream reader can resynchronise: on a bad magic
// byte it consumes 1 and the caller retries at the next offset.
func DecodeFrame(buf []byte) (typ byte, payload []byte, consumed int, err error) {
	if len(buf) < overhead {
		return 0, nil, 0, errcode.Busy // incomplete, wait for more
	}
	if buf[0] != magic0 || buf[1] != magic1 {
		return 0, nil, 1, errcode.InvalidPayload
	}
	n := int(buf[3])<<8 | int(buf[4])
	if n > maxPayload {
		return 0, nil, 2, errcode.InvalidPayload
	}
	total := overhead + n
	if len(buf) < total {
		return 0, nil, 0, errcode.Busy
	}
	want := uint16(buf[total-2])<<8 | uint16(buf[total-1])
	if crc16(buf[2:total-2]) != want {
		return 0, nil, 2, errcode.InvalidPayload
	}
	return buf[2], buf[5 : 5+n], total, nil
}

// -----------------------------------------------------------------------------
// Snapshot payload codec
//
// ts(8) count(2) then per channel: id(2) value(4) flags(1), all
// big-endian.
// -----------------------------------------------------------------------------

func appendSnapshot(dst []byte, snap types.Snapshot) []byte {
	dst = appendU64(dst, uint64(snap.TS))
	dst = appendU16(dst, uint16(len(snap.Values)))
	for _, v := range snap.Values {
		dst = appendU16(dst, v.ID)
		dst = appendU32(dst, uint32(v.Value))
		dst = append(dst, v.Flags)
	}
	return dst
}

func decodeSnapshot(b []byte) (types.Snapshot, error) {
	var snap types.Snapshot
	if len(b) < 10 {
		return snap, errcode.InvalidPayload
	}
	snap.TS = int64(u64(b))
	count := int(u16(b[8:]))
	b = b[10:]
	if len(b) != count*7 {
		return snap, errcode.InvalidPayload
	}
	snap.Values = make([]types.ChannelValue, count)
	for i := 0; i < count; i++ {
		snap.Values[i] = types.ChannelValue{
			ID:    u16(b),
			Value: int32(u32(b[2:])),
			Flags: b[6],
		}
		b = b[7:]
	}
	return snap, nil
}

func appendU16(dst []byte, v uint16) []byte { return append(dst, byte(v>>8), byte(v)) }
func appendU32(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
func appendU64(dst []byte, v uint64) []byte {
	return append(dst,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func u16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func u32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func u64(b []byte) uint64 {
	return uint64(u32(b))<<32 | uint64(u32(b[4:]))
}
