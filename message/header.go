package message

import (
	"encoding/binary"

	"github.com/ledgerwatch/hxhim/hxerr"
)

// headerSize is direction:u8 | op:u8 | src_rank:i32 | dst_rank:i32 | count:u64.
const headerSize = 1 + 1 + 4 + 4 + 8

// Header is shared by every request and response, request/response and
// bulk-type distinguished by Direction and Op respectively. All multibyte
// fields are little-endian on the wire.
type Header struct {
	Direction Direction
	Op        Op
	SrcRank   int32
	DstRank   int32
	Count     uint64
}

func (h Header) packInto(dst []byte) []byte {
	dst = append(dst, byte(h.Direction), byte(h.Op))
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(h.SrcRank))
	dst = append(dst, buf[:4]...)
	binary.LittleEndian.PutUint32(buf[:4], uint32(h.DstRank))
	dst = append(dst, buf[:4]...)
	binary.LittleEndian.PutUint64(buf[:8], h.Count)
	dst = append(dst, buf[:8]...)
	return dst
}

func unpackHeader(buf []byte) (Header, int, error) {
	if len(buf) < headerSize {
		return Header{}, 0, hxerr.New(hxerr.MsgTruncated, "header truncated")
	}
	h := Header{
		Direction: Direction(buf[0]),
		Op:        Op(buf[1]),
		SrcRank:   int32(binary.LittleEndian.Uint32(buf[2:6])),
		DstRank:   int32(binary.LittleEndian.Uint32(buf[6:10])),
		Count:     binary.LittleEndian.Uint64(buf[10:18]),
	}
	if !validOp(h.Op) {
		return Header{}, 0, hxerr.New(hxerr.MsgOpcode, "unknown op")
	}
	return h, headerSize, nil
}
