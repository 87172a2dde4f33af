package message

import (
	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/hxerr"
)

// BPutRequest is a homogeneous batch of PUT items travelling to possibly
// many destination datastores within one (src_rank, dst_rank) pair. Fields
// are parallel arrays (struct-of-arrays), not a slice of structs: this is
// the shape original_source/include/transport/BPut.hpp used, and it is
// what keeps Pack a single predictable walk over same-length columns.
type BPutRequest struct {
	Header
	DatastoreIDs []uint32
	Subjects     []blob.Blob
	Predicates   []blob.Blob
	Objects      []blob.Blob
}

// NewBPutRequest allocates a request with room for `capacity` items.
func NewBPutRequest(srcRank, dstRank int32, capacity int) *BPutRequest {
	return &BPutRequest{
		Header:       Header{Direction: Request, Op: BPut, SrcRank: srcRank, DstRank: dstRank},
		DatastoreIDs: make([]uint32, 0, capacity),
		Subjects:     make([]blob.Blob, 0, capacity),
		Predicates:   make([]blob.Blob, 0, capacity),
		Objects:      make([]blob.Blob, 0, capacity),
	}
}

// Add appends one item and returns its index within the message.
func (r *BPutRequest) Add(datastoreID uint32, subject, predicate, object blob.Blob) int {
	r.DatastoreIDs = append(r.DatastoreIDs, datastoreID)
	r.Subjects = append(r.Subjects, subject)
	r.Predicates = append(r.Predicates, predicate)
	r.Objects = append(r.Objects, object)
	r.Count++
	return len(r.DatastoreIDs) - 1
}

// Size returns the exact number of bytes Pack(r) will produce.
func (r *BPutRequest) Size() int {
	n := headerSize
	for i := range r.DatastoreIDs {
		n += 4 + blob.SerializedSize(r.Subjects[i]) + blob.SerializedSize(r.Predicates[i]) + blob.SerializedSize(r.Objects[i])
	}
	return n
}

func packU32(dst []byte, v uint32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func unpackU32(buf []byte) (uint32, error) {
	if len(buf) < 4 {
		return 0, hxerr.New(hxerr.MsgTruncated, "u32 truncated")
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

// PackBPutRequest serializes r into a freshly allocated buffer.
func PackBPutRequest(r *BPutRequest) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for i := range r.DatastoreIDs {
		buf = packU32(buf, r.DatastoreIDs[i])
		buf = blob.Serialize(buf, r.Subjects[i])
		buf = blob.Serialize(buf, r.Predicates[i])
		buf = blob.Serialize(buf, r.Objects[i])
	}
	return buf
}

// UnpackBPutRequest parses a BPutRequest packed by Pack.
func UnpackBPutRequest(buf []byte) (*BPutRequest, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BPut || h.Direction != Request {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BPut request")
	}
	r := NewBPutRequest(h.SrcRank, h.DstRank, int(h.Count))
	c := &blob.Cursor{Buf: buf, Pos: off}
	for i := uint64(0); i < h.Count; i++ {
		dsID, err := unpackU32(buf[c.Pos:])
		if err != nil {
			return nil, err
		}
		c.Pos += 4
		subject, err := blob.Deserialize(c)
		if err != nil {
			return nil, err
		}
		predicate, err := blob.Deserialize(c)
		if err != nil {
			return nil, err
		}
		object, err := blob.Deserialize(c)
		if err != nil {
			return nil, err
		}
		r.Add(dsID, subject, predicate, object)
	}
	return r, nil
}

// BPutResponse carries one status per request item, in the same index
// order the request items were submitted in.
type BPutResponse struct {
	Header
	Statuses []Status
}

func NewBPutResponse(srcRank, dstRank int32, capacity int) *BPutResponse {
	return &BPutResponse{
		Header:   Header{Direction: Response, Op: BPut, SrcRank: srcRank, DstRank: dstRank},
		Statuses: make([]Status, 0, capacity),
	}
}

func (r *BPutResponse) Add(status Status) int {
	r.Statuses = append(r.Statuses, status)
	r.Count++
	return len(r.Statuses) - 1
}

func (r *BPutResponse) Size() int {
	return headerSize + len(r.Statuses)
}

func PackBPutResponse(r *BPutResponse) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for _, s := range r.Statuses {
		buf = append(buf, byte(s))
	}
	return buf
}

func UnpackBPutResponse(buf []byte) (*BPutResponse, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BPut || h.Direction != Response {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BPut response")
	}
	if len(buf) < off+int(h.Count) {
		return nil, hxerr.New(hxerr.MsgTruncated, "statuses truncated")
	}
	r := NewBPutResponse(h.SrcRank, h.DstRank, int(h.Count))
	for i := uint64(0); i < h.Count; i++ {
		r.Add(Status(buf[off+int(i)]))
	}
	return r, nil
}
