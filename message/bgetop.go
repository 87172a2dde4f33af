package message

import (
	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/hxerr"
)

// BGetOpRequest is a ranged get: each item seeds a seek from (subject,
// predicate) and asks for up to NRecords items in Comparator order.
type BGetOpRequest struct {
	Header
	DatastoreIDs []uint32
	Subjects     []blob.Blob
	Predicates   []blob.Blob
	ObjectKinds  []blob.Kind
	Comparators  []Comparator
	NRecords     []uint64
}

func NewBGetOpRequest(srcRank, dstRank int32, capacity int) *BGetOpRequest {
	return &BGetOpRequest{
		Header:       Header{Direction: Request, Op: BGetOp, SrcRank: srcRank, DstRank: dstRank},
		DatastoreIDs: make([]uint32, 0, capacity),
		Subjects:     make([]blob.Blob, 0, capacity),
		Predicates:   make([]blob.Blob, 0, capacity),
		ObjectKinds:  make([]blob.Kind, 0, capacity),
		Comparators:  make([]Comparator, 0, capacity),
		NRecords:     make([]uint64, 0, capacity),
	}
}

func (r *BGetOpRequest) Add(datastoreID uint32, subject, predicate blob.Blob, objectKind blob.Kind, cmp Comparator, n uint64) int {
	r.DatastoreIDs = append(r.DatastoreIDs, datastoreID)
	r.Subjects = append(r.Subjects, subject)
	r.Predicates = append(r.Predicates, predicate)
	r.ObjectKinds = append(r.ObjectKinds, objectKind)
	r.Comparators = append(r.Comparators, cmp)
	r.NRecords = append(r.NRecords, n)
	r.Count++
	return len(r.DatastoreIDs) - 1
}

func (r *BGetOpRequest) Size() int {
	n := headerSize
	for i := range r.DatastoreIDs {
		n += 4 + blob.SerializedSize(r.Subjects[i]) + blob.SerializedSize(r.Predicates[i]) + 1 + 1 + 8
	}
	return n
}

func packU64(dst []byte, v uint64) []byte {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return append(dst, buf[:]...)
}

func unpackU64(buf []byte) (uint64, error) {
	if len(buf) < 8 {
		return 0, hxerr.New(hxerr.MsgTruncated, "u64 truncated")
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(buf[i]) << (8 * i)
	}
	return v, nil
}

func PackBGetOpRequest(r *BGetOpRequest) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for i := range r.DatastoreIDs {
		buf = packU32(buf, r.DatastoreIDs[i])
		buf = blob.Serialize(buf, r.Subjects[i])
		buf = blob.Serialize(buf, r.Predicates[i])
		buf = append(buf, byte(r.ObjectKinds[i]), byte(r.Comparators[i]))
		buf = packU64(buf, r.NRecords[i])
	}
	return buf
}

func UnpackBGetOpRequest(buf []byte) (*BGetOpRequest, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BGetOp || h.Direction != Request {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BGetOp request")
	}
	r := NewBGetOpRequest(h.SrcRank, h.DstRank, int(h.Count))
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
		if c.Pos+2 > len(buf) {
			return nil, hxerr.New(hxerr.MsgTruncated, "getop tail truncated")
		}
		kind := blob.Kind(buf[c.Pos])
		cmp := Comparator(buf[c.Pos+1])
		c.Pos += 2
		n, err := unpackU64(buf[c.Pos:])
		if err != nil {
			return nil, err
		}
		c.Pos += 8
		r.Add(dsID, subject, predicate, kind, cmp, n)
	}
	return r, nil
}

// BGetOpResponse carries a status and the recovered object per matched item;
// a single request item can thus yield more response entries than it had
// request entries, tracked by the caller via the original-index correlation
// the batch layer keeps outside the wire format.
type BGetOpResponse struct {
	Header
	Statuses []Status
	Objects  []blob.Blob
}

func NewBGetOpResponse(srcRank, dstRank int32, capacity int) *BGetOpResponse {
	return &BGetOpResponse{
		Header:   Header{Direction: Response, Op: BGetOp, SrcRank: srcRank, DstRank: dstRank},
		Statuses: make([]Status, 0, capacity),
		Objects:  make([]blob.Blob, 0, capacity),
	}
}

func (r *BGetOpResponse) Add(status Status, object blob.Blob) int {
	r.Statuses = append(r.Statuses, status)
	r.Objects = append(r.Objects, object)
	r.Count++
	return len(r.Statuses) - 1
}

func (r *BGetOpResponse) Size() int {
	n := headerSize + len(r.Statuses)
	for _, o := range r.Objects {
		n += blob.SerializedSize(o)
	}
	return n
}

func PackBGetOpResponse(r *BGetOpResponse) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for _, s := range r.Statuses {
		buf = append(buf, byte(s))
	}
	for _, o := range r.Objects {
		buf = blob.Serialize(buf, o)
	}
	return buf
}

func UnpackBGetOpResponse(buf []byte) (*BGetOpResponse, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BGetOp || h.Direction != Response {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BGetOp response")
	}
	if len(buf) < off+int(h.Count) {
		return nil, hxerr.New(hxerr.MsgTruncated, "statuses truncated")
	}
	r := NewBGetOpResponse(h.SrcRank, h.DstRank, int(h.Count))
	statuses := make([]Status, h.Count)
	for i := range statuses {
		statuses[i] = Status(buf[off+i])
	}
	c := &blob.Cursor{Buf: buf, Pos: off + int(h.Count)}
	for i := uint64(0); i < h.Count; i++ {
		obj, err := blob.Deserialize(c)
		if err != nil {
			return nil, err
		}
		r.Add(statuses[i], obj)
	}
	return r, nil
}
