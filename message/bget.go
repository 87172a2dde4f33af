package message

import (
	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/hxerr"
)

// BGetRequest carries the expected object Kind per item instead of an
// object value, so the executor knows what to reinterpret the stored
// bytes as.
type BGetRequest struct {
	Header
	DatastoreIDs []uint32
	Subjects     []blob.Blob
	Predicates   []blob.Blob
	ObjectKinds  []blob.Kind
}

func NewBGetRequest(srcRank, dstRank int32, capacity int) *BGetRequest {
	return &BGetRequest{
		Header:       Header{Direction: Request, Op: BGet, SrcRank: srcRank, DstRank: dstRank},
		DatastoreIDs: make([]uint32, 0, capacity),
		Subjects:     make([]blob.Blob, 0, capacity),
		Predicates:   make([]blob.Blob, 0, capacity),
		ObjectKinds:  make([]blob.Kind, 0, capacity),
	}
}

func (r *BGetRequest) Add(datastoreID uint32, subject, predicate blob.Blob, objectKind blob.Kind) int {
	r.DatastoreIDs = append(r.DatastoreIDs, datastoreID)
	r.Subjects = append(r.Subjects, subject)
	r.Predicates = append(r.Predicates, predicate)
	r.ObjectKinds = append(r.ObjectKinds, objectKind)
	r.Count++
	return len(r.DatastoreIDs) - 1
}

func (r *BGetRequest) Size() int {
	n := headerSize
	for i := range r.DatastoreIDs {
		n += 4 + blob.SerializedSize(r.Subjects[i]) + blob.SerializedSize(r.Predicates[i]) + 1
	}
	return n
}

func PackBGetRequest(r *BGetRequest) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for i := range r.DatastoreIDs {
		buf = packU32(buf, r.DatastoreIDs[i])
		buf = blob.Serialize(buf, r.Subjects[i])
		buf = blob.Serialize(buf, r.Predicates[i])
		buf = append(buf, byte(r.ObjectKinds[i]))
	}
	return buf
}

func UnpackBGetRequest(buf []byte) (*BGetRequest, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BGet || h.Direction != Request {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BGet request")
	}
	r := NewBGetRequest(h.SrcRank, h.DstRank, int(h.Count))
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
		if c.Pos >= len(buf) {
			return nil, hxerr.New(hxerr.MsgTruncated, "object kind truncated")
		}
		kind := blob.Kind(buf[c.Pos])
		c.Pos++
		r.Add(dsID, subject, predicate, kind)
	}
	return r, nil
}

// BGetResponse carries, per item, a status and the recovered object (empty
// when the status isn't OK).
type BGetResponse struct {
	Header
	Statuses []Status
	Objects  []blob.Blob
}

func NewBGetResponse(srcRank, dstRank int32, capacity int) *BGetResponse {
	return &BGetResponse{
		Header:   Header{Direction: Response, Op: BGet, SrcRank: srcRank, DstRank: dstRank},
		Statuses: make([]Status, 0, capacity),
		Objects:  make([]blob.Blob, 0, capacity),
	}
}

func (r *BGetResponse) Add(status Status, object blob.Blob) int {
	r.Statuses = append(r.Statuses, status)
	r.Objects = append(r.Objects, object)
	r.Count++
	return len(r.Statuses) - 1
}

func (r *BGetResponse) Size() int {
	n := headerSize + len(r.Statuses)
	for _, o := range r.Objects {
		n += blob.SerializedSize(o)
	}
	return n
}

func PackBGetResponse(r *BGetResponse) []byte {
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

func UnpackBGetResponse(buf []byte) (*BGetResponse, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BGet || h.Direction != Response {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BGet response")
	}
	if len(buf) < off+int(h.Count) {
		return nil, hxerr.New(hxerr.MsgTruncated, "statuses truncated")
	}
	r := NewBGetResponse(h.SrcRank, h.DstRank, int(h.Count))
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
