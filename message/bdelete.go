package message

import (
	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/hxerr"
)

// BDeleteRequest drops object_* entirely: a delete is keyed on
// (subject, predicate) alone.
type BDeleteRequest struct {
	Header
	DatastoreIDs []uint32
	Subjects     []blob.Blob
	Predicates   []blob.Blob
}

func NewBDeleteRequest(srcRank, dstRank int32, capacity int) *BDeleteRequest {
	return &BDeleteRequest{
		Header:       Header{Direction: Request, Op: BDelete, SrcRank: srcRank, DstRank: dstRank},
		DatastoreIDs: make([]uint32, 0, capacity),
		Subjects:     make([]blob.Blob, 0, capacity),
		Predicates:   make([]blob.Blob, 0, capacity),
	}
}

func (r *BDeleteRequest) Add(datastoreID uint32, subject, predicate blob.Blob) int {
	r.DatastoreIDs = append(r.DatastoreIDs, datastoreID)
	r.Subjects = append(r.Subjects, subject)
	r.Predicates = append(r.Predicates, predicate)
	r.Count++
	return len(r.DatastoreIDs) - 1
}

func (r *BDeleteRequest) Size() int {
	n := headerSize
	for i := range r.DatastoreIDs {
		n += 4 + blob.SerializedSize(r.Subjects[i]) + blob.SerializedSize(r.Predicates[i])
	}
	return n
}

func PackBDeleteRequest(r *BDeleteRequest) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for i := range r.DatastoreIDs {
		buf = packU32(buf, r.DatastoreIDs[i])
		buf = blob.Serialize(buf, r.Subjects[i])
		buf = blob.Serialize(buf, r.Predicates[i])
	}
	return buf
}

func UnpackBDeleteRequest(buf []byte) (*BDeleteRequest, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BDelete || h.Direction != Request {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BDelete request")
	}
	r := NewBDeleteRequest(h.SrcRank, h.DstRank, int(h.Count))
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
		r.Add(dsID, subject, predicate)
	}
	return r, nil
}

// BDeleteResponse carries one status per request item; a missing key is
// STATUS_NOT_FOUND, not an abort of the batch.
type BDeleteResponse struct {
	Header
	Statuses []Status
}

func NewBDeleteResponse(srcRank, dstRank int32, capacity int) *BDeleteResponse {
	return &BDeleteResponse{
		Header:   Header{Direction: Response, Op: BDelete, SrcRank: srcRank, DstRank: dstRank},
		Statuses: make([]Status, 0, capacity),
	}
}

func (r *BDeleteResponse) Add(status Status) int {
	r.Statuses = append(r.Statuses, status)
	r.Count++
	return len(r.Statuses) - 1
}

func (r *BDeleteResponse) Size() int {
	return headerSize + len(r.Statuses)
}

func PackBDeleteResponse(r *BDeleteResponse) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for _, s := range r.Statuses {
		buf = append(buf, byte(s))
	}
	return buf
}

func UnpackBDeleteResponse(buf []byte) (*BDeleteResponse, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BDelete || h.Direction != Response {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BDelete response")
	}
	if len(buf) < off+int(h.Count) {
		return nil, hxerr.New(hxerr.MsgTruncated, "statuses truncated")
	}
	r := NewBDeleteResponse(h.SrcRank, h.DstRank, int(h.Count))
	for i := uint64(0); i < h.Count; i++ {
		r.Add(Status(buf[off+int(i)]))
	}
	return r, nil
}
