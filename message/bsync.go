package message

import "github.com/ledgerwatch/hxhim/hxerr"

// BSyncRequest asks each listed datastore to flush its engine to stable
// storage. It carries no payload beyond the datastore id.
type BSyncRequest struct {
	Header
	DatastoreIDs []uint32
}

func NewBSyncRequest(srcRank, dstRank int32, capacity int) *BSyncRequest {
	return &BSyncRequest{
		Header:       Header{Direction: Request, Op: BSync, SrcRank: srcRank, DstRank: dstRank},
		DatastoreIDs: make([]uint32, 0, capacity),
	}
}

func (r *BSyncRequest) Add(datastoreID uint32) int {
	r.DatastoreIDs = append(r.DatastoreIDs, datastoreID)
	r.Count++
	return len(r.DatastoreIDs) - 1
}

func (r *BSyncRequest) Size() int {
	return headerSize + 4*len(r.DatastoreIDs)
}

func PackBSyncRequest(r *BSyncRequest) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for _, id := range r.DatastoreIDs {
		buf = packU32(buf, id)
	}
	return buf
}

func UnpackBSyncRequest(buf []byte) (*BSyncRequest, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BSync || h.Direction != Request {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BSync request")
	}
	r := NewBSyncRequest(h.SrcRank, h.DstRank, int(h.Count))
	pos := off
	for i := uint64(0); i < h.Count; i++ {
		id, err := unpackU32(buf[pos:])
		if err != nil {
			return nil, err
		}
		pos += 4
		r.Add(id)
	}
	return r, nil
}

// BSyncResponse carries one status per datastore synced.
type BSyncResponse struct {
	Header
	Statuses []Status
}

func NewBSyncResponse(srcRank, dstRank int32, capacity int) *BSyncResponse {
	return &BSyncResponse{
		Header:   Header{Direction: Response, Op: BSync, SrcRank: srcRank, DstRank: dstRank},
		Statuses: make([]Status, 0, capacity),
	}
}

func (r *BSyncResponse) Add(status Status) int {
	r.Statuses = append(r.Statuses, status)
	r.Count++
	return len(r.Statuses) - 1
}

func (r *BSyncResponse) Size() int {
	return headerSize + len(r.Statuses)
}

func PackBSyncResponse(r *BSyncResponse) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for _, s := range r.Statuses {
		buf = append(buf, byte(s))
	}
	return buf
}

func UnpackBSyncResponse(buf []byte) (*BSyncResponse, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BSync || h.Direction != Response {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BSync response")
	}
	if len(buf) < off+int(h.Count) {
		return nil, hxerr.New(hxerr.MsgTruncated, "statuses truncated")
	}
	r := NewBSyncResponse(h.SrcRank, h.DstRank, int(h.Count))
	for i := uint64(0); i < h.Count; i++ {
		r.Add(Status(buf[off+int(i)]))
	}
	return r, nil
}
