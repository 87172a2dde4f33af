package message

import (
	"math"

	"github.com/ledgerwatch/hxhim/hxerr"
)

// BHistogramRequest asks, per item, for a snapshot of the named histogram
// registered on a datastore.
type BHistogramRequest struct {
	Header
	DatastoreIDs []uint32
	Names        []string
}

func NewBHistogramRequest(srcRank, dstRank int32, capacity int) *BHistogramRequest {
	return &BHistogramRequest{
		Header:       Header{Direction: Request, Op: BHistogram, SrcRank: srcRank, DstRank: dstRank},
		DatastoreIDs: make([]uint32, 0, capacity),
		Names:        make([]string, 0, capacity),
	}
}

func (r *BHistogramRequest) Add(datastoreID uint32, name string) int {
	r.DatastoreIDs = append(r.DatastoreIDs, datastoreID)
	r.Names = append(r.Names, name)
	r.Count++
	return len(r.DatastoreIDs) - 1
}

func (r *BHistogramRequest) Size() int {
	n := headerSize
	for _, name := range r.Names {
		n += 4 + 8 + len(name)
	}
	return n
}

func PackBHistogramRequest(r *BHistogramRequest) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for i := range r.DatastoreIDs {
		buf = packU32(buf, r.DatastoreIDs[i])
		buf = packU64(buf, uint64(len(r.Names[i])))
		buf = append(buf, r.Names[i]...)
	}
	return buf
}

func UnpackBHistogramRequest(buf []byte) (*BHistogramRequest, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BHistogram || h.Direction != Request {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BHistogram request")
	}
	r := NewBHistogramRequest(h.SrcRank, h.DstRank, int(h.Count))
	pos := off
	for i := uint64(0); i < h.Count; i++ {
		dsID, err := unpackU32(buf[pos:])
		if err != nil {
			return nil, err
		}
		pos += 4
		nameLen, err := unpackU64(buf[pos:])
		if err != nil {
			return nil, err
		}
		pos += 8
		if uint64(len(buf)-pos) < nameLen {
			return nil, hxerr.New(hxerr.MsgTruncated, "histogram name truncated")
		}
		name := string(buf[pos : pos+int(nameLen)])
		pos += int(nameLen)
		r.Add(dsID, name)
	}
	return r, nil
}

// Bucket is one (edge, count) pair of a histogram snapshot.
type Bucket struct {
	Edge  float64
	Count uint64
}

// BHistogramResponse carries one status and one bucket snapshot per item.
type BHistogramResponse struct {
	Header
	Statuses []Status
	Buckets  [][]Bucket
}

func NewBHistogramResponse(srcRank, dstRank int32, capacity int) *BHistogramResponse {
	return &BHistogramResponse{
		Header:   Header{Direction: Response, Op: BHistogram, SrcRank: srcRank, DstRank: dstRank},
		Statuses: make([]Status, 0, capacity),
		Buckets:  make([][]Bucket, 0, capacity),
	}
}

func (r *BHistogramResponse) Add(status Status, buckets []Bucket) int {
	r.Statuses = append(r.Statuses, status)
	r.Buckets = append(r.Buckets, buckets)
	r.Count++
	return len(r.Statuses) - 1
}

func (r *BHistogramResponse) Size() int {
	n := headerSize + len(r.Statuses)
	for _, bs := range r.Buckets {
		n += 8 + len(bs)*16
	}
	return n
}

func packF64(dst []byte, v float64) []byte {
	return packU64(dst, math.Float64bits(v))
}

func unpackF64(buf []byte) (float64, error) {
	bits, err := unpackU64(buf)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func PackBHistogramResponse(r *BHistogramResponse) []byte {
	buf := make([]byte, 0, r.Size())
	buf = r.Header.packInto(buf)
	for _, s := range r.Statuses {
		buf = append(buf, byte(s))
	}
	for _, bs := range r.Buckets {
		buf = packU64(buf, uint64(len(bs)))
		for _, b := range bs {
			buf = packF64(buf, b.Edge)
			buf = packU64(buf, b.Count)
		}
	}
	return buf
}

func UnpackBHistogramResponse(buf []byte) (*BHistogramResponse, error) {
	h, off, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Op != BHistogram || h.Direction != Response {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a BHistogram response")
	}
	if len(buf) < off+int(h.Count) {
		return nil, hxerr.New(hxerr.MsgTruncated, "statuses truncated")
	}
	r := NewBHistogramResponse(h.SrcRank, h.DstRank, int(h.Count))
	statuses := make([]Status, h.Count)
	for i := range statuses {
		statuses[i] = Status(buf[off+i])
	}
	pos := off + int(h.Count)
	for i := uint64(0); i < h.Count; i++ {
		nBuckets, err := unpackU64(buf[pos:])
		if err != nil {
			return nil, err
		}
		pos += 8
		buckets := make([]Bucket, nBuckets)
		for j := range buckets {
			edge, err := unpackF64(buf[pos:])
			if err != nil {
				return nil, err
			}
			pos += 8
			count, err := unpackU64(buf[pos:])
			if err != nil {
				return nil, err
			}
			pos += 8
			buckets[j] = Bucket{Edge: edge, Count: count}
		}
		r.Add(statuses[i], buckets)
	}
	return r, nil
}
