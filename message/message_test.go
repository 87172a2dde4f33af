package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/hxerr"
)

func TestBPutRoundTripAndSizeExact(t *testing.T) {
	req := NewBPutRequest(1, 2, 2)
	req.Add(0, blob.NewOwned([]byte("s1"), blob.Bytes), blob.NewOwned([]byte("p1"), blob.Bytes), blob.FromFloat64(3.14))
	req.Add(1, blob.NewOwned([]byte("s2"), blob.Bytes), blob.NewOwned([]byte("p2"), blob.Bytes), blob.NewOwned([]byte("hello"), blob.Bytes))

	packed := PackBPutRequest(req)
	assert.Equal(t, req.Size(), len(packed))

	got, err := UnpackBPutRequest(packed)
	require.NoError(t, err)
	require.Equal(t, req.Count, got.Count)
	assert.Equal(t, blob.Float64, got.Objects[0].Kind)
	f, err := got.Objects[0].Float64()
	require.NoError(t, err)
	assert.Equal(t, 3.14, f)
	assert.Equal(t, blob.Bytes, got.Objects[1].Kind)
	assert.Equal(t, []byte("hello"), got.Objects[1].Bytes)

	// KIND_MISMATCH if item 1 is read back as u32.
	_, err = got.Objects[1].Uint32()
	require.Error(t, err)
	assert.Equal(t, hxerr.KindMismatch, hxerr.CodeOf(err))
}

func TestBPutResponseRoundTrip(t *testing.T) {
	resp := NewBPutResponse(2, 1, 2)
	resp.Add(StatusOK)
	resp.Add(StatusOK)
	packed := PackBPutResponse(resp)
	assert.Equal(t, resp.Size(), len(packed))

	got, err := UnpackBPutResponse(packed)
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusOK, StatusOK}, got.Statuses)
}

func TestBGetRoundTrip(t *testing.T) {
	req := NewBGetRequest(0, 1, 1)
	req.Add(0, blob.NewOwned([]byte("alice"), blob.Bytes), blob.NewOwned([]byte("age"), blob.Bytes), blob.Uint32)
	packed := PackBGetRequest(req)
	assert.Equal(t, req.Size(), len(packed))

	got, err := UnpackBGetRequest(packed)
	require.NoError(t, err)
	assert.Equal(t, blob.Uint32, got.ObjectKinds[0])

	resp := NewBGetResponse(1, 0, 1)
	resp.Add(StatusOK, blob.FromUint32(30))
	packedResp := PackBGetResponse(resp)
	assert.Equal(t, resp.Size(), len(packedResp))

	gotResp, err := UnpackBGetResponse(packedResp)
	require.NoError(t, err)
	v, err := gotResp.Objects[0].Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(30), v)
}

func TestBGetOpRoundTrip(t *testing.T) {
	req := NewBGetOpRequest(0, 1, 1)
	req.Add(0, blob.FromFloat64(-1.5), blob.NewOwned([]byte("v"), blob.Bytes), blob.Uint32, GT, 10)
	packed := PackBGetOpRequest(req)
	assert.Equal(t, req.Size(), len(packed))

	got, err := UnpackBGetOpRequest(packed)
	require.NoError(t, err)
	assert.Equal(t, GT, got.Comparators[0])
	assert.Equal(t, uint64(10), got.NRecords[0])

	resp := NewBGetOpResponse(1, 0, 2)
	resp.Add(StatusOK, blob.FromUint32(1))
	resp.Add(StatusOK, blob.FromUint32(2))
	packedResp := PackBGetOpResponse(resp)
	assert.Equal(t, resp.Size(), len(packedResp))

	gotResp, err := UnpackBGetOpResponse(packedResp)
	require.NoError(t, err)
	assert.Len(t, gotResp.Objects, 2)
}

func TestBDeleteNotFoundDoesNotAbortBatch(t *testing.T) {
	req := NewBDeleteRequest(0, 1, 1)
	req.Add(0, blob.NewOwned([]byte("ghost"), blob.Bytes), blob.NewOwned([]byte("p"), blob.Bytes))
	packed := PackBDeleteRequest(req)
	assert.Equal(t, req.Size(), len(packed))

	resp := NewBDeleteResponse(1, 0, 1)
	resp.Add(StatusNotFound)
	packedResp := PackBDeleteResponse(resp)

	got, err := UnpackBDeleteResponse(packedResp)
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusNotFound}, got.Statuses)
}

func TestBHistogramRoundTrip(t *testing.T) {
	req := NewBHistogramRequest(0, 1, 1)
	req.Add(0, "latency")
	packed := PackBHistogramRequest(req)
	assert.Equal(t, req.Size(), len(packed))

	got, err := UnpackBHistogramRequest(packed)
	require.NoError(t, err)
	assert.Equal(t, "latency", got.Names[0])

	resp := NewBHistogramResponse(1, 0, 1)
	resp.Add(StatusOK, []Bucket{{Edge: 0, Count: 1}, {Edge: 25, Count: 1}, {Edge: 50, Count: 1}, {Edge: 75, Count: 1}})
	packedResp := PackBHistogramResponse(resp)
	assert.Equal(t, resp.Size(), len(packedResp))

	gotResp, err := UnpackBHistogramResponse(packedResp)
	require.NoError(t, err)
	require.Len(t, gotResp.Buckets[0], 4)
	assert.Equal(t, uint64(1), gotResp.Buckets[0][3].Count)
	assert.Equal(t, float64(75), gotResp.Buckets[0][3].Edge)
}

func TestBSyncRoundTrip(t *testing.T) {
	req := NewBSyncRequest(0, 1, 2)
	req.Add(0)
	req.Add(1)
	packed := PackBSyncRequest(req)
	assert.Equal(t, req.Size(), len(packed))

	got, err := UnpackBSyncRequest(packed)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, got.DatastoreIDs)
}

func TestUnpackTruncatedIsMsgTruncated(t *testing.T) {
	req := NewBPutRequest(0, 1, 1)
	req.Add(0, blob.NewOwned([]byte("a"), blob.Bytes), blob.NewOwned([]byte("b"), blob.Bytes), blob.FromUint32(1))
	packed := PackBPutRequest(req)

	for cut := 0; cut < len(packed); cut++ {
		_, err := UnpackBPutRequest(packed[:cut])
		require.Error(t, err)
		assert.Equal(t, hxerr.MsgTruncated, hxerr.CodeOf(err), "cut at %d", cut)
	}
}

func TestUnpackUnknownOpcode(t *testing.T) {
	req := NewBPutRequest(0, 1, 0)
	packed := PackBPutRequest(req)
	packed[1] = 0xFF // corrupt Op byte
	_, err := UnpackRequest(packed)
	require.Error(t, err)
	assert.Equal(t, hxerr.MsgOpcode, hxerr.CodeOf(err))
}

func TestDispatchRoutesByOp(t *testing.T) {
	req := NewBGetRequest(0, 1, 1)
	req.Add(0, blob.NewOwned([]byte("s"), blob.Bytes), blob.NewOwned([]byte("p"), blob.Bytes), blob.Bytes)
	packed := PackBGetRequest(req)

	msg, err := UnpackRequest(packed)
	require.NoError(t, err)
	_, ok := msg.(*BGetRequest)
	assert.True(t, ok)
}

func TestEmptyBulkRoundTrips(t *testing.T) {
	req := NewBPutRequest(0, 1, 0)
	packed := PackBPutRequest(req)
	assert.Equal(t, headerSize, len(packed))

	got, err := UnpackBPutRequest(packed)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.Count)
}
