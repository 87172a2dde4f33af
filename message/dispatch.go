package message

import "github.com/ledgerwatch/hxhim/hxerr"

// Message is satisfied by every request and response type; it lets the
// transport and executor layers carry any bulk message without a type
// switch at the send/recv boundary.
type Message interface {
	Pack() []byte
}

func (r *BPutRequest) Pack() []byte        { return PackBPutRequest(r) }
func (r *BPutResponse) Pack() []byte       { return PackBPutResponse(r) }
func (r *BGetRequest) Pack() []byte        { return PackBGetRequest(r) }
func (r *BGetResponse) Pack() []byte       { return PackBGetResponse(r) }
func (r *BGetOpRequest) Pack() []byte      { return PackBGetOpRequest(r) }
func (r *BGetOpResponse) Pack() []byte     { return PackBGetOpResponse(r) }
func (r *BDeleteRequest) Pack() []byte     { return PackBDeleteRequest(r) }
func (r *BDeleteResponse) Pack() []byte    { return PackBDeleteResponse(r) }
func (r *BHistogramRequest) Pack() []byte  { return PackBHistogramRequest(r) }
func (r *BHistogramResponse) Pack() []byte { return PackBHistogramResponse(r) }
func (r *BSyncRequest) Pack() []byte       { return PackBSyncRequest(r) }
func (r *BSyncResponse) Pack() []byte      { return PackBSyncResponse(r) }

// PeekHeader inspects a packed buffer's header without consuming the rest,
// so a receiver can decide which Unpack<Type><Direction> to call.
func PeekHeader(buf []byte) (Header, error) {
	h, _, err := unpackHeader(buf)
	return h, err
}

// UnpackRequest dispatches on Op and returns the concrete request type as a
// Message. Direction must be Request; a Response buffer is rejected with
// MSG_OPCODE.
func UnpackRequest(buf []byte) (Message, error) {
	h, err := PeekHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Direction != Request {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a request")
	}
	switch h.Op {
	case BPut:
		return UnpackBPutRequest(buf)
	case BGet:
		return UnpackBGetRequest(buf)
	case BGetOp:
		return UnpackBGetOpRequest(buf)
	case BDelete:
		return UnpackBDeleteRequest(buf)
	case BHistogram:
		return UnpackBHistogramRequest(buf)
	case BSync:
		return UnpackBSyncRequest(buf)
	default:
		return nil, hxerr.New(hxerr.MsgOpcode, "unknown op")
	}
}

// UnpackResponse dispatches on Op and returns the concrete response type as
// a Message. Direction must be Response.
func UnpackResponse(buf []byte) (Message, error) {
	h, err := PeekHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Direction != Response {
		return nil, hxerr.New(hxerr.MsgOpcode, "not a response")
	}
	switch h.Op {
	case BPut:
		return UnpackBPutResponse(buf)
	case BGet:
		return UnpackBGetResponse(buf)
	case BGetOp:
		return UnpackBGetOpResponse(buf)
	case BDelete:
		return UnpackBDeleteResponse(buf)
	case BHistogram:
		return UnpackBHistogramResponse(buf)
	case BSync:
		return UnpackBSyncResponse(buf)
	default:
		return nil, hxerr.New(hxerr.MsgOpcode, "unknown op")
	}
}
