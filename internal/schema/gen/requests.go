package gen

import "github.com/telemtp/mtproto-go/internal/tl"

// GetDifferenceRequest is updates.getDifference, simplified to the fields
// internal/updates actually drives (pts_total_limit and the flags-gated
// variants are not exercised by this client).
type GetDifferenceRequest struct {
	Pts  int32
	Qts  int32
	Date int32
}

func (*GetDifferenceRequest) ConstructorID() uint32 { return 0x19c2f763 }

func (v *GetDifferenceRequest) Encode(w *tl.Writer) {
	w.UInt(0) // flags: no optional fields set
	w.Int(v.Pts)
	w.Int(v.Date)
	w.Int(v.Qts)
}

// GetChannelDifferenceRequest is updates.getChannelDifference, simplified
// to a bare channel id in place of the full InputChannel(access_hash)
// reference: a real deployment resolves that access hash from the entity
// cache (internal/storage) before calling this.
type GetChannelDifferenceRequest struct {
	ChannelID int64
	Pts       int32
	Limit     int32
}

func (*GetChannelDifferenceRequest) ConstructorID() uint32 { return 0x03173d78 }

func (v *GetChannelDifferenceRequest) Encode(w *tl.Writer) {
	w.UInt(0) // flags: force unset
	w.Long(v.ChannelID)
	w.Int(v.Pts)
	limit := v.Limit
	if limit == 0 {
		limit = 100
	}
	w.Int(limit)
}
