package directbuf

import (
	"fmt"
	"image/color"
)

// ChannelPolicy decides how an out-of-range channel value is reduced to
// 8 bits.
type ChannelPolicy int

const (
	// WrapChannels keeps the low 8 bits (value mod 256).
	WrapChannels ChannelPolicy = iota
	// ClampChannels saturates to [0, 255].
	ClampChannels
)

// String returns "wrap" or "clamp".
func (p ChannelPolicy) String() string {
	switch p {
	case WrapChannels:
		return "wrap"
	case ClampChannels:
		return "clamp"
	default:
		return fmt.Sprintf("ChannelPolicy(%d)", int(p))
	}
}

func (p ChannelPolicy) channel(v int) uint32 {
	if p == ClampChannels {
		return uint32(min(max(v, 0), 255))
	}
	return uint32(v) & 0xFF
}

// Pack encodes 8-bit channels as the renderer's packed color, wrapping
// out-of-range values. Three channels are r, g, b with alpha 255; four are
// a, r, g, b. The result is (a<<24)|(r<<16)|(g<<8)|b read as a signed
// 32-bit integer, so opaque colors are negative.
//
//	Pack(0, 0, 255)       // -16776961 (opaque blue)
//	Pack(128, 255, 0, 0)  // -2130771968 (half-transparent red)
func Pack(channels ...int) (int32, error) {
	return PackWith(WrapChannels, channels...)
}

// PackWith is Pack with an explicit channel policy.
func PackWith(policy ChannelPolicy, channels ...int) (int32, error) {
	var a, r, g, b int
	switch len(channels) {
	case 3:
		a = 255
		r, g, b = channels[0], channels[1], channels[2]
	case 4:
		a, r, g, b = channels[0], channels[1], channels[2], channels[3]
	default:
		return 0, newError("pack", CodeInvalidArgument,
			fmt.Sprintf("want 3 or 4 channels, got %d", len(channels)), nil)
	}
	u := policy.channel(a)<<24 | policy.channel(r)<<16 | policy.channel(g)<<8 | policy.channel(b)
	return int32(u), nil
}

// PackColor packs any color.Color. Premultiplied colors are converted to
// straight alpha first.
func PackColor(c color.Color) int32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return int32(uint32(n.A)<<24 | uint32(n.R)<<16 | uint32(n.G)<<8 | uint32(n.B))
}
