//go:build ignore

//kage:unit pixels

package main

// Strength is how far, as a fraction of the image size, a unit push moves
// a pixel.
var Strength float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	origin := imageSrc0Origin()
	size := imageSrc0Size()

	// Image 1 holds the field upscaled to the source size, encoded as
	// 128 + 127*v per channel.
	push := imageSrc1At(srcPos)
	offset := (push.rg*255 - 128) / 127

	at := clamp(srcPos-offset*Strength*size, origin, origin+size-1)
	return imageSrc0At(at)
}
