package colorspace

// Linear RGB to XYZ for the sRGB primaries under D65. XYZ is scaled by 100
// after the forward matrix and divided by 100 before the inverse one.
var (
	rgbToXYZ = [3][3]float32{
		{0.4124564, 0.3575761, 0.1804375},
		{0.2126729, 0.7151522, 0.0721750},
		{0.0193339, 0.119192, 0.9503041},
	}
	xyzToRGB = [3][3]float32{
		{3.2404542, -1.5371385, -0.4985314},
		{-0.969266, 1.8760108, 0.0415560},
		{0.0556434, -0.2040259, 1.0572252},
	}
)

// ToLinear decodes one gamma-encoded sRGB channel
func ToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return pow32((v+0.055)/1.055, 2.4)
}

// FromLinear encodes one linear channel, clamping the result to [0,1]
func FromLinear(v float32) float32 {
	if v <= 0.0031308 {
		return clamp01(v * 12.92)
	}
	return clamp01(1.055*pow32(v, 1/2.4) - 0.055)
}

func srgbToXYZ(c Color) Color {
	lin := [3]float32{ToLinear(c.V[0]), ToLinear(c.V[1]), ToLinear(c.V[2])}
	v := mul(&rgbToXYZ, lin)
	return NewXYZ(v[0]*100, v[1]*100, v[2]*100)
}

func xyzToSRGB(c Color) Color {
	lin := mul(&xyzToRGB, [3]float32{c.V[0] / 100, c.V[1] / 100, c.V[2] / 100})
	return NewSRGB(FromLinear(lin[0]), FromLinear(lin[1]), FromLinear(lin[2]))
}
