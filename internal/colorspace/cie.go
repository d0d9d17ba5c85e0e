package colorspace

// WhiteD65 is the CIE 1931 2° reference white used for every LAB conversion
var WhiteD65 = [3]float32{95.047, 100.000, 108.883}

const (
	// LabEpsilon is the breakpoint between the cube-root and linear segments
	LabEpsilon float32 = 0.008856
	labKappa   float32 = 7.787
	labOffset  float32 = 16.0 / 116.0
)

func labCompress(t float32) float32 {
	if t > LabEpsilon {
		return cbrt32(t)
	}
	return labKappa*t + labOffset
}

func labUncompress(f float32) float32 {
	if f3 := f * f * f; f3 > LabEpsilon {
		return f3
	}
	return (f - labOffset) / labKappa
}

func xyzToLAB(c Color) Color {
	fx := labCompress(c.V[0] / WhiteD65[0])
	fy := labCompress(c.V[1] / WhiteD65[1])
	fz := labCompress(c.V[2] / WhiteD65[2])
	return NewLAB(116*fy-16, 500*(fx-fy), 200*(fy-fz))
}

func labToXYZ(c Color) Color {
	fy := (c.V[0] + 16) / 116
	fx := c.V[1]/500 + fy
	fz := fy - c.V[2]/200
	return NewXYZ(
		labUncompress(fx)*WhiteD65[0],
		labUncompress(fy)*WhiteD65[1],
		labUncompress(fz)*WhiteD65[2],
	)
}
