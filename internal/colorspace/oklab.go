package colorspace

// OKLab matrices as published by Björn Ottosson, operating on XYZ in [0,1]
var (
	xyzToLMS = [3][3]float32{
		{0.8189330101, 0.3618667424, -0.1288597137},
		{0.0329845436, 0.9293118715, 0.0361456387},
		{0.0482003018, 0.2643662691, 0.6338517070},
	}
	lmsToOKLab = [3][3]float32{
		{0.2104542553, 0.7936177850, -0.0040720468},
		{1.9779984951, -2.4285922050, 0.4505937099},
		{0.0259040371, 0.7827717662, -0.8086757660},
	}
	okLabToLMS = [3][3]float32{
		{1.0, 0.3963377774, 0.2158037573},
		{1.0, -0.1055613458, -0.0638541728},
		{1.0, -0.0894841775, -1.2914855480},
	}
	lmsToXYZ = [3][3]float32{
		{1.2270138511, -0.5577999807, 0.2812561490},
		{-0.0405801784, 1.1122568696, -0.0716766787},
		{-0.0763812845, -0.4214819784, 1.5861632204},
	}
)

func xyzToOKLAB(c Color) Color {
	lms := mul(&xyzToLMS, [3]float32{c.V[0] / 100, c.V[1] / 100, c.V[2] / 100})
	lms = [3]float32{cbrt32(lms[0]), cbrt32(lms[1]), cbrt32(lms[2])}
	v := mul(&lmsToOKLab, lms)
	return NewOKLAB(v[0], v[1], v[2])
}

func oklabToXYZ(c Color) Color {
	lms := mul(&okLabToLMS, c.V)
	lms = [3]float32{lms[0] * lms[0] * lms[0], lms[1] * lms[1] * lms[1], lms[2] * lms[2] * lms[2]}
	v := mul(&lmsToXYZ, lms)
	return NewXYZ(v[0]*100, v[1]*100, v[2]*100)
}
