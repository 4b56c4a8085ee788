package quality

// Metrics are the raw measurements behind a quality verdict.
type Metrics struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	HasFace    bool    `json:"has_face"`
	Resolution int     `json:"resolution"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Thresholds are the minimums an image must clear to pass.
type Thresholds struct {
	MinBrightness     float64
	MinContrast       float64
	MinResolution     int
	MinFaceConfidence float64
}

// DefaultThresholds returns brightness 40, contrast 20, resolution 224 and
// face confidence 0.5.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinBrightness:     40,
		MinContrast:       20,
		MinResolution:     224,
		MinFaceConfidence: 0.5,
	}
}

// Pass reports whether m clears t. Brightness and contrast must be strictly
// greater than their minimums; resolution may equal its minimum.
func (t Thresholds) Pass(m Metrics) bool {
	return m.HasFace &&
		m.Brightness > t.MinBrightness &&
		m.Contrast > t.MinContrast &&
		m.Resolution >= t.MinResolution
}
