package motionjson

// MotionFile is the on-disk layout of a .motion3.json file.
type MotionFile struct {
	Version  int            `json:"Version"`
	Meta     Meta           `json:"Meta"`
	Curves   []CurveData    `json:"Curves"`
	UserData []UserDataItem `json:"UserData,omitempty"`
}

// Meta carries playback settings and the declared content counts.
type Meta struct {
	Duration             float64  `json:"Duration"`
	Fps                  float64  `json:"Fps"`
	Loop                 bool     `json:"Loop"`
	AreBeziersRestricted bool     `json:"AreBeziersRestricted"`
	FadeInTime           *float64 `json:"FadeInTime,omitempty"`
	FadeOutTime          *float64 `json:"FadeOutTime,omitempty"`
	CurveCount           int      `json:"CurveCount"`
	TotalSegmentCount    int      `json:"TotalSegmentCount"`
	TotalPointCount      int      `json:"TotalPointCount"`
	UserDataCount        int      `json:"UserDataCount"`
	TotalUserDataSize    int      `json:"TotalUserDataSize"`
}

// CurveData is one curve. Segments is the flat encoding: the first point's
// time and value, then for each segment its type tag followed by the
// segment's remaining points.
type CurveData struct {
	Target      string    `json:"Target"`
	ID          string    `json:"Id"`
	FadeInTime  *float64  `json:"FadeInTime,omitempty"`
	FadeOutTime *float64  `json:"FadeOutTime,omitempty"`
	Segments    []float64 `json:"Segments"`
}

// UserDataItem is a timed event label.
type UserDataItem struct {
	Time  float64 `json:"Time"`
	Value string  `json:"Value"`
}

// ExpressionFile is the on-disk layout of a .exp3.json file.
type ExpressionFile struct {
	Type        string                `json:"Type"`
	FadeInTime  *float64              `json:"FadeInTime,omitempty"`
	FadeOutTime *float64              `json:"FadeOutTime,omitempty"`
	Parameters  []ExpressionParamData `json:"Parameters"`
}

// ExpressionParamData is one expression parameter.
type ExpressionParamData struct {
	ID    string  `json:"Id"`
	Value float64 `json:"Value"`
	Blend string  `json:"Blend,omitempty"`
}
