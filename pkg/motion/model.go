package motion

// Model is the live parameter store motions write into.
//
// ParameterIndex returns -1 for unknown ids unless the implementation hands
// out phantom slots, in which case get and set on those slots must stay
// well-defined. SetParameterValue blends value into the current value by
// weight and clamps it to the declared range.
type Model interface {
	ParameterIndex(id string) int
	ParameterValue(index int) float64
	SetParameterValue(index int, value, weight float64)
	ParameterMin(index int) float64
	ParameterMax(index int) float64
}

// RepeatModel is implemented by models with wrap-around parameters. Values
// for a repeat parameter are folded back into range instead of clamped.
type RepeatModel interface {
	IsRepeat(index int) bool
	RepeatValue(index int, value float64) float64
}

// PartModel is implemented by models that store part opacities separately
// from parameters. Models without it receive part opacity curves through the
// parameter table.
type PartModel interface {
	PartIndex(id string) int
	SetPartOpacity(index int, opacity float64)
}
