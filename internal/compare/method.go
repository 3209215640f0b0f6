package compare

// Method records which fallback strategy produced the alignment. It is
// carried on every result for observability and regression debugging.
type Method string

const (
	// MethodHintGuided is coarse-to-fine DTW anchored on validated
	// recognizer timestamps, inside VAD-trimmed curves.
	MethodHintGuided Method = "hint_guided"
	// MethodVADGuided is whole-curve DTW on VAD-trimmed curves.
	MethodVADGuided Method = "vad_guided"
	// MethodRaw is whole-curve DTW with no preprocessing.
	MethodRaw Method = "raw"
	// MethodReject short-circuits with a fixed insufficient-recording
	// result; no DTW runs at all.
	MethodReject Method = "reject"
)
