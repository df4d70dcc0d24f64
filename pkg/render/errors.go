package render

import "fmt"

// Bridge operations named in a BridgeError.
const (
	OpSetText     = "set_text"
	OpRecomposite = "recomposite"
)

// BridgeError reports a failed call into the render bridge. Runtime state is
// never rolled back; the next request simply tries again.
type BridgeError struct {
	Op      string
	LayerID int // set for OpSetText
	Seq     uint64
	Err     error
}

func (e *BridgeError) Error() string {
	if e.Op == OpSetText {
		return fmt.Sprintf("render %s layer %d (seq %d): %v", e.Op, e.LayerID, e.Seq, e.Err)
	}
	return fmt.Sprintf("render %s (seq %d): %v", e.Op, e.Seq, e.Err)
}

func (e *BridgeError) Unwrap() error { return e.Err }
