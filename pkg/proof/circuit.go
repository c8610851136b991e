// Package proof is the Groth16-verifying adapter the coordinator uses to
// gate every state transition on a zero-knowledge proof: a cache of
// verification keys keyed by circuit type, plus a bounded worker pool so
// CPU-bound verification in one room cannot starve another (spec §4.11,
// §5).
package proof

import "fmt"

// CircuitType is the closed, eight-variant tagged enum of circuits the
// coordinator ever verifies a proof against (spec §9: "represent
// CircuitType as a closed tagged enum... select the verification key via a
// fixed-size table keyed on the variant").
type CircuitType int

const (
	Shuffle CircuitType = iota
	Reshuffle
	AddKeys
	Mask
	Unmask
	GameAction
	HandEval
	Showdown

	numCircuitTypes
)

func (c CircuitType) String() string {
	switch c {
	case Shuffle:
		return "shuffle"
	case Reshuffle:
		return "reshuffle"
	case AddKeys:
		return "add_keys"
	case Mask:
		return "mask"
	case Unmask:
		return "unmask"
	case GameAction:
		return "game_action"
	case HandEval:
		return "hand_eval"
	case Showdown:
		return "showdown"
	default:
		return fmt.Sprintf("circuit(%d)", int(c))
	}
}

// ParseCircuitType maps a circuit name (as used in filenames and wire
// messages) back to its CircuitType.
func ParseCircuitType(name string) (CircuitType, error) {
	for c := CircuitType(0); c < numCircuitTypes; c++ {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("proof: unknown circuit %q", name)
}
