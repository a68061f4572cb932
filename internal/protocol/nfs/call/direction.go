package call

import (
	"fmt"
	"strings"
)

// Direction says which side of the wire a call instance lives on.
type Direction uint8

const (
	// Incoming calls are decoded from bytes received from a peer.
	Incoming Direction = iota
	// Outgoing calls are encoded and pushed to the transport.
	Outgoing
)

func (d Direction) String() string {
	switch d {
	case Incoming:
		return "incoming"
	case Outgoing:
		return "outgoing"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection accepts "incoming"/"in" and "outgoing"/"out", in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incoming", "in":
		return Incoming, nil
	case "outgoing", "out":
		return Outgoing, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
