package model

import (
	"fmt"
	"strings"
)

// Zone is a MIBEL bidding zone.
// Keep these values stable; they are intended for CSV output.
type Zone string

const (
	ZonePT Zone = "PT"
	ZoneES Zone = "ES"
)

// Zones lists the two market zones in a fixed order.
func Zones() [2]Zone { return [2]Zone{ZonePT, ZoneES} }

// Other returns the zone on the far side of the interconnector.
func (z Zone) Other() Zone {
	if z == ZonePT {
		return ZoneES
	}
	return ZonePT
}

func ParseZone(s string) (Zone, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PT":
		return ZonePT, nil
	case "ES":
		return ZoneES, nil
	default:
		return "", fmt.Errorf("unknown zone: %q", s)
	}
}

// Direction is the side of the market a bid is on.
type Direction string

const (
	Supply Direction = "SUPPLY"
	Demand Direction = "DEMAND"
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUPPLY", "SELL":
		return Supply, nil
	case "DEMAND", "BUY":
		return Demand, nil
	default:
		return "", fmt.Errorf("unknown direction: %q", s)
	}
}
