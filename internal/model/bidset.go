package model

import "fmt"

type bidKey struct {
	zone Zone
	dir  Direction
}

// HourlyBidSet is the full collection of bids active in one hour,
// indexed by (zone, direction). It is built once and never mutated;
// the clearing formulator consumes it exactly once.
type HourlyBidSet struct {
	hour  int
	all   []Bid
	byKey map[bidKey][]Bid
}

// NewHourlyBidSet validates that every bid belongs to the given hour and
// partitions the bids by (zone, direction). The slice is copied so later
// mutation of the caller's slice cannot leak into the set.
func NewHourlyBidSet(hour int, bids []Bid) (HourlyBidSet, error) {
	if hour < 0 || hour >= HoursPerDay {
		return HourlyBidSet{}, fmt.Errorf("hour %d out of range [0,%d]", hour, HoursPerDay-1)
	}
	set := HourlyBidSet{
		hour:  hour,
		all:   make([]Bid, 0, len(bids)),
		byKey: make(map[bidKey][]Bid),
	}
	for i, b := range bids {
		if err := b.Validate(); err != nil {
			return HourlyBidSet{}, fmt.Errorf("bid %d: %w", i, err)
		}
		if b.Hour != hour {
			return HourlyBidSet{}, fmt.Errorf("bid %d: hour %d does not match set hour %d", i, b.Hour, hour)
		}
		set.all = append(set.all, b)
		k := bidKey{zone: b.Zone, dir: b.Direction}
		set.byKey[k] = append(set.byKey[k], b)
	}
	return set, nil
}

func (s HourlyBidSet) Hour() int { return s.hour }
func (s HourlyBidSet) Len() int  { return len(s.all) }

// All returns the bids in insertion order. Callers must not mutate the
// returned slice.
func (s HourlyBidSet) All() []Bid { return s.all }

// Of returns the bids for one (zone, direction) partition.
func (s HourlyBidSet) Of(z Zone, d Direction) []Bid {
	return s.byKey[bidKey{zone: z, dir: d}]
}

// Empty reports whether a zone has no bids at all, in either direction.
func (s HourlyBidSet) Empty(z Zone) bool {
	return len(s.Of(z, Supply)) == 0 && len(s.Of(z, Demand)) == 0
}

// DayBids holds the 24 hourly bid sets of one session, indexed by hour.
type DayBids [HoursPerDay]HourlyBidSet

// PartitionByHour splits a day's bids into 24 hourly sets. Hours with no
// bids yield empty sets; whether an empty hour is an error is the clearing
// engine's call, not the partitioner's.
func PartitionByHour(bids []Bid) (DayBids, error) {
	var buckets [HoursPerDay][]Bid
	for i, b := range bids {
		if err := b.Validate(); err != nil {
			return DayBids{}, fmt.Errorf("bid %d: %w", i, err)
		}
		buckets[b.Hour] = append(buckets[b.Hour], b)
	}
	var day DayBids
	for h := 0; h < HoursPerDay; h++ {
		set, err := NewHourlyBidSet(h, buckets[h])
		if err != nil {
			return DayBids{}, fmt.Errorf("hour %d: %w", h, err)
		}
		day[h] = set
	}
	return day, nil
}
