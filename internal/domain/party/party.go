package party

import (
	"errors"
	"fmt"
)

const (
	maxAdultsPerRoom   = 6
	maxChildrenPerRoom = 4
	adultAgeMin        = 18
	adultAgeMax        = 120
	childAgeMax        = 17
)

var ErrEmptyParty = errors.New("party: at least one room is required")

// InvalidPartyError reports which room of the configuration is unbookable and why.
type InvalidPartyError struct {
	Room   int
	Reason string
}

func (e *InvalidPartyError) Error() string {
	return fmt.Sprintf("party: room %d: %s", e.Room+1, e.Reason)
}

// Room holds the traveller ages chosen in the search UI. A nil age means the
// agent left the selector untouched; the count still matters for pricing.
type Room struct {
	Adults   []*int
	Children []*int
}

// PartyConfiguration is the ordered room list as configured by the agent.
type PartyConfiguration []Room

// Occupancy is the provider wire shape for a single room.
type Occupancy struct {
	NumOfAdults int   `json:"numOfAdults"`
	ChildAges   []int `json:"childAges"`
}

// ToOccupancies converts a party configuration into provider occupancies,
// one entry per room. Children without a selected age are sent as age 0.
func ToOccupancies(party PartyConfiguration) ([]Occupancy, error) {
	if len(party) == 0 {
		return nil, ErrEmptyParty
	}
	out := make([]Occupancy, 0, len(party))
	for i, room := range party {
		if len(room.Adults) == 0 {
			return nil, &InvalidPartyError{Room: i, Reason: "at least one adult is required"}
		}
		if len(room.Adults) > maxAdultsPerRoom {
			return nil, &InvalidPartyError{Room: i, Reason: fmt.Sprintf("at most %d adults allowed", maxAdultsPerRoom)}
		}
		if len(room.Children) > maxChildrenPerRoom {
			return nil, &InvalidPartyError{Room: i, Reason: fmt.Sprintf("at most %d children allowed", maxChildrenPerRoom)}
		}
		for _, age := range room.Adults {
			if age == nil {
				continue
			}
			if *age < adultAgeMin || *age > adultAgeMax {
				return nil, &InvalidPartyError{Room: i, Reason: fmt.Sprintf("adult age %d out of range [%d,%d]", *age, adultAgeMin, adultAgeMax)}
			}
		}
		childAges := make([]int, 0, len(room.Children))
		for _, age := range room.Children {
			if age == nil {
				childAges = append(childAges, 0)
				continue
			}
			if *age < 0 || *age > childAgeMax {
				return nil, &InvalidPartyError{Room: i, Reason: fmt.Sprintf("child age %d out of range [0,%d]", *age, childAgeMax)}
			}
			childAges = append(childAges, *age)
		}
		out = append(out, Occupancy{NumOfAdults: len(room.Adults), ChildAges: childAges})
	}
	return out, nil
}

// TotalAdults counts adults across all rooms, never less than one. The price
// point conversion divides by this figure, so zero would poison every budget.
func TotalAdults(party PartyConfiguration) int {
	total := 0
	for _, room := range party {
		total += len(room.Adults)
	}
	if total < 1 {
		return 1
	}
	return total
}
