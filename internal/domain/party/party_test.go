package party

import (
	"errors"
	"reflect"
	"testing"
)

func age(v int) *int { return &v }

func TestToOccupancies(t *testing.T) {
	rooms := PartyConfiguration{
		{Adults: []*int{age(34), age(31)}, Children: []*int{age(6)}},
		{Adults: []*int{nil}, Children: []*int{nil, age(12)}},
	}
	got, err := ToOccupancies(rooms)
	if err != nil {
		t.Fatalf("ToOccupancies: %v", err)
	}
	want := []Occupancy{
		{NumOfAdults: 2, ChildAges: []int{6}},
		{NumOfAdults: 1, ChildAges: []int{0, 12}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("occupancies = %+v, want %+v", got, want)
	}
}

func TestToOccupanciesEmptyParty(t *testing.T) {
	if _, err := ToOccupancies(nil); !errors.Is(err, ErrEmptyParty) {
		t.Fatalf("err = %v, want ErrEmptyParty", err)
	}
}

func TestToOccupanciesInvalid(t *testing.T) {
	cases := []struct {
		name  string
		rooms PartyConfiguration
		room  int
	}{
		{
			name:  "no adults",
			rooms: PartyConfiguration{{Adults: []*int{age(30)}}, {Children: []*int{age(4)}}},
			room:  1,
		},
		{
			name:  "too many adults",
			rooms: PartyConfiguration{{Adults: []*int{age(30), age(30), age(30), age(30), age(30), age(30), age(30)}}},
			room:  0,
		},
		{
			name:  "too many children",
			rooms: PartyConfiguration{{Adults: []*int{age(30)}, Children: []*int{age(1), age(2), age(3), age(4), age(5)}}},
			room:  0,
		},
		{
			name:  "adult below minimum age",
			rooms: PartyConfiguration{{Adults: []*int{age(17)}}},
			room:  0,
		},
		{
			name:  "child above maximum age",
			rooms: PartyConfiguration{{Adults: []*int{age(30)}, Children: []*int{age(18)}}},
			room:  0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ToOccupancies(tc.rooms)
			var invalid *InvalidPartyError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want InvalidPartyError", err)
			}
			if invalid.Room != tc.room {
				t.Fatalf("room = %d, want %d", invalid.Room, tc.room)
			}
		})
	}
}

func TestTotalAdults(t *testing.T) {
	rooms := PartyConfiguration{
		{Adults: []*int{age(30), nil}},
		{Adults: []*int{age(44)}},
	}
	if got := TotalAdults(rooms); got != 3 {
		t.Fatalf("TotalAdults = %d, want 3", got)
	}
	if got := TotalAdults(nil); got != 1 {
		t.Fatalf("TotalAdults(nil) = %d, want 1", got)
	}
}
