package catalog

import (
	"errors"
	"reflect"
	"testing"
)

func sampleRaw() RawDetails {
	return RawDetails{
		HotelID: "H1",
		Name:    "Hotel Aurora",
		TraceID: "trace-9",
		Rooms: map[string]RoomInfo{
			"room-a": {Name: "Deluxe Double"},
			"room-b": {Name: "Junior Suite"},
		},
		Rates: map[string]RateInfo{
			"rate-1": {
				FinalRate: 180,
				Currency:  "EUR",
				Occupancies: []RateOccupancy{
					{RoomID: "room-a", NumOfAdults: 2},
				},
			},
			"rate-2": {
				FinalRate: 260,
				Currency:  "EUR",
				Occupancies: []RateOccupancy{
					{RoomID: "room-b", NumOfAdults: 2, ChildAges: []int{7}},
				},
			},
		},
		Recommendations: map[string]Recommendation{
			"rec-cheap": {RateIDs: []string{"rate-1"}},
			"rec-both":  {RateIDs: []string{"rate-1", "rate-2"}},
		},
	}
}

func TestNormalizeFillsIdentifiers(t *testing.T) {
	cat := Normalize(sampleRaw(), nil)
	if cat.Rooms["room-a"].ID != "room-a" {
		t.Fatalf("room id not backfilled: %+v", cat.Rooms["room-a"])
	}
	if cat.Rates["rate-1"].ID != "rate-1" {
		t.Fatalf("rate id not backfilled: %+v", cat.Rates["rate-1"])
	}
	if cat.Recommendations["rec-both"].ID != "rec-both" {
		t.Fatalf("recommendation id not backfilled: %+v", cat.Recommendations["rec-both"])
	}
}

func TestNormalizeMissingSections(t *testing.T) {
	cat := Normalize(RawDetails{HotelID: "H2"}, nil)
	if cat.Rooms == nil || cat.Rates == nil || cat.Recommendations == nil {
		t.Fatalf("sections must never be nil: %+v", cat)
	}
	if len(cat.Rooms)+len(cat.Rates)+len(cat.Recommendations) != 0 {
		t.Fatalf("expected empty catalog, got %+v", cat)
	}
}

func TestNormalizeDropsBrokenRecommendations(t *testing.T) {
	raw := sampleRaw()
	raw.Recommendations["rec-dangling"] = Recommendation{RateIDs: []string{"rate-1", "missing"}}
	raw.Recommendations["rec-empty"] = Recommendation{}
	cat := Normalize(raw, nil)
	if _, ok := cat.Recommendations["rec-dangling"]; ok {
		t.Fatal("recommendation with unknown rate id survived normalization")
	}
	if _, ok := cat.Recommendations["rec-empty"]; ok {
		t.Fatal("empty recommendation survived normalization")
	}
	if len(cat.Recommendations) != 2 {
		t.Fatalf("recommendations = %d, want 2", len(cat.Recommendations))
	}
}

func TestListRecommendationsSortedByPrice(t *testing.T) {
	cat := Normalize(sampleRaw(), nil)
	got := cat.ListRecommendations(nil)
	if len(got) != 2 {
		t.Fatalf("summaries = %d, want 2", len(got))
	}
	if got[0].ID != "rec-cheap" || got[0].TotalPrice != 180 {
		t.Fatalf("first summary = %+v, want rec-cheap at 180", got[0])
	}
	if got[1].ID != "rec-both" || got[1].TotalPrice != 440 || got[1].RatesCount != 2 {
		t.Fatalf("second summary = %+v, want rec-both at 440", got[1])
	}
	if got[0].Currency != "EUR" || got[0].MixedCurrency {
		t.Fatalf("currency summary = %+v, want plain EUR", got[0])
	}
}

func TestListRecommendationsFlagsMixedCurrency(t *testing.T) {
	raw := sampleRaw()
	rate := raw.Rates["rate-2"]
	rate.Currency = "USD"
	raw.Rates["rate-2"] = rate
	cat := Normalize(raw, nil)
	for _, summary := range cat.ListRecommendations(nil) {
		if summary.ID == "rec-both" && !summary.MixedCurrency {
			t.Fatalf("rec-both = %+v, want MixedCurrency", summary)
		}
	}
}

func TestResolve(t *testing.T) {
	cat := Normalize(sampleRaw(), nil)
	got, err := Resolve("rec-both", cat)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []Allocation{
		{RateID: "rate-1", RoomID: "room-a", Occupancy: AllocationOccupancy{Adults: 2}},
		{RateID: "rate-2", RoomID: "room-b", Occupancy: AllocationOccupancy{Adults: 2, ChildAges: []int{7}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("allocations = %+v, want %+v", got, want)
	}
}

func TestResolveUnknownRecommendation(t *testing.T) {
	cat := Normalize(sampleRaw(), nil)
	if _, err := Resolve("nope", cat); !errors.Is(err, ErrUnknownRecommendation) {
		t.Fatalf("err = %v, want ErrUnknownRecommendation", err)
	}
}

func TestResolveAllOrNothing(t *testing.T) {
	raw := sampleRaw()
	rate := raw.Rates["rate-2"]
	rate.Occupancies = []RateOccupancy{{NumOfAdults: 2}}
	raw.Rates["rate-2"] = rate
	cat := Normalize(raw, nil)

	_, err := Resolve("rec-both", cat)
	var incomplete *IncompleteRateDataError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want IncompleteRateDataError", err)
	}
	if incomplete.RateID != "rate-2" {
		t.Fatalf("rate id = %q, want rate-2", incomplete.RateID)
	}
}

func TestResolveRejectsUnknownRoomReference(t *testing.T) {
	raw := RawDetails{
		HotelID: "H3",
		Rates: map[string]RateInfo{
			"rate-1": {
				FinalRate:   150,
				Currency:    "EUR",
				Occupancies: []RateOccupancy{{RoomID: "ghost-room", NumOfAdults: 2}},
			},
		},
		Recommendations: map[string]Recommendation{
			"rec-1": {RateIDs: []string{"rate-1"}},
		},
	}
	cat := Normalize(raw, nil)

	_, err := Resolve("rec-1", cat)
	var incomplete *IncompleteRateDataError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want IncompleteRateDataError", err)
	}
	if incomplete.RateID != "rate-1" {
		t.Fatalf("rate id = %q, want rate-1", incomplete.RateID)
	}
}

func TestResolveNoOccupancyData(t *testing.T) {
	raw := sampleRaw()
	rate := raw.Rates["rate-1"]
	rate.Occupancies = nil
	raw.Rates["rate-1"] = rate
	cat := Normalize(raw, nil)

	_, err := Resolve("rec-cheap", cat)
	var incomplete *IncompleteRateDataError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want IncompleteRateDataError", err)
	}
	if incomplete.RateID != "rate-1" {
		t.Fatalf("rate id = %q, want rate-1", incomplete.RateID)
	}
}
