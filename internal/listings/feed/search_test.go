package feed

import "testing"

func intp(v int) *int          { return &v }
func floatp(v float64) *float64 { return &v }

func sampleListings() []Listing {
	return []Listing{
		{Address: "10 Oak St", City: "Springfield", Beds: 3, Baths: 2, Sqft: 1800, Price: 350000, Acres: 0.3, Status: "active"},
		{Address: "22 Elm Ave", City: "Springfield", Beds: 4, Baths: 3, Sqft: 2600, Price: 520000, Acres: 0.5, Status: "pending"},
		{Address: "7 Pine Rd", City: "Shelbyville", Beds: 3, Baths: 2, Sqft: 1750, Price: 340000, Acres: 0.25, Status: "active"},
		{Address: "90 Lake Dr", City: "Springfield", Beds: 5, Baths: 4, Sqft: 4200, Price: 990000, Acres: 2.1, Status: "sold"},
	}
}

func TestSearchRanksByDeviation(t *testing.T) {
	got := Search(sampleListings(), Query{Beds: intp(4), Limit: 2})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Address != "22 Elm Ave" {
		t.Errorf("top result = %s, want 22 Elm Ave", got[0].Address)
	}
}

func TestSearchStatusRankBreaksTies(t *testing.T) {
	items := []Listing{
		{Address: "A", Beds: 3, Price: 300000, Status: "pending"},
		{Address: "B", Beds: 3, Price: 300000, Status: "active"},
		{Address: "C", Beds: 3, Price: 300000, Status: "sold"},
	}
	got := Search(items, Query{Beds: intp(3)})
	if got[0].Address != "B" || got[1].Address != "A" || got[2].Address != "C" {
		t.Errorf("status order wrong: %s %s %s", got[0].Address, got[1].Address, got[2].Address)
	}
}

func TestSearchPriceBreaksRemainingTies(t *testing.T) {
	items := []Listing{
		{Address: "cheap", Beds: 3, Price: 200000, Status: "active"},
		{Address: "dear", Beds: 3, Price: 400000, Status: "active"},
	}
	got := Search(items, Query{Beds: intp(3)})
	if got[0].Address != "dear" {
		t.Errorf("descending price tie-break failed: top = %s", got[0].Address)
	}
}

func TestSearchPriceRangeScoring(t *testing.T) {
	got := Search(sampleListings(), Query{PriceMax: intp(360000), Limit: 1})
	if got[0].Price > 360000 {
		t.Errorf("top result exceeds budget: %d", got[0].Price)
	}
}

func TestSearchLocationFilter(t *testing.T) {
	got := Search(sampleListings(), Query{Location: "shelbyville"})
	if len(got) != 1 || got[0].Address != "7 Pine Rd" {
		t.Errorf("location filter result: %+v", got)
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	items := make([]Listing, 0, 8)
	for i := 0; i < 8; i++ {
		items = append(items, Listing{Address: "X", Beds: 3, Status: "active"})
	}
	if got := Search(items, Query{}); len(got) != DefaultLimit {
		t.Errorf("len = %d, want %d", len(got), DefaultLimit)
	}
}

func TestSearchAcreage(t *testing.T) {
	got := Search(sampleListings(), Query{AcreageMin: floatp(2.0), Limit: 1})
	if got[0].Address != "90 Lake Dr" {
		t.Errorf("acreage search top = %s", got[0].Address)
	}
}
