package product

import (
	"testing"

	"github.com/angelmondragon/shophub/internal/catalog"
)

func TestSortProductsPriceDesc(t *testing.T) {
	items := []catalog.Product{{ID: 1, Price: 5}, {ID: 2, Price: 50}, {ID: 3, Price: 1}}
	got := SortProducts(items, SortPriceDesc)
	if got[0].Price != 50 || got[1].Price != 5 || got[2].Price != 1 {
		t.Fatalf("expected [50 5 1], got %v", []float64{got[0].Price, got[1].Price, got[2].Price})
	}
	if items[0].ID != 1 {
		t.Fatal("input slice was reordered")
	}
}

func TestSortProductsDefaultKeepsOrder(t *testing.T) {
	items := SortProducts([]catalog.Product{{ID: 1, Price: 9}, {ID: 2, Price: 1}, {ID: 3, Price: 5}}, SortPriceAsc)
	got := SortProducts(items, SortDefault)
	if !equalIDs(got, 2, 3, 1) {
		t.Fatalf("default sort changed order: %v", productIDs(got))
	}
	got[0].Title = "changed"
	if items[0].Title == "changed" {
		t.Fatal("default sort must return a copy")
	}
}

func TestSortProductsIsStable(t *testing.T) {
	items := []catalog.Product{
		{ID: 1, Price: 10},
		{ID: 2, Price: 5},
		{ID: 3, Price: 10},
		{ID: 4, Price: 5},
	}
	if got := SortProducts(items, SortPriceAsc); !equalIDs(got, 2, 4, 1, 3) {
		t.Fatalf("ties lost input order: %v", productIDs(got))
	}
	if got := SortProducts(items, SortPriceDesc); !equalIDs(got, 1, 3, 2, 4) {
		t.Fatalf("ties lost input order: %v", productIDs(got))
	}
}

func TestSortProductsRatingDescTreatsMissingAsZero(t *testing.T) {
	items := []catalog.Product{{ID: 1}, rated(2, 1, "a", 4.5), rated(3, 1, "a", 0), rated(4, 1, "a", 4.9)}
	if got := SortProducts(items, SortRatingDesc); !equalIDs(got, 4, 2, 1, 3) {
		t.Fatalf("unexpected rating order: %v", productIDs(got))
	}
}

func TestSortProductsByName(t *testing.T) {
	items := []catalog.Product{
		{ID: 1, Title: "banana"},
		{ID: 2, Title: "Apple"},
		{ID: 3, Title: "cherry"},
		{ID: 4, Title: "Éclair"},
	}
	if got := SortProducts(items, SortNameAsc); !equalIDs(got, 2, 1, 3, 4) {
		t.Fatalf("unexpected name-asc order: %v", productIDs(got))
	}
	if got := SortProducts(items, SortNameDesc); !equalIDs(got, 4, 3, 1, 2) {
		t.Fatalf("unexpected name-desc order: %v", productIDs(got))
	}
}

func TestSortProductsUnknownKeyIsIdentity(t *testing.T) {
	items := []catalog.Product{{ID: 3}, {ID: 1}}
	if got := SortProducts(items, SortKey("popularity")); !equalIDs(got, 3, 1) {
		t.Fatalf("unknown key reordered input: %v", productIDs(got))
	}
}

func TestParseSortKey(t *testing.T) {
	if key, err := ParseSortKey(""); err != nil || key != SortDefault {
		t.Fatalf("expected default for empty input, got %q %v", key, err)
	}
	if key, err := ParseSortKey(" Price-Desc "); err != nil || key != SortPriceDesc {
		t.Fatalf("expected price-desc, got %q %v", key, err)
	}
	if _, err := ParseSortKey("cheapest"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestNewSorterFallsBackToEnglish(t *testing.T) {
	s := NewSorter("not-a-locale-!!")
	items := []catalog.Product{{ID: 1, Title: "b"}, {ID: 2, Title: "a"}}
	if got := s.Sort(items, SortNameAsc); !equalIDs(got, 2, 1) {
		t.Fatalf("unexpected order: %v", productIDs(got))
	}
}
