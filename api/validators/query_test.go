package validators

import (
	"net/http/httptest"
	"reflect"
	"testing"

	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=3&bad=x&big=500", nil)

	if v, err := ParseQueryInt(r, "page", 1, 1, 100); err != nil || v != 3 {
		t.Fatalf("expected 3, got %d (%v)", v, err)
	}
	if v, err := ParseQueryInt(r, "missing", 7, 1, 100); err != nil || v != 7 {
		t.Fatalf("expected default 7, got %d (%v)", v, err)
	}
	if _, err := ParseQueryInt(r, "bad", 1, 1, 100); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseQueryInt(r, "big", 1, 1, 100); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestParseQueryFloat(t *testing.T) {
	r := httptest.NewRequest("GET", "/?min_price=12.5&rating=9", nil)

	v, err := ParseQueryFloat(r, "min_price", 0, 1e9)
	if err != nil || v == nil || *v != 12.5 {
		t.Fatalf("expected 12.5, got %v (%v)", v, err)
	}
	if v, err := ParseQueryFloat(r, "max_price", 0, 1e9); err != nil || v != nil {
		t.Fatalf("expected absent value, got %v (%v)", v, err)
	}
	if _, err := ParseQueryFloat(r, "rating", 0, 5); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestParseQueryList(t *testing.T) {
	r := httptest.NewRequest("GET", "/?category=electronics,jewelery&category=+men%27s+clothing+&category=", nil)

	got := ParseQueryList(r, "category")
	want := []string{"electronics", "jewelery", "men's clothing"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
