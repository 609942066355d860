package types

import "testing"

func TestShippingAddressNormalize(t *testing.T) {
	addr := ShippingAddress{
		FullName: "  Asha Rao ",
		Email:    " Asha@Example.COM",
		Address:  " 12 MG Road ",
		Pincode:  "560001 ",
	}.Normalize()

	if addr.FullName != "Asha Rao" || addr.Email != "asha@example.com" {
		t.Fatalf("unexpected normalized address: %+v", addr)
	}
	if addr.Country != "IN" {
		t.Fatalf("expected default country IN, got %q", addr.Country)
	}
}

func TestShippingAddressValueScan(t *testing.T) {
	in := ShippingAddress{FullName: "Asha Rao", Address: "12 MG Road", City: "Bengaluru", Pincode: "560001"}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out ShippingAddress
	if err := out.Scan([]byte(v.(string))); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}

	if _, err := (ShippingAddress{}).Value(); err == nil {
		t.Fatal("expected error for empty address")
	}
	if err := out.Scan(42); err == nil {
		t.Fatal("expected error for unsupported scan type")
	}
}
