package models

import "testing"

func TestSlugifyVehicleName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Luxury Sedan", "luxury_sedan"},
		{"SUV", "suv"},
		{"Stretch-Limo", "stretch_limo"},
		{"Sprinter Van (14 pax)", "sprinter_van_14_pax"},
		{"  Executive  Sedan  ", "executive_sedan"},
		{"Mercedes-Benz S-Class", "mercedes_benz_s_class"},
	}

	for _, tc := range cases {
		if got := SlugifyVehicleName(tc.name); got != tc.want {
			t.Errorf("SlugifyVehicleName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
