package main

// Default property sets per command. The dotted names are the legacy specs
// users know; normalize.DefaultAliases routes them to the current flat
// schema when records carry it.

var searchFields = []string{
	"material_id",
	"formula",
	"formation_energy_per_atom",
	"energy_above_hull",
	"band_gap",
	"density",
	"elasticity.K_VRH", // bulk modulus
	"elasticity.G_VRH", // shear modulus
	"total_magnetization",
	"magnetic_ordering",
}

var compareFields = []string{
	"material_id",
	"formula",
	"formation_energy_per_atom",
	"energy_above_hull",
	"band_gap",
	"density",
	"elasticity.K_VRH",
	"elasticity.G_VRH",
}

var stableFields = []string{
	"material_id",
	"formula",
	"formation_energy_per_atom",
	"energy_above_hull",
	"band_gap",
	"density",
	"elasticity.K_VRH",
	"spacegroup.symbol",
}

// elementsCriteria matches materials containing every listed element.
func elementsCriteria(elements []string) map[string]any {
	return map[string]any{
		"elements": map[string]any{"$all": elements},
	}
}
