package normalize

// DefaultAliases covers the Materials Project schema migration from the
// legacy (nested) document shape to the current flat one. Callers keep
// requesting the legacy names; records served by the new API carry the flat
// key instead.
//
// Adding an entry here is additive and safe: resolution falls back to the
// literal field when the flat key is absent from a record.
var DefaultAliases = Aliases{
	"formula":           "formula_pretty",
	"pretty_formula":    "formula_pretty",
	"e_above_hull":      "energy_above_hull",
	"elasticity.K_VRH":  "bulk_modulus",
	"elasticity.G_VRH":  "shear_modulus",
	"spacegroup.symbol": "symmetry_symbol",
}
