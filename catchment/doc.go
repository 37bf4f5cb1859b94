// Package catchment holds the static arrival tables as data.
//
// The tables are organized per simulation year (elderly population by sex) and per catchment
// (share of the national elderly population, source hospital and area-of-residence frequencies).
// Age, fragility, fracture type and diagnosis frequencies are shared by every catchment.
//
// Default returns the tables embedded into the binary. Load reads the same YAML layout from any
// io.Reader, which allows overriding the tables without a rebuild:
//
//	set, err := catchment.Default()
//	if err != nil {
//		return err
//	}
//
//	tables, err := set.Select("2016", "CHO2")
//	if err != nil {
//		return err // errors.Is(err, arrivals.ErrConfiguration)
//	}
package catchment
