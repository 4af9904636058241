package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// EnergyCSV writes a step,energy header followed by one row per step. Values
// use the shortest representation that parses back to the same float.
func EnergyCSV(w io.Writer, energy []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"step", "energy"}); err != nil {
		return err
	}
	for i, e := range energy {
		if err := cw.Write([]string{strconv.Itoa(i), strconv.FormatFloat(e, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
