package table

import (
	"strings"

	"github.com/tosih/thermtable/pkg/models"
)

// Group is a set of sensors sharing one parameter tuple and therefore one table
type Group struct {
	Params []float64
	Names  []string
}

// GroupSensors merges sensors with identical parameters, keeping the order in
// which each tuple first appears. Names are upper-cased for the C defines.
// Sensors without parameters are skipped.
func GroupSensors(sensors []models.Sensor) []Group {
	var groups []Group
	for _, s := range sensors {
		if len(s.Params) == 0 {
			continue
		}

		name := strings.ToUpper(s.Name)
		found := false
		for i := range groups {
			if paramsEqual(groups[i].Params, s.Params) {
				groups[i].Names = append(groups[i].Names, name)
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, Group{
				Params: append([]float64(nil), s.Params...),
				Names:  []string{name},
			})
		}
	}
	return groups
}

func paramsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
