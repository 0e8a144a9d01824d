package filecoupling

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fem-labs/partheat/internal/domain"
)

// dataPayload is one participant's outgoing interface data: the values of
// a named quantity at its production points, identified by the interface
// coordinate. Window and iteration are carried for diagnostics.
type dataPayload struct {
	Quantity  string    `json:"quantity"`
	Window    int       `json:"window"`
	Iteration int       `json:"iteration"`
	Ys        []float64 `json:"ys"`
	Values    []float64 `json:"values"`
}

// decisionPayload is the second participant's convergence verdict for one
// sub-iteration of an implicit window.
type decisionPayload struct {
	Window    int  `json:"window"`
	Iteration int  `json:"iteration"`
	Converged bool `json:"converged"`
}

// writeJSON persists v atomically: write to a temp file, then rename, so a
// watcher never observes a partially written file.
func writeJSON(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// interpolate maps peer values given at interface coordinates ys onto the
// local sample by piecewise-linear interpolation, clamping beyond the
// outermost peer points. This is the channel's data-mapping duty between
// the two non-matching exchange meshes.
func interpolate(ys, values []float64, sample domain.InterfaceSample) ([]float64, error) {
	if len(ys) != len(values) || len(ys) == 0 {
		return nil, fmt.Errorf("%w: peer sent %d coordinates for %d values",
			domain.ErrInvalidConfig, len(ys), len(values))
	}
	if !sort.Float64sAreSorted(ys) {
		return nil, fmt.Errorf("%w: peer coordinates out of order", domain.ErrInvalidConfig)
	}

	out := make([]float64, sample.Len())
	for i, pt := range sample.Points {
		out[i] = interp1(ys, values, pt.Y)
	}
	return out, nil
}

func interp1(ys, values []float64, y float64) float64 {
	n := len(ys)
	if y <= ys[0] {
		return values[0]
	}
	if y >= ys[n-1] {
		return values[n-1]
	}
	k := sort.SearchFloat64s(ys, y)
	// ys[k-1] < y <= ys[k]
	t := (y - ys[k-1]) / (ys[k] - ys[k-1])
	return values[k-1] + t*(values[k]-values[k-1])
}
