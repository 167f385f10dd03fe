package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/elastipend/internal/dynamo"
	"github.com/san-kum/elastipend/internal/kinematics"
)

// TrajectoryHeader is the CSV column order.
var TrajectoryHeader = []string{
	"time",
	"alpha", "alpha_dot", "beta", "beta_dot",
	"a", "a_dot", "b", "b_dot",
	"x1", "y1", "x2", "y2",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// WriteTrajectoryCSV writes one row per sample: time, the state vector
// and both bob positions.
func WriteTrajectoryCSV(w io.Writer, sol *dynamo.Solution, tr *kinematics.Trace) error {
	if len(sol.States) != tr.Len() || len(sol.Times) < len(sol.States) {
		return fmt.Errorf("solution has %d samples, trace %d", len(sol.States), tr.Len())
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(TrajectoryHeader); err != nil {
		return err
	}

	row := make([]string, 0, len(TrajectoryHeader))
	for i, x := range sol.States {
		row = row[:0]
		row = append(row, formatFloat(sol.Times[i]))
		for _, val := range x {
			row = append(row, formatFloat(val))
		}
		row = append(row,
			formatFloat(tr.X1[i]), formatFloat(tr.Y1[i]),
			formatFloat(tr.X2[i]), formatFloat(tr.Y2[i]),
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Method string             `json:"method"`
	Params map[string]float64 `json:"params"`
	FPS    float64            `json:"fps"`
	Steps  int                `json:"steps"`
	Times  []float64          `json:"times"`
	States [][]float64        `json:"states"`
	X1     []float64          `json:"x1"`
	Y1     []float64          `json:"y1"`
	X2     []float64          `json:"x2"`
	Y2     []float64          `json:"y2"`
}

// WriteTrajectoryJSON writes the whole run as one indented JSON document.
func WriteTrajectoryJSON(w io.Writer, params map[string]float64, fps float64, sol *dynamo.Solution, tr *kinematics.Trace) error {
	data := ExportData{
		Method: sol.Method,
		Params: params,
		FPS:    fps,
		Steps:  sol.Steps,
		Times:  sol.Times,
		States: make([][]float64, len(sol.States)),
		X1:     tr.X1,
		Y1:     tr.Y1,
		X2:     tr.X2,
		Y2:     tr.Y2,
	}
	for i, s := range sol.States {
		data.States[i] = s
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
