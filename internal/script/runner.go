package script

import (
	"fmt"

	"github.com/san-kum/mjbridge/internal/routine"
)

// Row is one script iteration's sampled outputs.
type Row struct {
	Time   float64
	Step   int
	Values map[string]float64
}

// Result is the trace of a script run.
type Result struct {
	Names []string // sampled stage labels in first-seen order
	Rows  []Row
}

// Series extracts one sampled output across all rows, for plotting.
func (r *Result) Series(name string) []float64 {
	out := make([]float64, 0, len(r.Rows))
	for _, row := range r.Rows {
		if v, ok := row.Values[name]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Run executes the script against the session. The stage list runs Repeat
// times; each iteration contributes one trace row. Any stage failure
// aborts the run with the stage named in the error.
func Run(sess *routine.Session, sc *Script) (*Result, error) {
	repeat := sc.Repeat
	if repeat < 1 {
		repeat = 1
	}

	res := &Result{}
	seen := make(map[string]bool)

	for iter := 0; iter < repeat; iter++ {
		row := Row{Values: make(map[string]float64)}

		for i := range sc.Stages {
			st := &sc.Stages[i]
			label := st.label(i)

			switch st.Type {
			case StageSet:
				if err := sess.SetInput(st.Arguments, st.Value); err != nil {
					return res, fmt.Errorf("stage %q (iteration %d): %w", label, iter, err)
				}
			case StageGet:
				v, err := sess.GetOutput(st.Arguments)
				if err != nil {
					return res, fmt.Errorf("stage %q (iteration %d): %w", label, iter, err)
				}
				if !seen[label] {
					seen[label] = true
					res.Names = append(res.Names, label)
				}
				row.Values[label] = v
			case StageCommand:
				if err := sess.RunCommand(st.Arguments); err != nil {
					return res, fmt.Errorf("stage %q (iteration %d): %w", label, iter, err)
				}
			}
		}

		row.Time = sess.Time()
		row.Step = sess.Steps()
		res.Rows = append(res.Rows, row)
	}

	return res, nil
}
