package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fmi4go/fmi2"
	"github.com/fmi4go/fmi2/modeldescription"
)

// csvRecorder dumps a Slave's recorded variables to CSV, one row per
// completed communication step, grounded on FmuDriver.cpp's addHeader/addRow
// (there: manual ","-joined string concatenation; here: encoding/csv, which
// already handles quoting and is the idiomatic Go replacement).
type csvRecorder struct {
	w    *csv.Writer
	vars []modeldescription.ScalarVariable
}

func newCSVRecorder(w io.Writer, desc *modeldescription.ModelDescription, names []string) (*csvRecorder, error) {
	vars := make([]modeldescription.ScalarVariable, len(names))
	for i, name := range names {
		v, ok := desc.VariableByName(name)
		if !ok {
			return nil, fmt.Errorf("model %q has no variable named %q", desc.ModelName, name)
		}
		vars[i] = v
	}

	cw := csv.NewWriter(w)
	header := make([]string, len(vars)+1)
	header[0] = "Time"
	for i, v := range vars {
		header[i+1] = v.Name
	}
	if err := cw.Write(header); err != nil {
		return nil, err
	}

	return &csvRecorder{w: cw, vars: vars}, nil
}

func (r *csvRecorder) recordRow(s fmi.Slave) error {
	row := make([]string, len(r.vars)+1)
	row[0] = strconv.FormatFloat(s.SimulationTime(), 'g', -1, 64)

	for i, v := range r.vars {
		val, err := readScalar(s, v)
		if err != nil {
			return fmt.Errorf("read %q: %w", v.Name, err)
		}
		row[i+1] = val
	}

	return r.w.Write(row)
}

func readScalar(s fmi.Slave, v modeldescription.ScalarVariable) (string, error) {
	switch v.Type {
	case modeldescription.TypeReal:
		val, err := s.ReadReal1(v.ValueReference)
		return strconv.FormatFloat(val, 'g', -1, 64), err
	case modeldescription.TypeInteger:
		out := make([]int32, 1)
		err := s.ReadInteger([]uint32{v.ValueReference}, out)
		return strconv.FormatInt(int64(out[0]), 10), err
	case modeldescription.TypeBoolean:
		out := make([]bool, 1)
		err := s.ReadBoolean([]uint32{v.ValueReference}, out)
		return strconv.FormatBool(out[0]), err
	case modeldescription.TypeString:
		out := make([]string, 1)
		err := s.ReadString([]uint32{v.ValueReference}, out)
		return out[0], err
	default:
		return "", fmt.Errorf("variable %q has unsupported type %v for recording", v.Name, v.Type)
	}
}

func (r *csvRecorder) flush() error {
	r.w.Flush()
	return r.w.Error()
}
