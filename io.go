package hmmlib

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// fieldSeparator splits the fields of one persisted line.
const fieldSeparator = "|"

// Save writes the model to path (with ext appended when non-empty) in
// the line-oriented model format: a header with the model name, the
// training algorithm and the begin/end state names, one block per state
// with its flags and linear-space distribution, then the transition
// list including begin and end transitions. Load is the exact inverse.
func (m *Model) Save(path, ext string) error {
	if m.begin == nil {
		return fmt.Errorf("hmm: save: %w", ErrNoBeginState)
	}
	if m.end == nil {
		return fmt.Errorf("hmm: save: %w", ErrNoEndState)
	}
	f, err := os.Create(modelFilename(path, ext))
	if err != nil {
		return fmt.Errorf("hmm: save: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, m.name)
	fmt.Fprintln(w, m.algorithm.String())
	fmt.Fprintln(w, m.begin.Name())
	fmt.Fprintln(w, m.end.Name())

	states := m.g.Vertices()
	fmt.Fprintln(w, len(states))
	for _, s := range states {
		hasDist := s.dist != nil
		fmt.Fprintf(w, "%s%s%s%s%s%s%s\n", s.Name(),
			fieldSeparator, formatBool(!hasDist),
			fieldSeparator, formatBool(s.FreeTransition()),
			fieldSeparator, formatBool(s.FreeEmission()))
		if hasDist {
			linear := s.dist.Clone()
			linear.ToLinear()
			symbols := linear.Symbols()
			fmt.Fprintln(w, len(symbols))
			for _, symbol := range symbols {
				fmt.Fprintf(w, "%s%s%s\n", symbol, fieldSeparator, formatFloat(linear.Get(symbol)))
			}
		}
	}

	var lines []string
	for _, from := range states {
		edges, _ := m.g.OutEdges(from)
		for _, e := range edges {
			lines = append(lines, e.From.Name()+fieldSeparator+e.To.Name()+fieldSeparator+formatFloat(e.Weight))
		}
	}
	fmt.Fprintln(w, len(lines))
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("hmm: save: %w", err)
	}
	return nil
}

// Load reads a model previously written by Save.
func Load(path, ext string) (*Model, error) {
	f, err := os.Open(modelFilename(path, ext))
	if err != nil {
		return nil, fmt.Errorf("hmm: load: %w", err)
	}
	defer f.Close()

	r := &lineReader{scanner: bufio.NewScanner(f)}
	name, err := r.line()
	if err != nil {
		return nil, err
	}
	algorithmStr, err := r.line()
	if err != nil {
		return nil, err
	}
	algorithm, err := ParseTrainAlgorithm(algorithmStr)
	if err != nil {
		return nil, err
	}
	beginName, err := r.line()
	if err != nil {
		return nil, err
	}
	endName, err := r.line()
	if err != nil {
		return nil, err
	}

	numStates, err := r.count()
	if err != nil {
		return nil, err
	}
	states := make([]*State, 0, numStates)
	for range numStates {
		s, err := r.state()
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	if len(states) < 2 || states[0].Name() != beginName || states[1].Name() != endName {
		return nil, fmt.Errorf("hmm: load: begin and end states must open the state list")
	}
	m := NewModelWithStates(name, states[0], states[1])
	m.SetAlgorithm(algorithm)
	for _, s := range states[2:] {
		if err := m.AddState(s); err != nil {
			return nil, err
		}
	}

	numEdges, err := r.count()
	if err != nil {
		return nil, err
	}
	for range numEdges {
		line, err := r.line()
		if err != nil {
			return nil, err
		}
		fields := strings.Split(line, fieldSeparator)
		if len(fields) != 3 {
			return nil, fmt.Errorf("hmm: load: malformed transition line %q", line)
		}
		weight, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("hmm: load: malformed transition weight %q", fields[2])
		}
		if err := m.AddTransition(fields[0], fields[1], weight); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func modelFilename(path, ext string) string {
	if ext == "" {
		return path
	}
	return path + "." + ext
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// lineReader wraps a scanner with the parsing helpers of the model
// format.
type lineReader struct {
	scanner *bufio.Scanner
}

func (r *lineReader) line() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", fmt.Errorf("hmm: load: %w", err)
		}
		return "", fmt.Errorf("hmm: load: unexpected end of file")
	}
	return r.scanner.Text(), nil
}

func (r *lineReader) count() (int, error) {
	line, err := r.line()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("hmm: load: malformed count %q", line)
	}
	return n, nil
}

// state parses one state block: the flags line and, for states carrying
// a distribution, the symbol count and probability lines.
func (r *lineReader) state() (*State, error) {
	line, err := r.line()
	if err != nil {
		return nil, err
	}
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != 4 {
		return nil, fmt.Errorf("hmm: load: malformed state line %q", line)
	}
	s := NewState(fields[0])
	silent := fields[1] == "1"
	s.SetFreeTransition(fields[2] == "1")
	s.SetFreeEmission(fields[3] == "1")
	if silent {
		return s, nil
	}
	numSymbols, err := r.count()
	if err != nil {
		return nil, err
	}
	dist := NewDiscreteDistribution()
	for range numSymbols {
		line, err := r.line()
		if err != nil {
			return nil, err
		}
		entry := strings.SplitN(line, fieldSeparator, 2)
		if len(entry) != 2 {
			return nil, fmt.Errorf("hmm: load: malformed distribution line %q", line)
		}
		p, err := strconv.ParseFloat(entry[1], 64)
		if err != nil {
			return nil, fmt.Errorf("hmm: load: malformed probability %q", entry[1])
		}
		dist.Set(entry[0], p)
	}
	s.dist = dist
	return s, nil
}
