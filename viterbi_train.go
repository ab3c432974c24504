package hmmlib

// accumulateViterbi adds the free-parameter usage counts observed along
// the Viterbi path of seq to the batch totals. The path selected by the
// argmax ending state carries exactly the counts the recurrence would
// have accumulated for that ending state, so walking the traced path is
// equivalent to keeping running counts per candidate ending state. An
// impossible sequence contributes nothing.
func (c *compiledHMM) accumulateViterbi(seq []string, pidx *paramIndex, totals *counts) error {
	path, _, err := c.viterbi(seq)
	if err != nil {
		return err
	}
	if len(path) == 0 {
		return nil
	}

	if p, ok := pidx.begin[path[0]]; ok {
		totals.begin[p]++
	}
	cursor := 0
	for step, i := range path {
		if !c.isSilentState(i) {
			if p, ok := pidx.emit[emitParam{state: i, symbol: seq[cursor]}]; ok {
				totals.emit[p]++
			}
			cursor++
		}
		if step+1 < len(path) {
			if p, ok := pidx.trans[[2]int{i, path[step+1]}]; ok {
				totals.trans[p]++
			}
		}
	}
	if c.isFinite {
		if p, ok := pidx.end[path[len(path)-1]]; ok {
			totals.end[p]++
		}
	}
	return nil
}
