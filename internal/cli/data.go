package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadSequences reads observation sequences from a text file: one
// sequence per line, symbols separated by whitespace. Blank lines and
// lines starting with '#' are skipped.
func ReadSequences(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read sequences: %w", err)
	}
	defer f.Close()

	var seqs [][]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seqs = append(seqs, strings.Fields(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sequences: %w", err)
	}
	return seqs, nil
}
