package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhellinckx/hmmlib"
)

func (c *CLI) newDecodeCommand() *cobra.Command {
	var seq string

	cmd := &cobra.Command{
		Use:   "decode <modelfile>",
		Short: "Decode an observation sequence with the Viterbi algorithm",
		Args:  cobra.ExactArgs(1),
		Example: `  hmm decode casino.hmm --seq "T H H T"
  hmm decode profile.hmm --seq "G A"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := hmmlib.Load(args[0], "")
			if err != nil {
				return err
			}
			if err := m.Compile(true); err != nil {
				return err
			}
			symbols := strings.Fields(seq)
			path, score, err := m.Decode(symbols)
			if err != nil {
				return err
			}
			if math.IsInf(score, -1) {
				fmt.Println("no legal path")
				return nil
			}
			fmt.Println(strings.Join(path, " "))
			fmt.Printf("log-score: %g\n", score)
			return nil
		},
	}

	cmd.Flags().StringVar(&seq, "seq", "", "Whitespace-separated observation symbols")
	cmd.MarkFlagRequired("seq")
	return cmd
}
