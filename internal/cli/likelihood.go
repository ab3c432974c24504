package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhellinckx/hmmlib"
)

func (c *CLI) newLikelihoodCommand() *cobra.Command {
	var dataFile string

	cmd := &cobra.Command{
		Use:     "likelihood <modelfile>",
		Short:   "Report the log-likelihood of observation sequences",
		Args:    cobra.ExactArgs(1),
		Example: `  hmm likelihood casino.hmm --data sequences.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := hmmlib.Load(args[0], "")
			if err != nil {
				return err
			}
			if err := m.Compile(true); err != nil {
				return err
			}
			seqs, err := ReadSequences(dataFile)
			if err != nil {
				return err
			}
			total := 0.0
			for _, seq := range seqs {
				ll, err := m.LogLikelihood(seq, true)
				if err != nil {
					return err
				}
				fmt.Printf("%g\t%s\n", ll, strings.Join(seq, " "))
				total += ll
			}
			fmt.Printf("total: %g\n", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "Path to the observation sequence file")
	cmd.MarkFlagRequired("data")
	return cmd
}
