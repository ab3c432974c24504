package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhellinckx/hmmlib"
)

func (c *CLI) newInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "info <modelfile>",
		Short:   "Summarize a model file",
		Args:    cobra.ExactArgs(1),
		Example: `  hmm info casino.hmm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := hmmlib.Load(args[0], "")
			if err != nil {
				return err
			}
			if err := m.Compile(true); err != nil {
				return err
			}
			alphabet, err := m.Alphabet()
			if err != nil {
				return err
			}
			fmt.Printf("name: %s\n", m.Name())
			fmt.Printf("algorithm: %s\n", m.Algorithm())
			fmt.Printf("states: %d (begin and end included)\n", m.NumStates())
			fmt.Printf("transitions: %d\n", m.NumTransitions())
			fmt.Printf("alphabet: %s\n", strings.Join(alphabet, " "))
			var silent []string
			for _, s := range m.States() {
				if s.IsSilent() {
					silent = append(silent, s.Name())
				}
			}
			fmt.Printf("silent states: %s\n", strings.Join(silent, " "))
			return nil
		},
	}
	return cmd
}
