package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhellinckx/hmmlib"
	"github.com/jhellinckx/hmmlib/internal/config"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var (
		dataFile   string
		configFile string
		algorithm  string
	)

	cmd := &cobra.Command{
		Use:   "train <modelfile>",
		Short: "Train a model on observation sequences",
		Args:  cobra.ExactArgs(1),
		Example: `  hmm train casino.hmm --data sequences.txt
  hmm train casino.hmm --data sequences.txt --config run.yaml --algorithm viterbi`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath := args[0]
			cfg, err := config.LoadOrDefault(configFile)
			if err != nil {
				return err
			}
			if dataFile == "" {
				dataFile = cfg.Data.SequenceFile
			}
			if algorithm == "" {
				algorithm = cfg.Train.Algorithm
			}
			trainCfg := hmmlib.TrainConfig{
				Pseudocount:   cfg.Train.Pseudocount,
				Threshold:     cfg.Train.Threshold,
				MinIterations: cfg.Train.MinIterations,
				MaxIterations: cfg.Train.MaxIterations,
			}
			trainCfg.Algorithm, err = hmmlib.ParseTrainAlgorithm(algorithm)
			if err != nil {
				return err
			}

			m, err := hmmlib.Load(modelPath, "")
			if err != nil {
				return err
			}
			seqs, err := ReadSequences(dataFile)
			if err != nil {
				return err
			}
			if err := m.Compile(true); err != nil {
				return err
			}

			slog.Info("Training model", "model", modelPath, "data", dataFile, "algorithm", trainCfg.Algorithm.String(), "sequences", len(seqs))
			start := time.Now()
			improvement, err := m.Train(seqs, trainCfg)
			if err != nil {
				return err
			}
			slog.Info("Training completed", "improvement", improvement, "duration", time.Since(start))

			if err := m.Save(modelPath, ""); err != nil {
				return err
			}
			slog.Info("Model saved", "path", modelPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "Path to the observation sequence file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML run configuration")
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "Training algorithm (viterbi or baum-welch)")
	return cmd
}
