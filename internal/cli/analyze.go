package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/strumlab/tunetui/internal/audio"
	"github.com/strumlab/tunetui/internal/notes"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		detectorKind string
		blockSize    int
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Detect the pitch of each block in a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], detectorKind, blockSize)
		},
	}

	cmd.Flags().StringVarP(&detectorKind, "detector", "d", "yin", "pitch detector: yin or spectral")
	cmd.Flags().IntVar(&blockSize, "block", defaultBlockSize, "samples per analysis block")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path, detectorKind string, blockSize int) error {
	if blockSize <= 0 {
		return fmt.Errorf("block size %d, want > 0", blockSize)
	}

	buf, err := audio.ReadWAV(path)
	if err != nil {
		return err
	}

	detector, err := newDetector(detectorKind, buf.SampleRate)
	if err != nil {
		return err
	}

	blocks := splitBlocks(buf.Samples, blockSize)
	if len(blocks) == 0 {
		return fmt.Errorf("%s: shorter than one %d-sample block", path, blockSize)
	}

	// The same seam the live tuner reads from, preloaded with the file.
	source := audio.NewMemoryCapturer(buf.SampleRate, blocks...)
	if err := source.Start(); err != nil {
		return err
	}
	defer source.Stop()

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("TIME", "FREQUENCY", "NOTE", "CENTS", "CONFIDENCE")

	counts := make(map[string]int)
	for i := range blocks {
		block, err := source.Buffer()
		if err != nil {
			return err
		}
		result := detector.Detect(block.Samples)

		at := fmt.Sprintf("%6.2fs", float64(i*blockSize)/float64(buf.SampleRate))
		if !result.Valid {
			tbl.Row(at, "-", notes.NoPitchLabel, "-", fmt.Sprintf("%.2f", result.Confidence))
			continue
		}

		label, cents := notes.FrequencyToNote(result.Frequency)
		counts[label]++
		tbl.Row(at,
			fmt.Sprintf("%.2f Hz", result.Frequency),
			label,
			fmt.Sprintf("%+.1f", cents),
			fmt.Sprintf("%.2f", result.Confidence))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tbl)

	dominant, hits := "", 0
	for label, n := range counts {
		if n > hits || (n == hits && label < dominant) {
			dominant, hits = label, n
		}
	}
	if dominant == "" {
		fmt.Fprintln(out, "No pitch detected.")
		return nil
	}
	fmt.Fprintf(out, "Dominant note: %s (%d of %d blocks)\n", dominant, hits, len(blocks))
	return nil
}

// splitBlocks cuts samples into consecutive full blocks, dropping the
// remainder.
func splitBlocks(samples []float64, blockSize int) [][]float64 {
	var blocks [][]float64
	for start := 0; start+blockSize <= len(samples); start += blockSize {
		blocks = append(blocks, samples[start:start+blockSize])
	}
	return blocks
}
