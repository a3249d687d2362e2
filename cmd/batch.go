package main

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verity-group/claimcheck/internal/model"
)

var (
	batchInput       string
	batchOutput      string
	batchTier        string
	batchConcurrency int
)

// batchLine is one JSONL input record.
type batchLine struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// batchOutcome pairs an input record with its verification result.
type batchOutcome struct {
	ID     string             `json:"id,omitempty"`
	Result *model.BatchResult `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Verify claims in a JSONL file of texts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if batchInput == "" {
			return eris.New("--input is required")
		}
		lines, err := readBatchInput(batchInput)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return eris.New("input file contains no records")
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		out := os.Stdout
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close()
			out = f
		}

		start := time.Now()
		outcomes := make([]batchOutcome, len(lines))

		g, gctx := errgroup.WithContext(ctx)
		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentTexts
		}
		if concurrency <= 0 {
			concurrency = 4
		}
		g.SetLimit(concurrency)

		for i, line := range lines {
			i, line := i, line
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				result, err := env.Pipeline.Verify(gctx, line.Text, line.Language, model.Tier(batchTier))
				if err != nil {
					outcomes[i] = batchOutcome{ID: line.ID, Error: err.Error()}
					return nil
				}
				outcomes[i] = batchOutcome{ID: line.ID, Result: result}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch verify")
		}

		enc := json.NewEncoder(out)
		for _, o := range outcomes {
			if err := enc.Encode(o); err != nil {
				return eris.Wrap(err, "write outcome")
			}
		}

		zap.L().Info("batch complete",
			zap.Int("texts", len(lines)),
			zap.Duration("elapsed", time.Since(start)))
		return nil
	},
}

func readBatchInput(path string) ([]batchLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open input file")
	}
	defer f.Close()

	var lines []batchLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var line batchLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, eris.Wrapf(err, "parse line %d", lineNo)
		}
		if strings.TrimSpace(line.Text) == "" {
			return nil, eris.Errorf("line %d: text is required", lineNo)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "read input file")
	}
	return lines, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "JSONL file with one {text, language} record per line")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "output file (default stdout)")
	batchCmd.Flags().StringVar(&batchTier, "tier", string(model.TierFree), "plan tier (free|premium)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent texts (default from config)")
	rootCmd.AddCommand(batchCmd)
}
