package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bft-labs/storytext/internal/adapters/pdf"
	"github.com/bft-labs/storytext/pkg/storytext"
)

type extractFlags struct {
	pdfPath    string
	page       int
	regions    []string
	selections string
}

func newExtractCmd(a *app) *cobra.Command {
	var f extractFlags
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract paragraphs from regions of a PDF",
		Long: strings.TrimSpace(`
Extract paragraphs from rectangular regions of a PDF and print them as JSON.

Either give regions of one page with --page and --region (in reading order),
or a JSON file of selections spanning several pages with --selections.
A region is x,y,width,height in PDF points, optionally followed by a
sequence number.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(cmd, validateBase); err != nil {
				return err
			}
			if f.pdfPath == "" {
				return fmt.Errorf("--pdf is required")
			}
			if f.selections != "" && len(f.regions) > 0 {
				return fmt.Errorf("--selections and --region are mutually exclusive")
			}

			ctx, cancel := a.signalContext()
			defer cancel()

			doc, err := pdf.NewOpener(pdf.WithInline(a.cfg.StdinMode)).Open(ctx, f.pdfPath)
			if err != nil {
				return err
			}

			p, stop, err := a.pipeline()
			if err != nil {
				return err
			}
			defer stop()

			var paragraphs storytext.Paragraphs
			if f.selections != "" {
				selections, err := readSelections(f.selections, cmd.InOrStdin())
				if err != nil {
					return err
				}
				m, err := storytext.NewSelectionMap(selections)
				if err != nil {
					return err
				}
				if err := doc.CheckPages(m); err != nil {
					return err
				}
				paragraphs = p.Sequence(ctx, doc.Source, m)
			} else {
				regions, err := parseRegions(f.regions)
				if err != nil {
					return err
				}
				if doc.PageCount > 0 && (f.page < 0 || f.page >= doc.PageCount) {
					return fmt.Errorf("%w: page %d, document has %d pages",
						storytext.ErrPageOutOfRange, f.page, doc.PageCount)
				}
				paragraphs = p.Extract(ctx, doc.Source, f.page, regions)
			}

			return writeJSON(cmd.OutOrStdout(), struct {
				Paragraphs storytext.Paragraphs `json:"paragraphs"`
			}{paragraphs})
		},
	}

	cmd.Flags().StringVar(&f.pdfPath, "pdf", "", "PDF document to read")
	cmd.Flags().IntVar(&f.page, "page", 0, "zero-based page number for --region")
	cmd.Flags().StringArrayVar(&f.regions, "region", nil, "region x,y,width,height[,sequence] (repeatable)")
	cmd.Flags().StringVar(&f.selections, "selections", "", `JSON file with an array of selections ("-" reads stdin)`)
	return cmd
}

// parseRegions parses region flags. Regions without a sequence number are
// numbered by their position.
func parseRegions(values []string) ([]storytext.Region, error) {
	regions := make([]storytext.Region, 0, len(values))
	for i, raw := range values {
		parts := strings.Split(raw, ",")
		if len(parts) != 4 && len(parts) != 5 {
			return nil, fmt.Errorf("%w: %q: want x,y,width,height[,sequence]", storytext.ErrInvalidRegion, raw)
		}
		nums := make([]int, len(parts))
		for j, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", storytext.ErrInvalidRegion, raw, err)
			}
			nums[j] = n
		}
		seq := i
		if len(nums) == 5 {
			seq = nums[4]
		}
		r, err := storytext.NewRegion(nums[0], nums[1], nums[2], nums[3], seq)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}

func readSelections(path string, stdin io.Reader) ([]storytext.Selection, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read selections: %w", err)
	}
	var selections []storytext.Selection
	if err := json.Unmarshal(data, &selections); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", storytext.ErrInvalidSelection, path, err)
	}
	return selections, nil
}
