package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/storytext/pkg/storytext"
)

func newTagCmd(a *app) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Tag an edition's stories with keywords",
		Long: `Read an edition as JSON ({"id", "title", "author", "stories": [{"title", "author", "text"}]})
and print the keywords found by the tagging script as JSON. Keywords with a
ratio of 0.3 or less are dropped, and repeated words are merged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(cmd, validateBase); err != nil {
				return err
			}

			req, err := readTagRequest(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx, cancel := a.signalContext()
			defer cancel()

			p, stop, err := a.pipeline()
			if err != nil {
				return err
			}
			defer stop()

			return writeJSON(cmd.OutOrStdout(), struct {
				Keywords []storytext.Keyword `json:"keywords"`
			}{p.Tag(ctx, req)})
		},
	}
	cmd.Flags().StringVar(&input, "input", "-", `edition JSON file ("-" reads stdin)`)
	return cmd
}

func readTagRequest(path string, stdin io.Reader) (storytext.TagRequest, error) {
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
		return storytext.TagRequest{}, fmt.Errorf("read edition: %w", err)
	}
	var req storytext.TagRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return storytext.TagRequest{}, fmt.Errorf("decode edition: %w", err)
	}
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
