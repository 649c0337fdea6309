package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/note2tex/internal/section"
	"github.com/hyperifyio/note2tex/internal/validate"
)

// errValidationFailed signals issues were found; they are already printed.
var errValidationFailed = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	var key string
	var minChars int
	cmd := &cobra.Command{
		Use:     "validate <file>",
		Short:   "Check one section body for structural LaTeX problems",
		Example: `  note2tex validate results.tex --section results`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := section.Key(strings.TrimSpace(key))
			if !section.Valid(k) {
				return fmt.Errorf("unknown section %q", key)
			}
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res := validate.Validator{MinChars: minChars}.Validate(k, string(b))
			out := cmd.OutOrStdout()
			if res.OK {
				fmt.Fprintf(out, "%s: OK\n", args[0])
				return nil
			}
			for _, is := range res.Strings() {
				fmt.Fprintf(out, "%s: %s\n", args[0], is)
			}
			return errValidationFailed
		},
	}
	cmd.Flags().StringVar(&key, "section", string(section.Results), "Section key the body belongs to")
	cmd.Flags().IntVar(&minChars, "min-chars", validate.DefaultMinChars, "Shortest acceptable body")
	return cmd
}
