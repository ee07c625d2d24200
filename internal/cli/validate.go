package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resumeforge/resumeforge/backend/go-services/internal/resume"
)

// ValidationResult is the machine-readable outcome of validate.
type ValidationResult struct {
	Valid    bool                  `json:"valid" yaml:"valid"`
	Problems []resume.FieldProblem `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a resume against the document schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			res := ValidationResult{Valid: true}
			if verr := resume.Validate(doc); verr != nil {
				var v *resume.ValidationError
				if !errors.As(verr, &v) {
					return verr
				}
				res = ValidationResult{Problems: v.Problems}
			}
			if err := write(cmd.OutOrStdout(), rootOpts.Format, res); err != nil {
				return err
			}
			if !res.Valid {
				return fmt.Errorf("%s: %d problem(s)", args[0], len(res.Problems))
			}
			return nil
		},
	}
}

// NewBlankCommand creates the blank command.
func NewBlankCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "blank",
		Short: "Print the empty resume template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return write(cmd.OutOrStdout(), rootOpts.Format, resume.Blank())
		},
	}
}
