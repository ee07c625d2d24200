package cli

import (
	"github.com/spf13/cobra"

	"github.com/resumeforge/resumeforge/backend/go-services/internal/identity"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/reconcile"
)

type reconcileOptions struct {
	previous      string
	returned      string
	deterministic bool
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &reconcileOptions{}
	cmd := &cobra.Command{
		Use:   "reconcile --previous <file> --returned <file>",
		Short: "Carry identity tokens from a previous resume into a rewritten one",
		Long: `Reconcile a rewritten resume against the document it was produced from.

Entries whose id is known keep it; new, unknown or duplicated ids get fresh
ones; entries missing from the rewritten resume are reported as dropped.
Prints the reconciled document and a per-collection report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.previous, "previous", "", "resume the rewrite started from")
	cmd.Flags().StringVar(&opts.returned, "returned", "", "rewritten resume")
	cmd.Flags().BoolVar(&opts.deterministic, "deterministic", false, "mint sequential ids (id-1, id-2, ...) instead of UUIDs")
	_ = cmd.MarkFlagRequired("previous")
	_ = cmd.MarkFlagRequired("returned")
	return cmd
}

func runReconcile(rootOpts *RootOptions, opts *reconcileOptions, cmd *cobra.Command) error {
	prev, err := readDocument(opts.previous)
	if err != nil {
		return err
	}
	returned, err := readDocument(opts.returned)
	if err != nil {
		return err
	}
	var gen identity.Generator = identity.UUIDGenerator{}
	if opts.deterministic {
		gen = identity.NewSequenceGenerator("id")
	}
	res := reconcile.New(gen).Reconcile(prev, returned)
	return write(cmd.OutOrStdout(), rootOpts.Format, res)
}
