package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotify/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotify/internal/app"
	"github.com/jsamuelsen/quotify/internal/domain"
)

// The cursor is not persisted: each invocation starts at the first quote of
// the cached batch, so next and previous count from there.

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd, opts, false, func(ctx context.Context, svc *app.QuoteService) (app.View, error) {
				return svc.Current(ctx)
			})
		},
	}
}

func newNextCmd(opts *rootOptions) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Step forward through the batch",
		Long:  "Step forward through the batch. The cursor stops at the last quote.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateSteps(steps); err != nil {
				return err
			}

			return runView(cmd, opts, false, func(ctx context.Context, svc *app.QuoteService) (app.View, error) {
				return svc.Step(ctx, steps)
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of quotes to advance")

	return cmd
}

func newPreviousCmd(opts *rootOptions) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:     "previous",
		Aliases: []string{"prev"},
		Short:   "Step back through the batch",
		Long:    "Step back through the batch. The cursor stops at the first quote.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateSteps(steps); err != nil {
				return err
			}

			return runView(cmd, opts, false, func(ctx context.Context, svc *app.QuoteService) (app.View, error) {
				return svc.Step(ctx, -steps)
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of quotes to step back")

	return cmd
}

func newRefreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch a new batch regardless of cache age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd, opts, true, func(ctx context.Context, svc *app.QuoteService) (app.View, error) {
				return svc.Refresh(ctx)
			})
		},
	}
}

func newShareCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Print the copy text and share link for the current quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			return withRuntime(ctx, opts, cmd.ErrOrStderr(), func(rt *runtime) error {
				shared, err := rt.service.Share(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if opts.output == outputJSON {
					return writeJSON(out, dto.ShareResponse{
						Text:     shared.Text,
						ShareURL: shared.URL,
						Quote:    dto.NewQuoteResponse(shared.Quote),
						Position: dto.NewPositionResponse(shared.Position),
					})
				}

				_, err = fmt.Fprintf(out, "%s\n%s\n", shared.Text, shared.URL)
				return err
			})
		},
	}
}

func validateSteps(steps int) error {
	if steps < 1 {
		return domain.NewValidationError("steps", "must be at least 1")
	}

	return nil
}

// runView bootstraps the application, runs op and prints the resulting view.
func runView(
	cmd *cobra.Command,
	opts *rootOptions,
	withFetchedAt bool,
	op func(context.Context, *app.QuoteService) (app.View, error),
) error {
	ctx := cmd.Context()

	return withRuntime(ctx, opts, cmd.ErrOrStderr(), func(rt *runtime) error {
		v, err := op(ctx, rt.service)
		if err != nil {
			return err
		}

		return printView(cmd.OutOrStdout(), opts.output, v, withFetchedAt)
	})
}

func printView(w io.Writer, format string, v app.View, withFetchedAt bool) error {
	if format == outputJSON {
		resp := dto.CurrentQuoteResponse{
			Quote:    dto.NewQuoteResponse(v.Quote),
			Position: dto.NewPositionResponse(v.Position),
		}
		if withFetchedAt {
			fetchedAt := v.FetchedAt.UTC()
			resp.FetchedAt = &fetchedAt
		}

		return writeJSON(w, resp)
	}

	if _, err := fmt.Fprintf(w, "%s\n[%d/%d]\n", v.Quote.Format(), v.Position.Index+1, v.Position.Total); err != nil {
		return err
	}

	if withFetchedAt {
		_, err := fmt.Fprintf(w, "fetched %s\n", v.FetchedAt.UTC().Format(time.RFC3339))
		return err
	}

	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
