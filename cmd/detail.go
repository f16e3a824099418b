package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/marquee/browse"
	"github.com/s0up4200/marquee/catalog"
	"github.com/s0up4200/marquee/display"
)

var detailTimeout time.Duration

// detailCmd represents the detail command
var detailCmd = &cobra.Command{
	Use:   "detail ID...",
	Short: "Show the full record of one or more movies",
	Long: `Resolve the detail record of each movie ID, including its poster at
detail size. Records are resolved concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetail,
}

func init() {
	rootCmd.AddCommand(detailCmd)

	detailCmd.Flags().DurationVar(&detailTimeout, "timeout", 30*time.Second, "give up after this long")
}

func runDetail(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), detailTimeout)
	defer cancel()

	details, err := resolveDetails(ctx, service, ids)
	if err != nil {
		return err
	}

	formatter := display.NewConsoleFormatter()
	for i, detail := range details {
		if i > 0 {
			fmt.Println()
		}
		fmt.Print(formatter.FormatDetail(detail))
	}
	return nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid movie id: %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// detailSource is the part of the browse service used to resolve records
type detailSource interface {
	Subscribe(sub browse.Subscriber) func()
	FetchDetail(id int) (catalog.Detail, bool)
}

// resolveDetails resolves every id concurrently, keeping the order of ids
func resolveDetails(ctx context.Context, svc detailSource, ids []int) ([]catalog.Detail, error) {
	details := make([]catalog.Detail, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range ids {
		g.Go(func() error {
			detail, err := awaitDetail(ctx, svc, id)
			if err != nil {
				return fmt.Errorf("movie %d: %s: %w", id, catalog.UserMessage(err), err)
			}
			details[i] = detail
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

// awaitDetail returns the cached record of id or waits for it to resolve
func awaitDetail(ctx context.Context, svc detailSource, id int) (catalog.Detail, error) {
	type result struct {
		detail catalog.Detail
		err    error
	}
	done := make(chan result, 1)
	deliver := func(r result) {
		select {
		case done <- r:
		default:
		}
	}

	unsubscribe := svc.Subscribe(browse.Funcs{
		DetailReady: func(d catalog.Detail) {
			if d.ID == id {
				deliver(result{detail: d})
			}
		},
		ItemError: func(itemID int, err error) {
			if itemID == id {
				deliver(result{err: err})
			}
		},
	})
	defer unsubscribe()

	if detail, ok := svc.FetchDetail(id); ok {
		return detail, nil
	}

	select {
	case r := <-done:
		return r.detail, r.err
	case <-ctx.Done():
		return catalog.Detail{}, ctx.Err()
	}
}
