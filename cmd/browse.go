package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/browse"
	"github.com/s0up4200/marquee/catalog"
	"github.com/s0up4200/marquee/display"
	"github.com/s0up4200/marquee/filter"
)

var (
	browsePages   int
	filterExpr    string
	includeGenres []string
	excludeGenres []string
	searchText    string
	browseTimeout time.Duration
	showOverview  bool
)

var progressPoll = 100 * time.Millisecond

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through a movie list",
	Long: `Page through a TMDB movie list the way a scrolling view would: every
published movie is reported as visible, which fetches further pages until
the requested number of pages has been published.

Results can be narrowed with a filter expression or a named filter from
the config, genre toggles and a fuzzy title search.`,
	Example: `  marquee browse --list top-rated --pages 3
  marquee browse --filter 'Year >= 2020 && Rating > 7'
  marquee browse --filter recent --genre drama --exclude-genre horror
  marquee browse --search "star wars"`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().IntVarP(&browsePages, "pages", "n", 2, "number of pages to publish")
	browseCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or the name of a configured filter")
	browseCmd.Flags().StringSliceVarP(&includeGenres, "genre", "g", nil, "only show movies with one of these genres")
	browseCmd.Flags().StringSliceVar(&excludeGenres, "exclude-genre", nil, "hide movies with any of these genres")
	browseCmd.Flags().StringVarP(&searchText, "search", "s", "", "fuzzy search on titles, best matches first")
	browseCmd.Flags().DurationVar(&browseTimeout, "timeout", 2*time.Minute, "give up after this long")
	browseCmd.Flags().BoolVar(&showOverview, "overview", false, "print the overview of each movie")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if browsePages < 1 {
		return fmt.Errorf("--pages must be at least 1")
	}

	list, err := selectedList()
	if err != nil {
		return err
	}

	var active []filter.Filter
	if filterExpr != "" {
		f, err := filters.Resolve(filterExpr)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		active = append(active, f)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), browseTimeout)
	defer cancel()

	if len(includeGenres) > 0 || len(excludeGenres) > 0 {
		// Genres must be resolved before the first page is published
		if _, err := service.LoadGenres(ctx); err != nil {
			return fmt.Errorf("genre filtering unavailable: %s", catalog.UserMessage(err))
		}
		active = append(active, genreFilter(includeGenres, excludeGenres))
	}

	logger.Info().Str("list", list.String()).Int("pages", browsePages).Msg("Browsing")

	items, err := collectPages(ctx, service, list, browsePages)
	if err != nil {
		return err
	}

	total := len(items)
	items = filter.Apply(items, active...)
	if searchText != "" {
		items = filter.Search(items, searchText)
	}

	if len(items) == 0 {
		fmt.Printf("No movies found in %d %s movies.\n", total, list)
		return nil
	}

	logger.Debug().Int("shown", len(items)).Int("published", total).Msg("Filtered published movies")

	fmt.Print(display.NewConsoleFormatter().FormatItemList(items, display.FormatOptions{
		ShowGenres:   true,
		ShowOverview: showOverview,
	}))
	return nil
}

func genreFilter(include, exclude []string) *filter.GenreSet {
	set := filter.NewGenreSet()
	for _, name := range include {
		set.Include(catalog.ParseGenre(name))
	}
	for _, name := range exclude {
		set.Exclude(catalog.ParseGenre(name))
	}
	return set
}

// pager is the part of the browse service a scrolling view drives
type pager interface {
	Subscribe(sub browse.Subscriber) func()
	SelectList(list catalog.ListKind) error
	ItemBecameVisible(id int) error
	Progress() browse.Progress
	Published() []catalog.Item
}

// collectPages selects list and reports every published item as visible
// until pages pages are published or the list is exhausted
func collectPages(ctx context.Context, svc pager, list catalog.ListKind, pages int) ([]catalog.Item, error) {
	wake := make(chan struct{}, 1)
	signal := func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}

	var (
		mu         sync.Mutex
		sessionErr error
	)
	unsubscribe := svc.Subscribe(browse.Funcs{
		NewItems: func(l catalog.ListKind, _ []catalog.Item) {
			if l == list {
				signal()
			}
		},
		SessionError: func(l catalog.ListKind, err error) {
			if l != list {
				return
			}
			mu.Lock()
			sessionErr = err
			mu.Unlock()
			signal()
		},
	})
	defer unsubscribe()

	if err := svc.SelectList(list); err != nil {
		return nil, err
	}

	// Progress is refreshed after notifications are delivered
	ticker := time.NewTicker(progressPoll)
	defer ticker.Stop()

	seen := 0
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("browsing %s: %w", list, ctx.Err())
		case <-wake:
		case <-ticker.C:
		}

		mu.Lock()
		err := sessionErr
		mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to browse %s (%s): %w", list, catalog.UserMessage(err), err)
		}

		p := svc.Progress()
		if !p.Selected || p.List != list {
			continue
		}

		published := svc.Published()
		if p.PublishedPages >= pages || (p.TotalPages > 0 && p.PublishedPages >= p.TotalPages) {
			if limit := pages * p.PageSize; p.PageSize > 0 && len(published) > limit {
				published = published[:limit]
			}
			return published, nil
		}

		if p.HighestRequested >= pages {
			continue
		}
		for ; seen < len(published); seen++ {
			if err := svc.ItemBecameVisible(published[seen].ID); err != nil {
				return nil, err
			}
		}
	}
}
