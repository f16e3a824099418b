package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/catalog"
)

var refreshGenres bool

// genresCmd represents the genres command
var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the movie genres",
	RunE:  runGenres,
}

func init() {
	rootCmd.AddCommand(genresCmd)

	genresCmd.Flags().BoolVar(&refreshGenres, "refresh", false, "fetch the taxonomy again")
}

func runGenres(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	load := service.LoadGenres
	if refreshGenres {
		load = service.RefreshGenres
	}

	genres, err := load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load genres: %s", catalog.UserMessage(err))
	}

	for _, g := range genres {
		fmt.Println(g.String())
	}
	return nil
}

