package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/catalog"
	"github.com/s0up4200/marquee/display"
	"github.com/s0up4200/marquee/library"
)

var (
	registerRating   int
	registerCategory string
	noteEdit         string
	noteDelete       string
	listCategories   []string
	showNotes        bool
)

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register ID",
	Short: "Add a movie to the register or update its rating and category",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

// unregisterCmd represents the unregister command
var unregisterCmd = &cobra.Command{
	Use:   "unregister ID",
	Short: "Remove a movie and its notes from the register",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnregister,
}

// noteCmd represents the note command
var noteCmd = &cobra.Command{
	Use:   "note ID [TEXT]",
	Short: "Add, edit or delete a note on a registered movie",
	Example: `  marquee note 603 "watch the extended cut"
  marquee note 603 --edit 0190c0b6-... "watched it"
  marquee note 603 --delete 0190c0b6-...`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNote,
}

// registeredCmd represents the registered command
var registeredCmd = &cobra.Command{
	Use:   "registered",
	Short: "List registered movies, best rated first",
	RunE:  runRegistered,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(unregisterCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(registeredCmd)

	registerCmd.Flags().IntVarP(&registerRating, "rating", "r", 0, fmt.Sprintf("rating from 0 to %d", library.MaxRating))
	registerCmd.Flags().StringVarP(&registerCategory, "category", "c", "", "seen, not-seen or archived")

	noteCmd.Flags().StringVar(&noteEdit, "edit", "", "replace the text of this note")
	noteCmd.Flags().StringVar(&noteDelete, "delete", "", "delete this note")

	registeredCmd.Flags().StringSliceVarP(&listCategories, "category", "c", nil, "only show these categories")
	registeredCmd.Flags().BoolVar(&showNotes, "notes", false, "print notes")
}

func runRegister(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	id := ids[0]

	lib, err := openLibrary()
	if err != nil {
		return err
	}

	var category library.Category
	if cmd.Flags().Changed("category") {
		if category, err = library.ParseCategory(registerCategory); err != nil {
			return err
		}
	}

	title := ""
	if existing, err := lib.Get(id); err == nil {
		title = existing.Title
	} else {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		detail, err := awaitDetail(ctx, service, id)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to resolve movie %d: %s", id, catalog.UserMessage(err))
		}
		title = detail.Title
	}

	movie, err := lib.Register(id, title)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("rating") {
		if movie, err = lib.SetRating(id, registerRating); err != nil {
			return err
		}
	}
	if category != "" {
		if movie, err = lib.SetCategory(id, category); err != nil {
			return err
		}
	}

	fmt.Printf("✓ %s [%d] rating %d, %s\n", movie.Title, movie.ID, movie.Rating, movie.Category)
	return nil
}

func runUnregister(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	lib, err := openLibrary()
	if err != nil {
		return err
	}

	if err := lib.Delete(ids[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Removed movie %d\n", ids[0])
	return nil
}

func runNote(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[:1])
	if err != nil {
		return err
	}
	id := ids[0]

	lib, err := openLibrary()
	if err != nil {
		return err
	}

	text := ""
	if len(args) > 1 {
		text = args[1]
	}

	switch {
	case noteDelete != "":
		noteID, err := uuid.Parse(noteDelete)
		if err != nil {
			return fmt.Errorf("invalid note id: %w", err)
		}
		if err := lib.DeleteNote(id, noteID); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted note %s\n", noteID)

	case noteEdit != "":
		noteID, err := uuid.Parse(noteEdit)
		if err != nil {
			return fmt.Errorf("invalid note id: %w", err)
		}
		note, err := lib.EditNote(id, noteID, text)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Updated note %s\n", note.ID)

	default:
		note, err := lib.AddNote(id, text)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added note %s\n", note.ID)
	}

	return nil
}

func runRegistered(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}

	categories := make([]library.Category, 0, len(listCategories))
	for _, name := range listCategories {
		c, err := library.ParseCategory(name)
		if err != nil {
			return err
		}
		categories = append(categories, c)
	}

	movies, err := lib.List(categories...)
	if err != nil {
		return err
	}

	resolveTitles(cmd.Context(), movies)

	fmt.Print(display.NewConsoleFormatter().FormatRegister(movies, display.FormatOptions{ShowNotes: showNotes}))
	return nil
}

// resolveTitles fills in titles missing from the register through the
// browse service; movies that cannot be resolved keep an empty title
func resolveTitles(ctx context.Context, movies []library.Movie) {
	var missing []int
	for _, m := range movies {
		if m.Title == "" {
			missing = append(missing, m.ID)
		}
	}
	if len(missing) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	details, err := resolveDetails(ctx, service, missing)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to resolve movie titles")
		return
	}

	titles := make(map[int]string, len(details))
	for _, d := range details {
		titles[d.ID] = d.Title
	}
	for i := range movies {
		if movies[i].Title == "" {
			movies[i].Title = titles[movies[i].ID]
		}
	}
}
