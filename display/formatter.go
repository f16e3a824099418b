package display

import (
	"fmt"
	"strings"

	"github.com/s0up4200/marquee/catalog"
	"github.com/s0up4200/marquee/library"
)

// FormatOptions selects the optional lines printed under each entry
type FormatOptions struct {
	ShowGenres   bool
	ShowOverview bool
	ShowNotes    bool
}

// ConsoleFormatter provides console output formatting for movies
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// branch returns the tree prefix and the indent of the lines below an entry
func branch(isLast bool) (string, string) {
	if isLast {
		return "╰", "    "
	}
	return "├", "│   "
}

func heading(sb *strings.Builder, noun string, count int) {
	fmt.Fprintf(sb, "\n%s", noun)
	if count != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(sb, " (%d):\n\n", count)
}

func title(name string, year int) string {
	if name == "" {
		name = "Untitled"
	}
	if year > 0 {
		return fmt.Sprintf("%s (%d)", name, year)
	}
	return name
}

func genreList(genres []catalog.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.String())
	}
	return strings.Join(names, ", ")
}

// FormatItemList formats list entries for console display
func (f *ConsoleFormatter) FormatItemList(items []catalog.Item, options FormatOptions) string {
	if len(items) == 0 {
		return "No movies found"
	}

	var sb strings.Builder
	heading(&sb, "Movie", len(items))

	for i, item := range items {
		isLast := i == len(items)-1
		f.formatItem(&sb, item, isLast, options)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// formatItem formats a single list entry
func (f *ConsoleFormatter) formatItem(sb *strings.Builder, item catalog.Item, isLast bool, options FormatOptions) {
	prefix, indent := branch(isLast)

	fmt.Fprintf(sb, "%s── %s [%d]\n", prefix, title(item.Title, item.Year()), item.ID)

	var parts []string
	if item.VoteAverage != nil {
		parts = append(parts, fmt.Sprintf("Rating: %.1f", *item.VoteAverage))
	}
	if item.ReleaseDate != nil {
		parts = append(parts, fmt.Sprintf("Released: %s", item.ReleaseDate.Format("2006-01-02")))
	}
	if len(parts) > 0 {
		fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(parts, " | "))
	}

	if options.ShowGenres && len(item.Genres) > 0 {
		fmt.Fprintf(sb, "%sGenres: %s\n", indent, genreList(item.Genres))
	}

	if options.ShowOverview && item.Overview != "" {
		fmt.Fprintf(sb, "%s%s\n", indent, item.Overview)
	}
}

// FormatDetail formats a detail record
func (f *ConsoleFormatter) FormatDetail(d catalog.Detail) string {
	var sb strings.Builder

	year := 0
	if d.ReleaseDate != nil {
		year = d.ReleaseDate.Year()
	}
	fmt.Fprintf(&sb, "%s [%d]\n", title(d.Title, year), d.ID)
	sb.WriteString(strings.Repeat("━", 50))
	sb.WriteString("\n")

	if d.Tagline != "" {
		fmt.Fprintf(&sb, "%q\n", d.Tagline)
	}

	var parts []string
	if d.VoteAverage != nil {
		parts = append(parts, fmt.Sprintf("Rating: %.1f", *d.VoteAverage))
	}
	if d.Runtime > 0 {
		parts = append(parts, fmt.Sprintf("Runtime: %d min", d.Runtime))
	}
	if len(parts) > 0 {
		fmt.Fprintf(&sb, "%s\n", strings.Join(parts, " | "))
	}

	if len(d.Genres) > 0 {
		fmt.Fprintf(&sb, "Genres: %s\n", genreList(d.Genres))
	}
	if d.Poster != nil {
		fmt.Fprintf(&sb, "Poster: %dx%d %s, %d bytes\n", d.Poster.Width, d.Poster.Height, d.Poster.Format, len(d.Poster.Data))
	}
	if d.Overview != "" {
		fmt.Fprintf(&sb, "\n%s\n", d.Overview)
	}

	return sb.String()
}

// FormatRegister formats registered movies in the order given
func (f *ConsoleFormatter) FormatRegister(movies []library.Movie, options FormatOptions) string {
	if len(movies) == 0 {
		return "No registered movies"
	}

	var sb strings.Builder
	heading(&sb, "Registered movie", len(movies))

	for i, movie := range movies {
		isLast := i == len(movies)-1
		prefix, indent := branch(isLast)

		fmt.Fprintf(&sb, "%s── %s [%d]\n", prefix, title(movie.Title, 0), movie.ID)
		fmt.Fprintf(&sb, "%sRating: %d | %s | Added: %s\n", indent, movie.Rating, movie.Category, movie.Created.Format("2006-01-02"))

		if options.ShowNotes {
			for _, note := range movie.Notes {
				stamp := note.Created
				if note.Modified != nil {
					stamp = *note.Modified
				}
				fmt.Fprintf(&sb, "%s  - %s (%s, %s)\n", indent, note.Text, stamp.Format("2006-01-02"), note.ID)
			}
		} else if len(movie.Notes) > 0 {
			fmt.Fprintf(&sb, "%sNotes: %d\n", indent, len(movie.Notes))
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}
