// Package filter selects catalog items by expression, genre and title.
//
// Expressions are written in the expr language and evaluated against one
// item at a time:
//
//	hasGenre("Drama") and Year >= 2015 and Rating > 7.5
//	fuzzy("godfthr") or contains(Overview, "heist")
//	releasedAfter(yearsAgo(2)) and HasPoster
//
// Item fields: ID, Title, Overview, Year, Released, Rating, HasRating,
// HasPoster, Genres. GenreSet and Query cover the include/exclude genre
// toggles and the search box; Search ranks items by fuzzy title match.
package filter
