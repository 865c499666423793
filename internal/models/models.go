package models

// NotAvailable is the sentinel used when a scraped field is missing from the
// page markup. The front end renders it verbatim, so it stays a string value
// rather than an empty field.
const NotAvailable = "N/A"

// GenreTypeFavorite marks titles taken from the favorites list rather than a
// genre listing page.
const GenreTypeFavorite = "Favorite"

// Title is one manga/series tracked by the scraper. Its ID is derived from
// the last path segment of the canonical URL and is the identity key across
// scrapes.
type Title struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	GenreType          string    `json:"genre_type"`
	Cover              string    `json:"cover"`
	URL                string    `json:"url"`
	Description        string    `json:"description"`
	AltTitles          []string  `json:"alt_titles"`
	Status             string    `json:"status"`
	Author             string    `json:"author"`
	Artist             string    `json:"artist"`
	Genres             []string  `json:"genres"`
	Chapters           []Chapter `json:"chapters"`
	LatestChapterTitle string    `json:"latest_chapter_title"`
	LatestChapterURL   string    `json:"latest_chapter_url"`
}

// Chapter is one installment of a Title. Images stays empty until a chapter
// page scrape fills it; once filled, a merge never empties it again unless a
// full re-scrape is forced.
type Chapter struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	URL    string   `json:"url"`
	Date   string   `json:"date"`
	Images []string `json:"images"`
}

// TitleDetail is the parsed content of a title's own page: metadata plus the
// full chapter list. Missing fields carry the NotAvailable sentinel.
type TitleDetail struct {
	Title       string
	Cover       string
	Description string
	AltTitles   []string
	Status      string
	Author      string
	Artist      string
	Genres      []string
	Chapters    []Chapter
}

// Clone returns a deep copy so merge steps never alias chapter or image
// slices between the stored dataset and in-flight scrape results.
func (t Title) Clone() Title {
	out := t
	out.AltTitles = append([]string(nil), t.AltTitles...)
	out.Genres = append([]string(nil), t.Genres...)
	out.Chapters = make([]Chapter, len(t.Chapters))
	for i, chapter := range t.Chapters {
		out.Chapters[i] = chapter.Clone()
	}
	return out
}

// Clone returns a deep copy of the chapter.
func (c Chapter) Clone() Chapter {
	out := c
	out.Images = append([]string(nil), c.Images...)
	return out
}
