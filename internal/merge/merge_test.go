package merge

import (
	"testing"

	"github.com/gabriel/mangaread-scraper/backend/internal/models"
	"gotest.tools/assert"
)

func title(id string, chapters ...models.Chapter) models.Title {
	return models.Title{
		ID:       id,
		Title:    "Title " + id,
		URL:      "https://www.mangaread.org/manga/" + id + "/",
		Chapters: chapters,
	}
}

func chapter(id string, label string, images ...string) models.Chapter {
	return models.Chapter{
		ID:     id,
		Title:  label,
		URL:    "https://www.mangaread.org/manga/x/chapter-" + id + "/",
		Images: images,
	}
}

func asMap(titles ...models.Title) map[string]models.Title {
	out := make(map[string]models.Title, len(titles))
	for _, t := range titles {
		out[t.ID] = t
	}
	return out
}

func TestChapterNumber(t *testing.T) {
	assert.Equal(t, ChapterNumber("Chapter 10"), 10.0)
	assert.Equal(t, ChapterNumber("Chapter 1.5"), 1.5)
	assert.Equal(t, ChapterNumber("Extra"), 0.0)
}

func TestSortChaptersByNumericToken(t *testing.T) {
	chapters := []models.Chapter{
		chapter("10", "Chapter 10"),
		chapter("2", "Chapter 2"),
		chapter("1-5", "Chapter 1.5"),
	}
	SortChapters(chapters)

	assert.Equal(t, chapters[0].Title, "Chapter 1.5")
	assert.Equal(t, chapters[1].Title, "Chapter 2")
	assert.Equal(t, chapters[2].Title, "Chapter 10")
}

func TestSortChaptersNoNumericTokenSortsFirst(t *testing.T) {
	chapters := []models.Chapter{
		chapter("2", "Chapter 2"),
		chapter("x", "Omake"),
	}
	SortChapters(chapters)
	assert.Equal(t, chapters[0].Title, "Omake")
}

func TestMergePreservesImagesOnEmptyIncoming(t *testing.T) {
	existing := asMap(title("t1", chapter("1", "Chapter 1", "a", "b")))
	incoming := []models.Title{title("t1", chapter("1", "Chapter 1"))}

	result := Titles(existing, incoming)

	assert.Equal(t, len(result), 1)
	assert.DeepEqual(t, result[0].Chapters[0].Images, []string{"a", "b"})
}

func TestMergeReplacesImagesWhenIncomingHasThem(t *testing.T) {
	existing := asMap(title("t1", chapter("1", "Chapter 1", "old")))
	incoming := []models.Title{title("t1", chapter("1", "Chapter 1", "new1", "new2"))}

	result := Titles(existing, incoming)

	assert.DeepEqual(t, result[0].Chapters[0].Images, []string{"new1", "new2"})
}

func TestMergeUpsertNeverDeletes(t *testing.T) {
	kept := title("kept", chapter("1", "Chapter 1", "x"))
	existing := asMap(kept, title("updated"))
	incoming := []models.Title{title("updated", chapter("1", "Chapter 1")), title("brandnew")}

	result := Titles(existing, incoming)

	assert.Equal(t, len(result), 3)

	byID := make(map[string]models.Title, len(result))
	for _, entry := range result {
		byID[entry.ID] = entry
	}
	assert.DeepEqual(t, byID["kept"], kept)
	_, hasNew := byID["brandnew"]
	assert.Assert(t, hasNew)
}

func TestMergeIsIdempotent(t *testing.T) {
	existing := asMap(
		title("t1", chapter("1", "Chapter 1", "a"), chapter("2", "Chapter 2")),
		title("t2"),
	)
	incoming := []models.Title{
		title("t1", chapter("2", "Chapter 2", "p1"), chapter("3", "Chapter 3")),
	}

	once := Titles(existing, incoming)

	onceMap := make(map[string]models.Title, len(once))
	for _, entry := range once {
		onceMap[entry.ID] = entry
	}
	twice := Titles(onceMap, incoming)

	assert.DeepEqual(t, once, twice)
}

func TestMergeDerivesLatestChapterAfterSort(t *testing.T) {
	existing := asMap(title("t1", chapter("12", "Chapter 12")))
	incoming := []models.Title{title("t1", chapter("3", "Chapter 3"))}

	result := Titles(existing, incoming)

	assert.Equal(t, result[0].LatestChapterTitle, "Chapter 12")
	assert.Equal(t, result[0].Chapters[0].Title, "Chapter 3")
}

func TestMergeSentinelDoesNotClobberRealValue(t *testing.T) {
	stored := title("t1")
	stored.Author = "Chugong"
	existing := asMap(stored)

	fresh := title("t1")
	fresh.Author = models.NotAvailable
	result := Titles(existing, []models.Title{fresh})

	assert.Equal(t, result[0].Author, "Chugong")
}

func TestMergeDoesNotAliasStoredSlices(t *testing.T) {
	stored := title("t1", chapter("1", "Chapter 1", "a"))
	existing := asMap(stored)

	result := Titles(existing, nil)
	result[0].Chapters[0].Images[0] = "mutated"

	assert.Equal(t, existing["t1"].Chapters[0].Images[0], "a")
}
