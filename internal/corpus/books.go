package corpus

import "strings"

type Testament string

const (
	OldTestament Testament = "old"
	NewTestament Testament = "new"
)

// Book is one entry of the canonical 66-book sequence. Position is 1-based and is the only
// ordering used for navigation; ids are slugs and do not sort canonically.
type Book struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	Chapters  int       `json:"chapters"`
	Testament Testament `json:"testament"`
}

// Books lists the canon in traditional order, Old Testament first.
var Books = []Book{
	{ID: "genesis", Name: "Gênesis", Position: 1, Chapters: 50, Testament: OldTestament},
	{ID: "exodus", Name: "Êxodo", Position: 2, Chapters: 40, Testament: OldTestament},
	{ID: "leviticus", Name: "Levítico", Position: 3, Chapters: 27, Testament: OldTestament},
	{ID: "numbers", Name: "Números", Position: 4, Chapters: 36, Testament: OldTestament},
	{ID: "deuteronomy", Name: "Deuteronômio", Position: 5, Chapters: 34, Testament: OldTestament},
	{ID: "joshua", Name: "Josué", Position: 6, Chapters: 24, Testament: OldTestament},
	{ID: "judges", Name: "Juízes", Position: 7, Chapters: 21, Testament: OldTestament},
	{ID: "ruth", Name: "Rute", Position: 8, Chapters: 4, Testament: OldTestament},
	{ID: "1samuel", Name: "1 Samuel", Position: 9, Chapters: 31, Testament: OldTestament},
	{ID: "2samuel", Name: "2 Samuel", Position: 10, Chapters: 24, Testament: OldTestament},
	{ID: "1kings", Name: "1 Reis", Position: 11, Chapters: 22, Testament: OldTestament},
	{ID: "2kings", Name: "2 Reis", Position: 12, Chapters: 25, Testament: OldTestament},
	{ID: "1chronicles", Name: "1 Crônicas", Position: 13, Chapters: 29, Testament: OldTestament},
	{ID: "2chronicles", Name: "2 Crônicas", Position: 14, Chapters: 36, Testament: OldTestament},
	{ID: "ezra", Name: "Esdras", Position: 15, Chapters: 10, Testament: OldTestament},
	{ID: "nehemiah", Name: "Neemias", Position: 16, Chapters: 13, Testament: OldTestament},
	{ID: "esther", Name: "Ester", Position: 17, Chapters: 10, Testament: OldTestament},
	{ID: "job", Name: "Jó", Position: 18, Chapters: 42, Testament: OldTestament},
	{ID: "psalms", Name: "Salmos", Position: 19, Chapters: 150, Testament: OldTestament},
	{ID: "proverbs", Name: "Provérbios", Position: 20, Chapters: 31, Testament: OldTestament},
	{ID: "ecclesiastes", Name: "Eclesiastes", Position: 21, Chapters: 12, Testament: OldTestament},
	{ID: "songofsolomon", Name: "Cânticos", Position: 22, Chapters: 8, Testament: OldTestament},
	{ID: "isaiah", Name: "Isaías", Position: 23, Chapters: 66, Testament: OldTestament},
	{ID: "jeremiah", Name: "Jeremias", Position: 24, Chapters: 52, Testament: OldTestament},
	{ID: "lamentations", Name: "Lamentações", Position: 25, Chapters: 5, Testament: OldTestament},
	{ID: "ezekiel", Name: "Ezequiel", Position: 26, Chapters: 48, Testament: OldTestament},
	{ID: "daniel", Name: "Daniel", Position: 27, Chapters: 12, Testament: OldTestament},
	{ID: "hosea", Name: "Oséias", Position: 28, Chapters: 14, Testament: OldTestament},
	{ID: "joel", Name: "Joel", Position: 29, Chapters: 3, Testament: OldTestament},
	{ID: "amos", Name: "Amós", Position: 30, Chapters: 9, Testament: OldTestament},
	{ID: "obadiah", Name: "Obadias", Position: 31, Chapters: 1, Testament: OldTestament},
	{ID: "jonah", Name: "Jonas", Position: 32, Chapters: 4, Testament: OldTestament},
	{ID: "micah", Name: "Miquéias", Position: 33, Chapters: 7, Testament: OldTestament},
	{ID: "nahum", Name: "Naum", Position: 34, Chapters: 3, Testament: OldTestament},
	{ID: "habakkuk", Name: "Habacuque", Position: 35, Chapters: 3, Testament: OldTestament},
	{ID: "zephaniah", Name: "Sofonias", Position: 36, Chapters: 3, Testament: OldTestament},
	{ID: "haggai", Name: "Ageu", Position: 37, Chapters: 2, Testament: OldTestament},
	{ID: "zechariah", Name: "Zacarias", Position: 38, Chapters: 14, Testament: OldTestament},
	{ID: "malachi", Name: "Malaquias", Position: 39, Chapters: 4, Testament: OldTestament},
	{ID: "matthew", Name: "Mateus", Position: 40, Chapters: 28, Testament: NewTestament},
	{ID: "mark", Name: "Marcos", Position: 41, Chapters: 16, Testament: NewTestament},
	{ID: "luke", Name: "Lucas", Position: 42, Chapters: 24, Testament: NewTestament},
	{ID: "john", Name: "João", Position: 43, Chapters: 21, Testament: NewTestament},
	{ID: "acts", Name: "Atos", Position: 44, Chapters: 28, Testament: NewTestament},
	{ID: "romans", Name: "Romanos", Position: 45, Chapters: 16, Testament: NewTestament},
	{ID: "1corinthians", Name: "1 Coríntios", Position: 46, Chapters: 16, Testament: NewTestament},
	{ID: "2corinthians", Name: "2 Coríntios", Position: 47, Chapters: 13, Testament: NewTestament},
	{ID: "galatians", Name: "Gálatas", Position: 48, Chapters: 6, Testament: NewTestament},
	{ID: "ephesians", Name: "Efésios", Position: 49, Chapters: 6, Testament: NewTestament},
	{ID: "philippians", Name: "Filipenses", Position: 50, Chapters: 4, Testament: NewTestament},
	{ID: "colossians", Name: "Colossenses", Position: 51, Chapters: 4, Testament: NewTestament},
	{ID: "1thessalonians", Name: "1 Tessalonicenses", Position: 52, Chapters: 5, Testament: NewTestament},
	{ID: "2thessalonians", Name: "2 Tessalonicenses", Position: 53, Chapters: 3, Testament: NewTestament},
	{ID: "1timothy", Name: "1 Timóteo", Position: 54, Chapters: 6, Testament: NewTestament},
	{ID: "2timothy", Name: "2 Timóteo", Position: 55, Chapters: 4, Testament: NewTestament},
	{ID: "titus", Name: "Tito", Position: 56, Chapters: 3, Testament: NewTestament},
	{ID: "philemon", Name: "Filemom", Position: 57, Chapters: 1, Testament: NewTestament},
	{ID: "hebrews", Name: "Hebreus", Position: 58, Chapters: 13, Testament: NewTestament},
	{ID: "james", Name: "Tiago", Position: 59, Chapters: 5, Testament: NewTestament},
	{ID: "1peter", Name: "1 Pedro", Position: 60, Chapters: 5, Testament: NewTestament},
	{ID: "2peter", Name: "2 Pedro", Position: 61, Chapters: 3, Testament: NewTestament},
	{ID: "1john", Name: "1 João", Position: 62, Chapters: 5, Testament: NewTestament},
	{ID: "2john", Name: "2 João", Position: 63, Chapters: 1, Testament: NewTestament},
	{ID: "3john", Name: "3 João", Position: 64, Chapters: 1, Testament: NewTestament},
	{ID: "jude", Name: "Judas", Position: 65, Chapters: 1, Testament: NewTestament},
	{ID: "revelation", Name: "Apocalipse", Position: 66, Chapters: 22, Testament: NewTestament},
}

var booksByID = func() map[string]Book {
	m := make(map[string]Book, len(Books))
	for _, b := range Books {
		m[b.ID] = b
	}
	return m
}()

// BookByID looks a book up by slug, case-insensitively.
func BookByID(id string) (Book, bool) {
	b, ok := booksByID[strings.ToLower(strings.TrimSpace(id))]
	return b, ok
}
