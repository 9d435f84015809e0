package extractor

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/davidmtz-dev/bancos-reader/internal/models"
)

// wordGap is the maximum horizontal gap (in layout units) between two text
// fragments that still belong to the same word.
const wordGap = 3.0

// Document is one open statement PDF, fully read into memory.
type Document struct {
	Name  string
	pages []Page
}

// Page holds the positioned words and the reconstructed plain text of one page.
type Page struct {
	Number int
	words  []models.Word
	text   string
}

// Words returns the page's positioned words, top-to-bottom, left-to-right.
func (p Page) Words() []models.Word {
	return p.words
}

// Text returns the page's plain text with one visual row per line.
func (p Page) Text() string {
	return p.text
}

// Pages returns the document's pages in physical order.
func (d *Document) Pages() []Page {
	return d.pages
}

// NewDocument builds a Document from pre-extracted pages.
func NewDocument(name string, pages ...Page) *Document {
	return &Document{Name: name, pages: pages}
}

// NewPage builds a Page from positioned words. When text is empty it is
// reconstructed from the words.
func NewPage(number int, words []models.Word, text string) Page {
	if text == "" {
		text = textFromWords(words)
	}
	return Page{Number: number, words: words, text: text}
}

// Open reads a statement PDF and returns a session over its pages.
// It fails when the file cannot be read or when no readable text could be
// decoded (image-only or custom-font documents).
func Open(path string) (doc *Document, err error) {
	// The PDF library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed reading %s: %v", filepath.Base(path), r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%s has no pages", filepath.Base(path))
	}

	doc = &Document{Name: filepath.Base(path)}
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			doc.pages = append(doc.pages, Page{Number: i})
			continue
		}
		words := assembleWords(page.Content().Text)
		text := textFromWords(words)
		if text == "" {
			text = plainText(page)
		}
		doc.pages = append(doc.pages, Page{Number: i, words: words, text: text})
	}

	if !isReadableText(doc) {
		return nil, fmt.Errorf("no readable text could be extracted from %s; the file may be image-based/scanned or use font encodings that cannot be decoded", filepath.Base(path))
	}
	return doc, nil
}

// assembleWords reconstructs word bounding boxes from raw text fragments.
// Fragments are grouped into visual lines by rounded Y, sorted left-to-right,
// and merged into words unless separated by whitespace or a horizontal gap.
// PDF Y grows bottom-up, so the stored Top is the negated Y: the topmost word
// on a page has the smallest Top.
func assembleWords(items []pdf.Text) []models.Word {
	lines := make(map[int][]pdf.Text)
	for _, t := range items {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		lines[yKey] = append(lines[yKey], t)
	}

	yKeys := make([]int, 0, len(lines))
	for y := range lines {
		yKeys = append(yKeys, y)
	}
	// Descending Y = top of page first.
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var words []models.Word
	for _, y := range yKeys {
		frags := lines[y]
		sort.Slice(frags, func(a, b int) bool {
			return frags[a].X < frags[b].X
		})

		var cur *models.Word
		for _, frag := range frags {
			top := -frag.Y
			startsNew := cur == nil ||
				frag.X-cur.Right > wordGap ||
				strings.HasPrefix(frag.S, " ")

			for i, piece := range splitFragment(frag) {
				if startsNew || i > 0 || cur == nil {
					words = append(words, piece)
					cur = &words[len(words)-1]
					continue
				}
				cur.Text += piece.Text
				cur.Right = piece.Right
				cur.Top = top
			}
		}
	}
	return words
}

// splitFragment turns one text fragment into words, splitting on internal
// whitespace and apportioning the fragment's width by rune count.
func splitFragment(frag pdf.Text) []models.Word {
	top := -frag.Y
	total := len([]rune(frag.S))
	if total == 0 {
		return nil
	}
	perRune := frag.W / float64(total)

	var words []models.Word
	runes := []rune(frag.S)
	start := -1
	for i := 0; i <= len(runes); i++ {
		atEnd := i == len(runes)
		if !atEnd && !unicode.IsSpace(runes[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, models.Word{
				Text:  string(runes[start:i]),
				Left:  frag.X + float64(start)*perRune,
				Right: frag.X + float64(i)*perRune,
				Top:   top,
			})
			start = -1
		}
	}
	return words
}

// textFromWords joins assembled words into plain text, one visual row per line.
func textFromWords(words []models.Word) string {
	var lines []string
	var parts []string
	lastTop := math.Inf(-1)
	for _, w := range words {
		if len(parts) > 0 && w.Top != lastTop {
			lines = append(lines, strings.Join(parts, " "))
			parts = parts[:0]
		}
		parts = append(parts, w.Text)
		lastTop = w.Top
	}
	if len(parts) > 0 {
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

// plainText extracts a page's text via the library's font-aware path, used
// when the content stream yielded no positioned fragments.
func plainText(page pdf.Page) string {
	fontNames := page.Fonts()
	fonts := make(map[string]*pdf.Font)
	for _, name := range fontNames {
		f := page.Font(name)
		fonts[name] = &f
	}
	text, err := page.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// commonWords that appear in virtually all statements from this issuer.
// If the extracted text contains none of these, it's likely garbage.
var commonWords = []string{
	"bbva", "cuenta", "saldo", "fecha", "cargos", "abonos", "importe",
	"movimientos", "estado de cuenta", "total", "periodo", "tarjeta",
	"cliente", "pagina",
}

func containsCommonWords(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range commonWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// textQuality returns the ratio of readable characters (Latin letters, digits,
// common punctuation, whitespace) to total characters.
func textQuality(text string) float64 {
	total := 0
	readable := 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"$%&@#!?+=*", r) ||
			strings.ContainsRune("ÁÉÍÓÚÑáéíóúñ", r) {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// isReadableText checks that the document contains enough text, that it is
// readable rather than binary garbage, and that it mentions at least one word
// expected on a statement.
func isReadableText(doc *Document) bool {
	var b strings.Builder
	for _, p := range doc.pages {
		b.WriteString(p.text)
		b.WriteString("\n")
	}
	text := b.String()
	if len(strings.TrimSpace(text)) <= 50 {
		return false
	}
	if textQuality(text) <= 0.6 {
		return false
	}
	return containsCommonWords(text)
}
