package webloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/clipperhouse/uax29/v2/sentences"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const DefaultURL = "https://en.wikipedia.org/wiki/Artificial_intelligence"

// Citation marks like [12] and ANSI colour codes.
var noise = regexp.MustCompile(`(\x1b\[([0-9;]+)m|\[\d+\])`)

// Loader fetches a page and returns the sentences of its paragraphs.
type Loader struct {
	client *http.Client
	logger *zap.Logger
}

func New(client *http.Client, logger *zap.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{client: client, logger: logger}
}

func (l *Loader) Load(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", url, err)
	}
	req.Header.Set("User-Agent", "wikichat/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	text, err := ParagraphText(resp.Body)
	if err != nil {
		return nil, err
	}
	out := SplitSentences(CleanText(text))

	l.logger.Info("Page loaded",
		zap.String("url", url),
		zap.Int("sentences", len(out)))
	return out, nil
}

// ParagraphText returns the text content of every <p> element, one
// paragraph per line.
func ParagraphText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var b strings.Builder
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			writeText(&b, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return b.String(), nil
}

func writeText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

// CleanText drops citation marks and colour codes and flattens newlines.
func CleanText(text string) string {
	text = noise.ReplaceAllString(text, "")
	return strings.ReplaceAll(text, "\n", " ")
}

// SplitSentences splits text on Unicode sentence boundaries and drops
// blank sentences.
func SplitSentences(text string) []string {
	var out []string
	iter := sentences.FromString(text)
	for iter.Next() {
		if s := strings.TrimSpace(iter.Value()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
