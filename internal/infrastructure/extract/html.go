package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

var spaceExpr = regexp.MustCompile(`[ \t\r\f\v]+`)

// ArticleText pulls the readable article body out of an HTML page.
// It falls back to the whole document body when readability finds nothing.
func ArticleText(html, pageURL string) (string, error) {
	var base *url.URL
	if pageURL != "" {
		parsed, err := url.Parse(pageURL)
		if err != nil {
			return "", fmt.Errorf("parse page url: %w", err)
		}
		base = parsed
	} else {
		base = &url.URL{Scheme: "https", Host: "localhost"}
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), base)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		text, err := blockText(article.Content)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}
	doc.Find("script,style,noscript").Remove()
	return normalizeText(doc.Find("body").Text()), nil
}

// blockText joins paragraph-level blocks so sentence boundaries survive.
func blockText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse article content: %w", err)
	}

	var blocks []string
	doc.Find("h1,h2,h3,h4,p,li,blockquote").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("p,li,blockquote").Length() > 0 {
			return
		}
		if text := normalizeText(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) == 0 {
		return normalizeText(doc.Text()), nil
	}
	return strings.Join(blocks, "\n"), nil
}

func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceExpr.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
