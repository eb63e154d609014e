package newsweb

import (
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t\r\xA0]+`)
)

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "ul": true, "ol": true,
}

// htmlToText flattens an announcement body to plain text. Bodies without
// markup are only whitespace-normalised.
func htmlToText(body string) string {
	if !strings.Contains(body, "<") {
		return normalizeText(body)
	}

	nodes, err := html.ParseFragment(strings.NewReader(body), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return normalizeText(body)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			sb.WriteString("\n")
		}
	}

	for _, n := range nodes {
		walk(n)
	}
	return normalizeText(sb.String())
}

func normalizeText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// parseCategories accepts either a list of strings or the newsreader's list
// of {category_en, category_no} objects.
func parseCategories(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return names
	}

	var objs []struct {
		CategoryEn string `json:"category_en"`
		CategoryNo string `json:"category_no"`
	}
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil
	}
	names = nil
	for _, o := range objs {
		switch {
		case o.CategoryEn != "":
			names = append(names, o.CategoryEn)
		case o.CategoryNo != "":
			names = append(names, o.CategoryNo)
		}
	}
	return names
}
