// Package search implements best-effort keyword retrieval over the vault.
// It is a relevance filter, not ranked search: no scoring, no stemming,
// first keyword hit wins per file.
package search

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// MaxResults caps how many files contribute context
	MaxResults = 5
	// ExcerptLength is how much of each matching file is surfaced
	ExcerptLength = 500

	minKeywordLength = 4
)

var wordPattern = regexp.MustCompile(`\w+`)

// Keywords tokenizes a query into lowercase search terms, dropping short
// stopword-ish tokens.
func Keywords(query string) []string {
	var keywords []string
	for _, token := range wordPattern.FindAllString(strings.ToLower(query), -1) {
		if len(token) >= minKeywordLength {
			keywords = append(keywords, token)
		}
	}
	return keywords
}

// Search scans every Markdown file under vaultRoot for the query's keywords
// and returns the concatenated excerpts of up to MaxResults matching files.
// A file that cannot be read is skipped, never fatal.
func Search(query, vaultRoot string) string {
	keywords := Keywords(query)
	if len(keywords) == 0 {
		return ""
	}

	var results []string
	filepath.WalkDir(vaultRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if len(results) >= MaxResults {
			return fs.SkipAll
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		content := string(data)
		lower := strings.ToLower(content)

		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				rel, relErr := filepath.Rel(vaultRoot, path)
				if relErr != nil {
					rel = path
				}
				results = append(results, fmt.Sprintf("--- From %s ---\n%s", rel, excerpt(content)))
				break
			}
		}
		return nil
	})

	return strings.Join(results, "\n\n")
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLength {
		return content
	}
	return string(runes[:ExcerptLength])
}
