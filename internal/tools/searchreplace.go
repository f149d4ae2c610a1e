package tools

import (
	"regexp"
	"strings"
)

// SearchReplaceFormat documents the edit format for tool descriptions.
const SearchReplaceFormat = `The diff format is a series of SEARCH/REPLACE blocks, every block must use this format:
1. The start of search block: <<<<<<< SEARCH
2. A contiguous chunk of lines to search for in the existing file
3. The dividing line: =======
4. The lines to replace into the source file
5. The end of replace block: >>>>>>> REPLACE`

var blockPattern = regexp.MustCompile(`(?s)<<<<<<< SEARCH\n(.*?)\n=======\n(.*?)\n>>>>>>> REPLACE`)

// Block is one SEARCH/REPLACE pair.
type Block struct {
	Search  string
	Replace string
}

// ParseBlocks extracts every SEARCH/REPLACE block from diff in order.
func ParseBlocks(diff string) []Block {
	matches := blockPattern.FindAllStringSubmatch(diff, -1)
	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, Block{Search: m[1], Replace: m[2]})
	}
	return blocks
}

// ApplyBlocks replaces every occurrence of each block's search text, block
// by block in order. A block whose search text is absent changes nothing.
// It returns the new content and how many blocks matched.
func ApplyBlocks(content string, blocks []Block) (string, int) {
	applied := 0
	for _, b := range blocks {
		if b.Search == "" || !strings.Contains(content, b.Search) {
			continue
		}
		content = strings.ReplaceAll(content, b.Search, b.Replace)
		applied++
	}
	return content, applied
}

// ApplyDiff parses and applies diff to content.
func ApplyDiff(content, diff string) (string, int, int) {
	blocks := ParseBlocks(diff)
	out, applied := ApplyBlocks(content, blocks)
	return out, len(blocks), applied
}
