// Package lang provides a language registry mapping file extensions to
// tree-sitter grammars and the comment conventions scripts are written in.
package lang

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language holds tree-sitter configuration for a supported script language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// DocMarker starts a line of the leading documentation comment.
	DocMarker string
	// DirectivePrefix starts the optional interpreter line.
	DirectivePrefix string
	// NotDirective lists prefixes that look like a directive but are source
	// (Rust inner attributes start with "#![").
	NotDirective []string
	// CommentNode is the grammar node type of a line comment.
	CommentNode string
}

// NewParser creates a fresh tree-sitter parser for this language.
// Parsers are not safe for concurrent use.
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[ext]
}

// Rust returns the registered Rust language.
func Rust() *Language {
	return Languages["rust"]
}
