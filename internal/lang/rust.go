package lang

import (
	"github.com/smacker/go-tree-sitter/rust"
)

func init() {
	Languages["rust"] = &Language{
		Name:            "rust",
		Extensions:      []string{".rs", ".crs"},
		lang:            rust.GetLanguage(),
		DocMarker:       "//!",
		DirectivePrefix: "#!",
		NotDirective:    []string{"#!["},
		CommentNode:     "line_comment",
	}
}
