package compose

import (
	"bytes"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// SkillFileName is the conventional metadata-bearing document of a
// skill directory.
const SkillFileName = "SKILL.md"

// Metadata holds the YAML frontmatter fields of a SKILL.md document.
type Metadata struct {
	Name        string
	Description string
}

// ExtractMetadata parses the YAML frontmatter of a markdown document.
// Returns nil without error when the document carries no frontmatter;
// assembled skills fall back to their configured description in that
// case.
func ExtractMetadata(content []byte) (*Metadata, error) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, err
	}

	data := meta.Get(pctx)
	if data == nil {
		return nil, nil
	}

	name, _ := data["name"].(string)
	description, _ := data["description"].(string)
	return &Metadata{Name: name, Description: description}, nil
}
