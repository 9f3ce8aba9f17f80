package qxsd

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/skycoder42/qxmlcodegen/internal/xmltree"
	"github.com/skycoder42/qxmlcodegen/qxschema"
)

// defaultConfig returns the configuration applied when the schema root
// carries no qxg:config child, deriving ClassName from the input file's
// base name per §3.
func defaultConfig(inputPath string) Config {
	return Config{
		ClassName:  titleCase(baseNameNoExt(inputPath)),
		Visibility: VisibilityProtected,
	}
}

func baseNameNoExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// loadConfig reads the qxg:config child of root, if any, per §4.C. Any
// qxg:include child's text is the include path, its "local" attribute
// selects local (project-relative, quoted) vs standard import form.
func loadConfig(root *xmltree.Element, inputPath string) Config {
	cfg := defaultConfig(inputPath)

	var node *xmltree.Element
	for i := range root.Children {
		c := &root.Children[i]
		if qxschema.IsAnnotationNamespace(c.Name.Space) && c.Name.Local == "config" {
			node = c
			break
		}
	}
	if node == nil {
		return cfg
	}

	if v, ok := node.AttrLocal("class"); ok && v != "" {
		cfg.ClassName = v
	}
	if v, ok := node.AttrLocal("prefix"); ok {
		cfg.Prefix = v
	}
	if v, ok := node.AttrLocal("ns"); ok {
		cfg.Namespace = v
	}
	if v, ok := node.AttrLocal("schemaUrl"); ok {
		cfg.SchemaURL = v
	}
	if v, ok := node.AttrLocal("stdcompat"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StdCompat = b
		}
	}
	if v, ok := node.AttrLocal("visibility"); ok {
		switch strings.ToLower(v) {
		case "public":
			cfg.Visibility = VisibilityPublic
		case "private":
			cfg.Visibility = VisibilityPrivate
		default:
			cfg.Visibility = VisibilityProtected
		}
	}

	for i := range node.Children {
		c := &node.Children[i]
		if !qxschema.IsAnnotationNamespace(c.Name.Space) || c.Name.Local != "include" {
			continue
		}
		local := false
		if v, ok := c.AttrLocal("local"); ok {
			local, _ = strconv.ParseBool(v)
		}
		cfg.Includes = append(cfg.Includes, Include{
			Path:  strings.TrimSpace(string(c.Content)),
			Local: local,
		})
	}

	return cfg
}
