package configdoc

import (
	"path/filepath"
	"strings"
)

// Codec converts between document bytes and the node tree.
type Codec interface {
	Decode(src []byte) (Node, error)
	Encode(doc Node) ([]byte, error)
}

var codecs = map[string]Codec{
	".yaml": YAML{},
	".yml":  YAML{},
	".toml": TOML{},
}

// ForPath returns the codec for a file name.
func ForPath(path string) (Codec, bool) {
	c, ok := codecs[strings.ToLower(filepath.Ext(path))]
	return c, ok
}

// Supported reports whether documents with extension ext can be rewritten.
func Supported(ext string) bool {
	_, ok := codecs[strings.ToLower(ext)]
	return ok
}
