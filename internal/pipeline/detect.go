package pipeline

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"orgtree/internal"
)

var extensionTypes = map[string]internal.InputType{
	".json": internal.InputJSON,
	".html": internal.InputHTML,
	".htm":  internal.InputHTML,
	".xlsx": internal.InputXLSX,
}

// ParseInputType accepts a user-supplied type name. The empty string means
// detect.
func ParseInputType(value string) (internal.InputType, error) {
	switch t := internal.InputType(strings.ToLower(strings.TrimSpace(value))); t {
	case "", internal.InputJSON, internal.InputHTML, internal.InputXLSX:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedInput, value)
	}
}

// DetectInputType guesses the input format from the file or URL extension,
// then the content type, then the first non-blank bytes.
func DetectInputType(name, contentType string, head []byte) (internal.InputType, error) {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && u.Host != "" {
		name = u.Path
	}
	if t, ok := extensionTypes[strings.ToLower(path.Ext(name))]; ok {
		return t, nil
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return internal.InputJSON, nil
	case strings.Contains(ct, "html"):
		return internal.InputHTML, nil
	case strings.Contains(ct, "spreadsheetml"):
		return internal.InputXLSX, nil
	}

	if bytes.HasPrefix(head, []byte("PK")) {
		return internal.InputXLSX, nil
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")), " \t\r\n")
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		return internal.InputJSON, nil
	case bytes.HasPrefix(trimmed, []byte("<")):
		return internal.InputHTML, nil
	}
	return "", fmt.Errorf("%w: cannot detect format of %s", ErrUnsupportedInput, name)
}
