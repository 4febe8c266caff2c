package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"orgtree/internal"
	"orgtree/internal/util"
)

var reHeaderCell = regexp.MustCompile(`(?i)^(level|tier|org|organization|team|group)[\s_-]*\d*$`)

// LoadRaw reads input from a file path or an http(s) URL and decodes it into
// a raw hierarchy. An empty inputType is detected from the name, the reported
// content type and the leading bytes.
func LoadRaw(ctx context.Context, fetcher DumpFetcher, input string, inputType internal.InputType) (internal.RawNode, error) {
	var (
		blob        []byte
		contentType string
		err         error
	)
	if isRemote(input) {
		if fetcher == nil {
			return nil, fmt.Errorf("fetch %s: no remote client configured", input)
		}
		blob, contentType, err = fetcher.FetchDump(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", input, err)
		}
	} else {
		blob, err = os.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
	}

	if inputType == "" {
		inputType, err = DetectInputType(input, contentType, blob)
		if err != nil {
			return nil, err
		}
	}
	return ReadRaw(inputType, blob)
}

// ReadRaw decodes blob according to inputType.
func ReadRaw(inputType internal.InputType, blob []byte) (internal.RawNode, error) {
	switch inputType {
	case internal.InputJSON:
		return parseJSON(blob)
	case internal.InputHTML:
		return parseHTMLOutline(blob)
	case internal.InputXLSX:
		return parseXLSXPaths(blob)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, inputType)
	}
}

func isRemote(input string) bool {
	lower := strings.ToLower(input)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// parseJSON decodes a JSON object keeping key order. A repeated key keeps its
// first position and takes the later value. Arrays and scalars are leaves.
func parseJSON(blob []byte) (internal.RawNode, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(blob, []byte("\xef\xbb\xbf"))))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformedInput)
	}
	node, err := decodeObject(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedInput)
	}
	return node, nil
}

func decodeObject(dec *json.Decoder) (internal.RawNode, error) {
	node := internal.RawNode{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		children, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		node = node.Put(key, children)
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func decodeValue(dec *json.Decoder) (internal.RawNode, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok {
	case json.Delim('{'):
		return decodeObject(dec)
	case json.Delim('['):
		for dec.More() {
			if _, err := decodeValue(dec); err != nil {
				return nil, err
			}
		}
		_, err := dec.Token()
		return nil, err
	}
	return nil, nil
}

// parseHTMLOutline reads nested ul/ol lists. Each li's own text is a label and
// the lists nested inside it are its children.
func parseHTMLOutline(blob []byte) (internal.RawNode, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	roots := doc.Find("ul, ol").FilterFunction(func(_ int, list *goquery.Selection) bool {
		return list.ParentsFiltered("li").Length() == 0
	})
	if roots.Length() == 0 {
		return nil, fmt.Errorf("%w: no outline lists found", ErrMalformedInput)
	}

	node := internal.RawNode{}
	roots.Each(func(_ int, list *goquery.Selection) {
		node = mergeOutlineList(node, list)
	})
	return node, nil
}

func mergeOutlineList(node internal.RawNode, list *goquery.Selection) internal.RawNode {
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		label := li.Clone()
		label.Find("ul, ol").Remove()
		text := strings.TrimSpace(util.CollapseSpaces(label.Text()))

		var children internal.RawNode
		li.Find("ul, ol").Each(func(_ int, nested *goquery.Selection) {
			if nested.ParentsFiltered("li").First().IsSelection(li) {
				children = mergeOutlineList(children, nested)
			}
		})

		if text == "" {
			for _, c := range children {
				node = node.Merge(c.Label, c.Children)
			}
			return
		}
		node = node.Merge(text, children)
	})
	return node
}

// parseXLSXPaths treats each row as a root-to-leaf label path. A first row made
// only of column captions such as "Level 1" or "Team" is skipped.
func parseXLSXPaths(blob []byte) (internal.RawNode, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	defer f.Close()

	node := internal.RawNode{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %s: %v", ErrMalformedInput, sheet, err)
		}
		for i, row := range rows {
			path := nonEmptyCells(row)
			if len(path) == 0 {
				continue
			}
			if i == 0 && isHeaderRow(path) {
				continue
			}
			node = node.MergePath(path)
		}
	}
	return node, nil
}

func nonEmptyCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		if c = strings.TrimSpace(util.CollapseSpaces(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func isHeaderRow(cells []string) bool {
	for _, c := range cells {
		if !reHeaderCell.MatchString(c) {
			return false
		}
	}
	return true
}
