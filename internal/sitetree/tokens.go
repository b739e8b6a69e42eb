package sitetree

import (
	"bytes"
	stderrors "errors"
	"io"

	"golang.org/x/net/html"
)

// visitFunc inspects a start tag and may edit its attributes; it reports whether it did.
type visitFunc func(t *html.Token) bool

// transform streams an HTML document through the tokenizer, calling visit for every
// start tag that can carry a reference. Untouched tokens are copied byte for byte,
// so documents without edits are returned unchanged.
func transform(data []byte, visit visitFunc) ([]byte, bool, error) {
	z := html.NewTokenizer(bytes.NewReader(data))
	var out bytes.Buffer
	out.Grow(len(data))
	changed := false

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !stderrors.Is(err, io.EOF) {
				return nil, false, err
			}
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(z.Raw())
			continue
		}
		// Token lowercases names in the tokenizer's buffer; keep the original bytes.
		raw := append([]byte(nil), z.Raw()...)
		tok := z.Token()
		if _, ok := refAttrs[tok.Data]; !ok || !visit(&tok) {
			out.Write(raw)
			continue
		}
		changed = true
		out.WriteString(tok.String())
	}
	if !changed {
		return data, false, nil
	}
	return out.Bytes(), true, nil
}

// extract returns every reference in data, attributed to document.
func extract(document string, data []byte) ([]Reference, error) {
	var refs []Reference
	_, _, err := transform(data, func(t *html.Token) bool {
		for _, attr := range refAttrs[t.Data] {
			v := attrValue(t, attr)
			if v == "" {
				continue
			}
			urls := []string{v}
			if attr == "srcset" {
				urls = splitSrcset(v)
			}
			for _, u := range urls {
				refs = append(refs, Reference{Document: document, Tag: t.Data, Attr: attr, URL: u, Kind: kindOf(t)})
			}
		}
		return false
	})
	return refs, err
}

// ExtractReferences parses one HTML document and lists its references.
func ExtractReferences(document string, r io.Reader) ([]Reference, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return extract(document, data)
}
