package probe

import (
	"bytes"
	"mime"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const minPrescan = 2048

// ResolveEncoding picks the character encoding of an HTML body.
// Order: a charset declared in the markup, then the Content-Type header
// charset, then content sniffing. Unknown labels are skipped.
func ResolveEncoding(body []byte, contentType string) (encoding.Encoding, string) {
	if label := declaredCharset(body); label != "" {
		if e, name := charset.Lookup(label); e != nil {
			return fromMarkup(e, name)
		}
	}
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if label := params["charset"]; label != "" {
			if e, name := charset.Lookup(label); e != nil {
				return e, name
			}
		}
	}
	e, name, _ := charset.DetermineEncoding(body, "")
	return e, name
}

// fromMarkup applies the prescan overrides to an in-document declaration:
// a page that can state its charset in ASCII markup is not UTF-16, and
// x-user-defined is read as windows-1252.
func fromMarkup(e encoding.Encoding, name string) (encoding.Encoding, string) {
	switch name {
	case "utf-16be", "utf-16le":
		return unicode.UTF8, "utf-8"
	case "x-user-defined":
		return charmap.Windows1252, "windows-1252"
	}
	return e, name
}

// declaredCharset scans the head of the document for <meta charset> or an
// http-equiv Content-Type declaration.
func declaredCharset(body []byte) string {
	n := len(body) / 20
	if n < minPrescan {
		n = minPrescan
	}
	if n > len(body) {
		n = len(body)
	}

	z := html.NewTokenizer(bytes.NewReader(body[:n]))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}
			var httpEquiv, content string
			for more := true; more; {
				var key, val []byte
				key, val, more = z.TagAttr()
				switch string(key) {
				case "charset":
					if cs := strings.TrimSpace(string(val)); cs != "" {
						return cs
					}
				case "http-equiv":
					httpEquiv = strings.ToLower(strings.TrimSpace(string(val)))
				case "content":
					content = string(val)
				}
			}
			if httpEquiv != "content-type" {
				continue
			}
			if _, params, err := mime.ParseMediaType(content); err == nil && params["charset"] != "" {
				return params["charset"]
			}
		}
	}
}
