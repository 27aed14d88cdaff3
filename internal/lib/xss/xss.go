// Package xss neutralises script injection in user supplied text.
//
// Sanitize keeps a whitelist of harmless formatting tags and their
// harmless attributes. Every other tag is turned into inert text by
// escaping its angle brackets. Text is kept byte for byte apart from '<'
// and '>', so existing entities survive and Sanitize is idempotent.
package xss

import (
	"bytes"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// whitelist maps allowed tags to their allowed attributes.
var whitelist = map[string][]string{
	"a":          {"target", "href", "title"},
	"abbr":       {"title"},
	"address":    {},
	"area":       {"shape", "coords", "href", "alt"},
	"article":    {},
	"aside":      {},
	"audio":      {"autoplay", "controls", "crossorigin", "loop", "muted", "preload", "src"},
	"b":          {},
	"bdi":        {"dir"},
	"bdo":        {"dir"},
	"big":        {},
	"blockquote": {"cite"},
	"br":         {},
	"caption":    {},
	"center":     {},
	"cite":       {},
	"code":       {},
	"col":        {"align", "valign", "span", "width"},
	"colgroup":   {"align", "valign", "span", "width"},
	"dd":         {},
	"del":        {"datetime"},
	"details":    {"open"},
	"div":        {},
	"dl":         {},
	"dt":         {},
	"em":         {},
	"figcaption": {},
	"figure":     {},
	"font":       {"color", "size", "face"},
	"footer":     {},
	"h1":         {},
	"h2":         {},
	"h3":         {},
	"h4":         {},
	"h5":         {},
	"h6":         {},
	"header":     {},
	"hr":         {},
	"i":          {},
	"img":        {"src", "alt", "title", "width", "height"},
	"ins":        {"datetime"},
	"li":         {},
	"mark":       {},
	"nav":        {},
	"ol":         {},
	"p":          {},
	"pre":        {},
	"s":          {},
	"section":    {},
	"small":      {},
	"span":       {},
	"sub":        {},
	"summary":    {},
	"sup":        {},
	"strong":     {},
	"strike":     {},
	"table":      {"width", "border", "align", "valign"},
	"tbody":      {"align", "valign"},
	"td":         {"width", "rowspan", "colspan", "align", "valign"},
	"tfoot":      {"align", "valign"},
	"th":         {"width", "rowspan", "colspan", "align", "valign"},
	"thead":      {"align", "valign"},
	"tr":         {"rowspan", "align", "valign"},
	"tt":         {},
	"u":          {},
	"ul":         {},
	"video":      {"autoplay", "controls", "crossorigin", "loop", "muted", "playsinline", "poster", "preload", "src", "height", "width"},
}

// urlPrefixes are the schemes and relative forms a link attribute may use.
var urlPrefixes = []string{
	"#", "/", "./", "../",
	"http://", "https://", "mailto:", "tel:", "ftp://", "data:image/",
}

var (
	textEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(`"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

// Sanitize returns s with unsafe markup neutralised.
func Sanitize(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	var out bytes.Buffer
	out.Grow(len(s) + 16)

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// The tokenizer only fails on read errors, which a string
				// reader never produces. Keep whatever was left as text.
				out.WriteString(textEscaper.Replace(string(z.Raw())))
			}
			return out.String()
		}

		// Raw must be copied before TagName, which lowercases in place.
		raw := string(z.Raw())

		switch tt {
		case html.TextToken:
			out.WriteString(textEscaper.Replace(raw))

		case html.StartTagToken, html.SelfClosingTagToken:
			if tt == html.StartTagToken {
				// Keep tokenizing markup inside <script>, <style> and friends.
				z.NextIsNotRawText()
			}
			writeTag(&out, z, tt, raw)

		case html.EndTagToken:
			name, _ := z.TagName()
			if _, ok := whitelist[string(name)]; ok {
				out.WriteString("</" + string(name) + ">")
			} else {
				out.WriteString(textEscaper.Replace(raw))
			}

		case html.CommentToken:
			if strings.HasPrefix(raw, "<!--") {
				continue
			}
			out.WriteString(textEscaper.Replace(raw))

		default:
			out.WriteString(textEscaper.Replace(raw))
		}
	}
}

func writeTag(out *bytes.Buffer, z *html.Tokenizer, tt html.TokenType, raw string) {
	name, hasAttr := z.TagName()
	allowed, ok := whitelist[string(name)]
	if !ok {
		out.WriteString(textEscaper.Replace(raw))
		return
	}

	out.WriteString("<" + string(name))
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		attr := string(key)
		if !slices.Contains(allowed, attr) {
			continue
		}

		value := safeAttrValue(attr, string(val))
		out.WriteByte(' ')
		out.WriteString(attr)
		if value != "" {
			out.WriteString(`="` + attrEscaper.Replace(value) + `"`)
		}
	}

	if tt == html.SelfClosingTagToken {
		out.WriteString(" />")
		return
	}
	out.WriteByte('>')
}

// safeAttrValue blanks link attributes whose target is not a known safe
// scheme or a relative reference.
func safeAttrValue(attr, value string) string {
	value = strings.TrimSpace(value)
	if attr != "href" && attr != "src" && attr != "poster" {
		return value
	}
	if value == "" {
		return ""
	}

	lower := strings.ToLower(value)
	for _, prefix := range urlPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return value
		}
	}
	return ""
}
