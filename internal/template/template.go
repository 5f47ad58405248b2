// Package template implements the categorization template engine
// (spec §4.3): a compile-once pattern over aliased properties that
// renders a final relative on-disk path for an ingested master file.
package template

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/lumenvault/photovault/internal/apperr"
	"github.com/lumenvault/photovault/internal/propmap"
)

// Well-known property aliases the template reads from the ambient
// property map. Pipeline steps publish values under these names.
const (
	AliasFileName      = "file_name"
	AliasEffectiveDate = "effective_date"
	AliasHash          = "hash"
	AliasCamera        = "camera"
	AliasRating        = "rating"
)

type tokenKind int

const (
	tokenFileName tokenKind = iota
	tokenFileStem
	tokenExtension
	tokenYear
	tokenMonth
	tokenDay
	tokenDateFormat
	tokenHashFull
	tokenHashSlice
	tokenCamera
	tokenRating
)

type token struct {
	kind       tokenKind
	dateFormat string
	start, len int
}

type part struct {
	literal string
	isToken bool
	tok     token
}

// Compiled is a parsed categorization template ready to render.
type Compiled struct {
	source string
	parts  []part
}

// Compile parses a template string such as
// "{year}/{date:%Y-%m-%d}/{fileName}" into a Compiled template.
func Compile(source string) (*Compiled, error) {
	c := &Compiled{source: source}
	if err := c.parse(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Compiled) parse() error {
	var literal strings.Builder
	runes := []rune(c.source)
	i := 0
	for i < len(runes) {
		ch := runes[i]
		if ch == '{' {
			if literal.Len() > 0 {
				c.parts = append(c.parts, part{literal: literal.String()})
				literal.Reset()
			}
			j := i + 1
			for j < len(runes) && runes[j] != '}' {
				j++
			}
			raw := string(runes[i+1 : j])
			tok, err := parseToken(raw)
			if err != nil {
				return err
			}
			c.parts = append(c.parts, part{isToken: true, tok: tok})
			i = j + 1
			continue
		}
		literal.WriteRune(ch)
		i++
	}
	if literal.Len() > 0 {
		c.parts = append(c.parts, part{literal: literal.String()})
	}
	return nil
}

func parseToken(raw string) (token, error) {
	switch raw {
	case "fileName":
		return token{kind: tokenFileName}, nil
	case "fileStem":
		return token{kind: tokenFileStem}, nil
	case "extension":
		return token{kind: tokenExtension}, nil
	case "year":
		return token{kind: tokenYear}, nil
	case "month":
		return token{kind: tokenMonth}, nil
	case "day":
		return token{kind: tokenDay}, nil
	case "hash":
		return token{kind: tokenHashFull}, nil
	case "camera":
		return token{kind: tokenCamera}, nil
	case "rating":
		return token{kind: tokenRating}, nil
	}

	if strings.HasPrefix(raw, "date:") {
		return token{kind: tokenDateFormat, dateFormat: strings.TrimPrefix(raw, "date:")}, nil
	}

	if strings.HasPrefix(raw, "hash:") {
		fields := strings.Split(raw, ":")
		if len(fields) == 3 {
			start, err1 := strconv.Atoi(fields[1])
			length, err2 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil {
				return token{kind: tokenHashSlice, start: start, len: length}, nil
			}
		}
	}

	return token{}, apperr.Newf(apperr.KindInvalidInput, "template.Compile", "unknown token %q", raw)
}

// Source returns the original template string Compile parsed, so a
// Compiled template can be re-transmitted (e.g. across a durable task
// queue) and recompiled on the other side.
func (c *Compiled) Source() string {
	return c.source
}

// RequiresHash reports whether any token in the template reads the
// content hash, used to decide whether the hash step must run before
// categorization.
func (c *Compiled) RequiresHash() bool {
	for _, p := range c.parts {
		if p.isToken && (p.tok.kind == tokenHashFull || p.tok.kind == tokenHashSlice) {
			return true
		}
	}
	return false
}

// Render resolves every token against m and returns the sanitized,
// normalized relative path. It fails with apperr.KindInvalidInput
// wrapping a MissingProperty-shaped message when a referenced
// property is absent.
func (c *Compiled) Render(m *propmap.Map) (string, error) {
	var out strings.Builder
	for _, p := range c.parts {
		if !p.isToken {
			out.WriteString(p.literal)
			continue
		}
		value, err := resolveToken(p.tok, m)
		if err != nil {
			return "", err
		}
		out.WriteString(sanitize(value))
	}
	return normalize(out.String()), nil
}

func resolveToken(t token, m *propmap.Map) (string, error) {
	switch t.kind {
	case tokenFileName:
		name, ok := propmap.GetByAlias[string](m, AliasFileName)
		if !ok {
			return "", missingProperty(AliasFileName)
		}
		return name, nil
	case tokenFileStem:
		name, ok := propmap.GetByAlias[string](m, AliasFileName)
		if !ok {
			return "", missingProperty(AliasFileName)
		}
		ext := path.Ext(name)
		return strings.TrimSuffix(name, ext), nil
	case tokenExtension:
		name, ok := propmap.GetByAlias[string](m, AliasFileName)
		if !ok {
			return "", missingProperty(AliasFileName)
		}
		return strings.TrimPrefix(path.Ext(name), "."), nil
	case tokenYear, tokenMonth, tokenDay, tokenDateFormat:
		date, ok := propmap.GetByAlias[time.Time](m, AliasEffectiveDate)
		if !ok {
			return "", missingProperty(AliasEffectiveDate)
		}
		switch t.kind {
		case tokenYear:
			return date.Format("2006"), nil
		case tokenMonth:
			return date.Format("01"), nil
		case tokenDay:
			return date.Format("02"), nil
		default:
			return formatDate(date, t.dateFormat), nil
		}
	case tokenHashFull, tokenHashSlice:
		hash, ok := propmap.GetByAlias[string](m, AliasHash)
		if !ok {
			return "", missingProperty(AliasHash)
		}
		if t.kind == tokenHashFull {
			return hash, nil
		}
		runes := []rune(hash)
		start := t.start
		if start > len(runes) {
			start = len(runes)
		}
		end := start + t.len
		if end > len(runes) {
			end = len(runes)
		}
		return string(runes[start:end]), nil
	case tokenCamera:
		camera, ok := propmap.GetByAlias[string](m, AliasCamera)
		if !ok {
			return "", missingProperty(AliasCamera)
		}
		return camera, nil
	case tokenRating:
		rating, ok := propmap.GetByAlias[int](m, AliasRating)
		if !ok {
			rating = 0
		}
		return strconv.Itoa(rating), nil
	}
	return "", apperr.Newf(apperr.KindInternal, "template.Render", "unhandled token kind %d", t.kind)
}

func missingProperty(key string) error {
	return apperr.Newf(apperr.KindInvalidInput, "template.Render", "MissingProperty(%s)", key)
}

func sanitize(value string) string {
	value = strings.ReplaceAll(value, "/", "_")
	value = strings.ReplaceAll(value, "\\", "_")
	value = strings.ReplaceAll(value, "..", "_")
	return strings.TrimSpace(value)
}

// normalize splits on '/', drops empty segments, and re-joins, so the
// rendered path never has leading, trailing, or empty segments.
func normalize(p string) string {
	segments := strings.Split(p, "/")
	out := segments[:0]
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "/")
}

// Predefined templates offered as pre-built strings in place of the
// source's separate hash-based and date-based categorizer
// implementations (see spec §9 "Categorizer selection").
const (
	HashTemplate = "{hash:0:2}/{hash:2:4}/{hash}.{extension}"
	DateTemplate = "{year}/{date:%Y-%m-%d}/{fileName}"
)

// DefaultTemplate is the default applied to a new storage location.
const DefaultTemplate = "{year}/{date:%Y-%m-%d}/{fileName}"
