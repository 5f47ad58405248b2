package template

import (
	"strings"
	"time"
)

// strftimeDirectives maps a small subset of strftime directives (the
// ones the categorization template needs) to their Go reference-time
// layout fragments; strftimeToGoLayout applies it.
var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'M': "04",
	'S': "05",
	'B': "January",
	'b': "Jan",
	'A': "Monday",
	'a': "Mon",
	'p': "PM",
	'Z': "MST",
}

func strftimeToGoLayout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c == '%' && i+1 < len(format) {
			next := format[i+1]
			if layout, ok := strftimeDirectives[next]; ok {
				b.WriteString(layout)
				i++
				continue
			}
			if next == '%' {
				b.WriteByte('%')
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// formatDate renders t using a strftime-style format string.
func formatDate(t time.Time, format string) string {
	return t.Format(strftimeToGoLayout(format))
}
