package cache

import (
	"fmt"
	"regexp"
	"strings"
)

// CompilePattern translates a key pattern into an anchored regular expression.
// The only wildcard is `*`, matching zero or more characters; everything else
// is literal. The pattern must cover the whole key, so "cart:u1:*" matches
// "cart:u1:items" but not "xcart:u1:items".
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	for i, literal := range strings.Split(pattern, "*") {
		if i > 0 {
			b.WriteString(".*")
		}
		b.WriteString(regexp.QuoteMeta(literal))
	}
	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("cache: pattern %q: %w", pattern, err)
	}
	return re, nil
}
