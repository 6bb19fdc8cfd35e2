package vm

import "github.com/dlclark/regexp2"

// regexp2Pattern adapts *regexp2.Regexp to the narrow CompiledPattern
// surface the core consumes.
type regexp2Pattern struct {
	re *regexp2.Regexp
}

func (p *regexp2Pattern) MatchString(s string) (bool, error) {
	return p.re.MatchString(s)
}

// newRegexpData builds a RegexpData that lazily compiles source/flags
// through regexp2, the backtracking-capable engine needed for
// lookaround and backreference syntax real scripts rely on (plain
// RE2-family engines reject them outright).
func newRegexpData(source, flags string) *RegexpData {
	opts := regexp2.None
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 's':
			opts |= regexp2.Singleline
		case 'm':
			opts |= regexp2.Multiline
		}
	}
	return &RegexpData{
		Source: source,
		Flags:  flags,
		Compile: func() (CompiledPattern, error) {
			re, err := regexp2.Compile(source, opts)
			if err != nil {
				return nil, err
			}
			return &regexp2Pattern{re: re}, nil
		},
	}
}
