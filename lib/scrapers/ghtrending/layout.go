package ghtrending

import (
	"fmt"
	"sort"
	"strings"
)

// Layout names the CSS selectors that locate each field of an entry,
// every selector other than Entry is evaluated relative to the entry.
type Layout struct {
	Entry string
	// anchor whose text is "owner / name" and whose href is the repository path
	NameAnchor string
	// one or more elements whose joined text reads "<stars> <forks>"
	StarsForks string
	// label inside the language indicator, optional
	Language string
	// text reading "<n> stars today"
	TodayStars string
}

// markup of the listing since the Box-row redesign
var CurrentLayout = Layout{
	Entry:      "article.Box-row",
	NameAnchor: "h2 a",
	StarsForks: "a.Link--muted[href$='/stargazers'], a.Link--muted[href$='/forks']",
	Language:   "span.d-inline-block span[itemprop='programmingLanguage']",
	TodayStars: "span.float-sm-right",
}

// markup of the older ".repo-list" listing
var ClassicLayout = Layout{
	Entry:      ".repo-list > li",
	NameAnchor: ".mb-1 a",
	StarsForks: "a.mr-3",
	Language:   "span.d-inline-block span[itemprop='programmingLanguage']",
	TodayStars: ".float-sm-right",
}

var layouts = map[string]Layout{
	"current": CurrentLayout,
	"classic": ClassicLayout,
}

// LayoutByName resolves a layout from configuration, an empty name
// selects CurrentLayout.
func LayoutByName(name string) (Layout, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return CurrentLayout, nil
	}
	layout, ok := layouts[name]
	if !ok {
		known := make([]string, 0, len(layouts))
		for k := range layouts {
			known = append(known, k)
		}
		sort.Strings(known)
		return Layout{}, fmt.Errorf("unknown page layout %q, expected one of %s", name, strings.Join(known, ", "))
	}
	return layout, nil
}
