// Package trending holds the record shared by every stage of the pipeline,
// from extraction through persistence to reporting.
package trending

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// None is stored in place of optional text that was absent or empty
// on the source page.
const None = "None"

// Record is one trending repository as seen at fetch time.
type Record struct {
	UserName  string
	RepoName  string
	Star      int
	Fork      int
	Language  string
	TodayStar int
	RepoUrl   string
}

func (r Record) FullName() string {
	return r.UserName + "/" + r.RepoName
}

// Validate reports the first field that breaks the record's invariants.
func (r Record) Validate() error {
	if r.UserName == "" || strings.TrimSpace(r.UserName) != r.UserName {
		return fmt.Errorf("userName %q: must be non-empty and trimmed", r.UserName)
	}
	if r.RepoName == "" || strings.TrimSpace(r.RepoName) != r.RepoName {
		return fmt.Errorf("repoName %q: must be non-empty and trimmed", r.RepoName)
	}
	if r.Star < 0 {
		return fmt.Errorf("star %d: must not be negative", r.Star)
	}
	if r.Fork < 0 {
		return fmt.Errorf("fork %d: must not be negative", r.Fork)
	}
	if r.TodayStar < 0 {
		return fmt.Errorf("todayStar %d: must not be negative", r.TodayStar)
	}
	if r.Language == "" {
		return errors.New("language: must be set, use None when unknown")
	}
	link, err := url.Parse(r.RepoUrl)
	if err != nil {
		return fmt.Errorf("repoUrl %q: %w", r.RepoUrl, err)
	}
	if !link.IsAbs() || link.Host == "" {
		return fmt.Errorf("repoUrl %q: must be absolute", r.RepoUrl)
	}
	return nil
}

// Dataset is an ordered sequence of records read back from a store.
type Dataset []Record

func (d Dataset) Stars() []int {
	out := make([]int, len(d))
	for i, r := range d {
		out[i] = r.Star
	}
	return out
}

func (d Dataset) Forks() []int {
	out := make([]int, len(d))
	for i, r := range d {
		out[i] = r.Fork
	}
	return out
}

func (d Dataset) TodayStars() []int {
	out := make([]int, len(d))
	for i, r := range d {
		out[i] = r.TodayStar
	}
	return out
}

func (d Dataset) Languages() []string {
	out := make([]string, len(d))
	for i, r := range d {
		out[i] = r.Language
	}
	return out
}
