// Package listing orders aggregated posts and groups them by month of
// publication for display and export.
package listing

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"blogger-lister/internal/model"
)

// Entry is one rendered post line.
type Entry struct {
	Day       int
	Title     string
	URL       string
	Published time.Time
}

// Group is a run of consecutive posts sharing the same month and year.
type Group struct {
	Label string // e.g. "March 2024"
	Year  int
	Month time.Month
	Posts []Entry
}

// Collection is a sorted, grouped list of posts.
type Collection struct {
	Groups []Group
	Total  int
}

// Sort orders posts by publication time, newest first. Ties keep their order.
func Sort(posts []model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Published.After(posts[j].Published)
	})
}

// GroupByMonth walks posts in the given order and starts a new group whenever the
// month/year label changes. posts must already be sorted for each month to
// appear once.
func GroupByMonth(posts []model.Post, loc *time.Location) []Group {
	if loc == nil {
		loc = time.Local
	}
	var (
		groups  []Group
		current string
	)
	for _, p := range posts {
		t := p.Published.In(loc)
		label := fmt.Sprintf("%s %d", t.Month(), t.Year())
		if label != current {
			current = label
			groups = append(groups, Group{Label: label, Year: t.Year(), Month: t.Month()})
		}
		g := &groups[len(groups)-1]
		g.Posts = append(g.Posts, Entry{
			Day:       t.Day(),
			Title:     p.Title,
			URL:       secureURL(p.URL),
			Published: p.Published,
		})
	}
	return groups
}

// Build sorts posts in place and groups them.
func Build(posts []model.Post, loc *time.Location) Collection {
	Sort(posts)
	return Collection{
		Groups: GroupByMonth(posts, loc),
		Total:  len(posts),
	}
}

// Empty reports whether there is nothing to display.
func (c Collection) Empty() bool {
	return c.Total == 0
}

// TotalLabel is the count line shown above the list.
func (c Collection) TotalLabel() string {
	return fmt.Sprintf("Total Posts: %d", c.Total)
}

// WriteText renders the collection for a terminal.
func WriteText(w io.Writer, c Collection) error {
	if c.Empty() {
		_, err := fmt.Fprintln(w, "No posts found for this blog.")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, c.TotalLabel())
		return err
	}
	for i, g := range c.Groups {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, g.Label); err != nil {
			return err
		}
		for _, e := range g.Posts {
			if _, err := fmt.Fprintf(w, "  %2d: %s  %s\n", e.Day, e.Title, e.URL); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "\n%s\n", c.TotalLabel())
	return err
}

// secureURL upgrades plain http post links to https.
func secureURL(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
