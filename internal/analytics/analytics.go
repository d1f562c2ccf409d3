// Package analytics folds recorded visits into click summaries.
//
// Unique counts use day buckets: a "unique click" or "unique user" is a distinct
// calendar day (in the aggregator's location) on which at least one visit happened.
// This approximates unique visitors without any visitor identity and is therefore
// an upper bound of one per day regardless of how many people clicked.
package analytics

import (
	"sort"
	"time"

	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

const (
	dateLayout = "2006-01-02"
	// AliasWindow is the trailing window covered by the per-day histogram of alias analytics.
	AliasWindow = 7 * 24 * time.Hour
)

// DateCount is the number of clicks on one calendar day.
type DateCount struct {
	Date  string
	Count int
}

// Breakdown aggregates the clicks sharing an OS name or device kind.
type Breakdown struct {
	Name         string
	UniqueClicks int // number of visits carrying the name
	UniqueUsers  int // number of distinct days the name was seen on
}

// Summary is the result of folding a set of visits.
type Summary struct {
	TotalClicks  int
	UniqueClicks int
	ClicksByDate []DateCount
	OSType       []Breakdown
	DeviceType   []Breakdown
}

// LinkSummary holds the click counts of a single link inside a topic report.
type LinkSummary struct {
	Alias        string
	TotalClicks  int
	UniqueClicks int
}

// AliasReport is the analytics of a single short link.
type AliasReport struct {
	Alias string
	Summary
}

// TopicReport is the analytics of every link sharing a topic.
type TopicReport struct {
	Topic string
	Summary
	URLs []LinkSummary
}

// AccountReport is the analytics of every link owned by an account.
type AccountReport struct {
	TotalURLs int
	Summary
}

// Aggregator computes summaries. It keeps no state between calls.
type Aggregator struct {
	loc *time.Location
}

// New creates an Aggregator bucketing days in loc. A nil loc means time.Local.
func New(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}

	return &Aggregator{loc: loc}
}

// Summarize folds visits without any date window.
func (a *Aggregator) Summarize(visits []entity.Visit) Summary {
	f := a.newFold()
	for _, v := range visits {
		f.add(v, true)
	}

	return f.summary()
}

// ByAlias builds the report of a single link. Its histogram only covers visits
// within AliasWindow before now; the other figures cover the whole history.
func (a *Aggregator) ByAlias(link *entity.ShortLink, visits []entity.Visit, now time.Time) AliasReport {
	since := now.Add(-AliasWindow)

	f := a.newFold()
	for _, v := range visits {
		f.add(v, !v.Timestamp.Before(since))
	}

	return AliasReport{
		Alias:   link.Alias,
		Summary: f.summary(),
	}
}

// ByTopic builds the report of all links of a topic. visits is keyed by link ID.
func (a *Aggregator) ByTopic(topic string, links []entity.ShortLink, visits map[int64][]entity.Visit) TopicReport {
	f := a.newFold()
	urls := make([]LinkSummary, 0, len(links))

	for _, link := range links {
		linkVisits := visits[link.ID]
		days := make(map[string]struct{})

		for _, v := range linkVisits {
			f.add(v, true)
			days[a.day(v.Timestamp)] = struct{}{}
		}

		urls = append(urls, LinkSummary{
			Alias:        link.Alias,
			TotalClicks:  len(linkVisits),
			UniqueClicks: len(days),
		})
	}

	return TopicReport{
		Topic:   topic,
		Summary: f.summary(),
		URLs:    urls,
	}
}

// ByAccount builds the report of all links owned by an account. visits is keyed by link ID.
func (a *Aggregator) ByAccount(links []entity.ShortLink, visits map[int64][]entity.Visit) AccountReport {
	f := a.newFold()
	for _, link := range links {
		for _, v := range visits[link.ID] {
			f.add(v, true)
		}
	}

	return AccountReport{
		TotalURLs: len(links),
		Summary:   f.summary(),
	}
}

func (a *Aggregator) day(t time.Time) string {
	return t.In(a.loc).Format(dateLayout)
}

type group struct {
	clicks int
	days   map[string]struct{}
}

type fold struct {
	agg    *Aggregator
	total  int
	days   map[string]struct{}
	byDate map[string]int
	os     map[string]*group
	device map[string]*group
}

func (a *Aggregator) newFold() *fold {
	return &fold{
		agg:    a,
		days:   make(map[string]struct{}),
		byDate: make(map[string]int),
		os:     make(map[string]*group),
		device: make(map[string]*group),
	}
}

func (f *fold) add(v entity.Visit, histogram bool) {
	day := f.agg.day(v.Timestamp)

	f.total++
	f.days[day] = struct{}{}
	if histogram {
		f.byDate[day]++
	}

	addToGroup(f.os, v.OSName, day)
	addToGroup(f.device, v.DeviceKind, day)
}

func addToGroup(groups map[string]*group, name, day string) {
	if name == "" {
		return
	}

	g, ok := groups[name]
	if !ok {
		g = &group{days: make(map[string]struct{})}
		groups[name] = g
	}

	g.clicks++
	g.days[day] = struct{}{}
}

func (f *fold) summary() Summary {
	byDate := make([]DateCount, 0, len(f.byDate))
	for date, count := range f.byDate {
		byDate = append(byDate, DateCount{Date: date, Count: count})
	}
	// ISO dates sort lexically.
	sort.Slice(byDate, func(i, j int) bool {
		return byDate[i].Date < byDate[j].Date
	})

	return Summary{
		TotalClicks:  f.total,
		UniqueClicks: len(f.days),
		ClicksByDate: byDate,
		OSType:       breakdowns(f.os),
		DeviceType:   breakdowns(f.device),
	}
}

func breakdowns(groups map[string]*group) []Breakdown {
	out := make([]Breakdown, 0, len(groups))
	for name, g := range groups {
		out = append(out, Breakdown{
			Name:         name,
			UniqueClicks: g.clicks,
			UniqueUsers:  len(g.days),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out
}
