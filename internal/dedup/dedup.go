// Package dedup collapses events describing the same real-world incident,
// reported by multiple sources with different wording, into a single event
// carrying every source reference.
//
// Two events merge when they share an exact normalized id, or when their
// normalized titles overlap above a similarity threshold within a bounded
// time window and they agree on at least one classified layer. Merging is
// transitive within a run via union-find, and the surviving event is always
// the earliest in batch order, so the output partition does not depend on
// comparison order.
package dedup

import (
	"sort"
	"time"

	"github.com/purnamedha/sirascan/internal/event"
	"github.com/purnamedha/sirascan/internal/sira"
)

const (
	// DefaultThreshold is the token-overlap ratio above which two titles
	// are considered the same story. Strictly-greater comparison with 0.55
	// admits the common rewritten-headline case, where three of five
	// significant words survive the rewrite.
	DefaultThreshold = 0.55

	// DefaultWindow bounds how far apart two events may be published and
	// still be fuzzy-compared. Wire stories echo for about three days;
	// beyond that a similar headline is usually a different incident.
	DefaultWindow = 72 * time.Hour
)

// Deduplicator merges near-duplicate events. The zero value is not usable;
// construct with New.
type Deduplicator struct {
	threshold float64
	window    time.Duration
}

// New creates a Deduplicator. A non-positive threshold or window falls back
// to the defaults.
func New(threshold float64, window time.Duration) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Deduplicator{threshold: threshold, window: window}
}

// Dedup returns the batch with near-duplicates merged, in batch order of
// each group's canonical (first-seen) event. Input events are not mutated;
// merged survivors are fresh copies. Dedup is idempotent: applying it to
// its own output changes nothing.
func (d *Deduplicator) Dedup(events []*event.Event) []*event.Event {
	// Merging unions layers into the survivor, which can make it newly
	// comparable to an event the layer gate kept apart, so one pass is not
	// always a fixpoint. Iterate until a pass merges nothing; each round
	// shrinks the batch, so this terminates.
	out := d.dedupOnce(events)
	for len(out) < len(events) {
		events = out
		out = d.dedupOnce(events)
	}
	return out
}

func (d *Deduplicator) dedupOnce(events []*event.Event) []*event.Event {
	if len(events) <= 1 {
		return events
	}

	uf := newUnionFind(len(events))

	// Exact path: same computed id is the same story by construction.
	byID := make(map[string]int, len(events))
	for i, ev := range events {
		if j, ok := byID[ev.ID]; ok {
			uf.union(j, i)
			continue
		}
		byID[ev.ID] = i
	}

	// Fuzzy path: pairwise within the time window. Batches are bounded
	// (days of news), so O(n^2) comparisons are fine without an index.
	tokens := make([]map[string]struct{}, len(events))
	for i, ev := range events {
		tokens[i] = event.TitleTokens(ev.Title)
	}
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if uf.find(i) == uf.find(j) {
				continue
			}
			if !d.comparable(events[i], events[j]) {
				continue
			}
			if overlapRatio(tokens[i], tokens[j]) <= d.threshold {
				continue
			}
			if !sharesLayer(events[i], events[j]) {
				continue
			}
			uf.union(i, j)
		}
	}

	// Collapse each group onto its earliest member, scanning in batch
	// order so merge results are deterministic.
	merged := make(map[int]*event.Event)
	var order []int
	for i, ev := range events {
		root := uf.find(i)
		if canon, ok := merged[root]; ok {
			mergeInto(canon, ev)
			continue
		}
		cp := *ev
		cp.Sources = append([]event.SourceRef(nil), ev.Sources...)
		cp.Layers = append([]string(nil), ev.Layers...)
		cp.Metrics = append([]string(nil), ev.Metrics...)
		merged[root] = &cp
		order = append(order, root)
	}

	out := make([]*event.Event, 0, len(order))
	for _, root := range order {
		out = append(out, merged[root])
	}
	return out
}

// comparable reports whether the fuzzy path may consider the pair at all.
// Events with unknown dates are compared unconditionally; the layer gate
// still protects them from generic-headline false positives.
func (d *Deduplicator) comparable(a, b *event.Event) bool {
	if a.PublishedAt == nil || b.PublishedAt == nil {
		return true
	}
	gap := a.PublishedAt.Sub(*b.PublishedAt)
	if gap < 0 {
		gap = -gap
	}
	return gap <= d.window
}

// overlapRatio is |A∩B| / min(|A|,|B|) over normalized title tokens.
func overlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	var inter int
	for tok := range small {
		if _, ok := large[tok]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(small))
}

func sharesLayer(a, b *event.Event) bool {
	for _, l := range a.Layers {
		if b.HasLayer(l) {
			return true
		}
	}
	return false
}

// mergeInto folds src into the canonical event: union of sources (keyed by
// URL, order preserved), union of layers and metrics (sorted), earliest
// published date, and the most severe of the two severities. The canonical
// title, summary, sector, angle and id stand.
func mergeInto(canon, src *event.Event) {
	seen := make(map[string]struct{}, len(canon.Sources))
	for _, s := range canon.Sources {
		seen[s.URL] = struct{}{}
	}
	for _, s := range src.Sources {
		if _, ok := seen[s.URL]; ok {
			continue
		}
		seen[s.URL] = struct{}{}
		canon.Sources = append(canon.Sources, s)
	}

	canon.Layers = unionSorted(canon.Layers, src.Layers)
	canon.Metrics = unionSorted(canon.Metrics, src.Metrics)
	canon.Severity = sira.MaxSeverity(canon.Severity, src.Severity)

	if src.PublishedAt != nil &&
		(canon.PublishedAt == nil || src.PublishedAt.Before(*canon.PublishedAt)) {
		canon.PublishedAt = src.PublishedAt
	}
}

func unionSorted(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// unionFind is a plain disjoint-set with path halving. Roots are always the
// smallest batch index in their set, which is what makes the canonical
// event the earliest-seen one.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(i, j int) {
	ri, rj := u.find(i), u.find(j)
	if ri == rj {
		return
	}
	if rj < ri {
		ri, rj = rj, ri
	}
	u.parent[rj] = ri
}
