// Package ancestrymap tracks, for each surviving ancestor particle, the
// set of descendant track IDs that were dropped from the event record.
// It is the small key-to-set companion that ships alongside the sparse
// sequence container: independent of it, but often populated from the
// same simulation pass.
package ancestrymap

import (
	"math"

	"github.com/akmistry/sparsevec/internal/blockindex"
)

// NoAncestor is returned by GetAncestor when a track ID has no recorded
// ancestor.
const NoAncestor = -math.MaxInt

// Map records, for a set of ancestor track IDs, which descendant track
// IDs were dropped underneath them. The zero value is an empty Map.
type Map struct {
	particles map[int]map[int]struct{}

	// ranges indexes descendant IDs added in bulk via AddDescendantRange,
	// mapping each non-negative descendant ID back to its ancestor in
	// O(1) instead of the linear scan SetMap-populated entries require.
	// It only ever sees IDs going through AddDescendantRange; entries
	// added via SetMap or AddDescendant are not reflected here.
	ranges blockindex.RangeMap[int]
}

// SetMap replaces the map's contents wholesale, ancestor track ID to
// the set of its dropped descendant track IDs.
func (m *Map) SetMap(particles map[int]map[int]struct{}) {
	m.particles = particles
}

// GetMap returns the map's current ancestor-to-descendants contents.
// The caller must not mutate the returned map.
func (m *Map) GetMap() map[int]map[int]struct{} {
	return m.particles
}

// AddDescendant records trackid as a dropped descendant of ancestor.
func (m *Map) AddDescendant(ancestor, trackid int) {
	if m.particles == nil {
		m.particles = make(map[int]map[int]struct{})
	}
	set := m.particles[ancestor]
	if set == nil {
		set = make(map[int]struct{})
		m.particles[ancestor] = set
	}
	set[trackid] = struct{}{}
}

// AddDescendantRange records every track ID in [first, first+length) as
// a dropped descendant of ancestor, without materializing one map entry
// per ID. Simulation passes frequently spawn descendants in contiguous
// ID blocks, so this is the common case worth indexing specially; it
// only accelerates GetAncestor, and does not change what
// GetAllDroppedDescendants reports for ancestor (use AddDescendant for
// descendants that must show up there too). first must be non-negative.
func (m *Map) AddDescendantRange(ancestor, first, length int) {
	if length <= 0 {
		return
	}
	if m.ranges == nil {
		m.ranges = &blockindex.BitmapRangeMap[int]{}
	}
	m.ranges.Add(uint64(first), uint64(length), ancestor)
}

// HasDroppedDescendants reports whether trackid has any individually
// recorded dropped descendants (see AddDescendant, SetMap). It does not
// consult the bulk range index.
func (m *Map) HasDroppedDescendants(trackid int) bool {
	_, ok := m.particles[trackid]
	return ok
}

// GetAllDroppedDescendants returns the set of descendant track IDs
// individually recorded under trackid. The caller must not mutate the
// returned map. It returns nil if trackid has no recorded entry.
func (m *Map) GetAllDroppedDescendants(trackid int) map[int]struct{} {
	return m.particles[trackid]
}

// GetAncestor returns the ancestor track ID that trackid was dropped
// under, checking the bulk range index before falling back to a linear
// scan of individually recorded entries. It returns NoAncestor if
// trackid is not found in either.
func (m *Map) GetAncestor(trackid int) int {
	if m.ranges != nil && trackid >= 0 {
		if ancestor, ok := m.ranges.Get(uint64(trackid)); ok {
			return ancestor
		}
	}
	for ancestor, descendants := range m.particles {
		if _, ok := descendants[trackid]; ok {
			return ancestor
		}
	}
	return NoAncestor
}

// Exists reports whether a GetAncestor result denotes a real ancestor,
// as opposed to NoAncestor.
func Exists(ancestor int) bool {
	return ancestor != NoAncestor
}
