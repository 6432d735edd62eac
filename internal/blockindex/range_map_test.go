package blockindex

import (
	"math/rand"
	"testing"
)

// These tests drive BitmapRangeMap through the shape ancestrymap
// actually exercises it with: bulk spans of descendant track IDs, each
// span recorded under a single ancestor ID via one Add call.

type testRangeMap = RangeMap[int]

func checkBeginEnd(t *testing.T, m testRangeMap, expBegin uint64, expOk bool, expEnd uint64) {
	t.Helper()
	begin, ok := m.Begin()
	if ok != expOk || begin != expBegin {
		t.Errorf("Unexpected Begin() (%d, %v) != (%d, %v)", begin, ok, expBegin, expOk)
	}
	end := m.End()
	if end != expEnd {
		t.Errorf("Unexpected End() %d != %d", end, expEnd)
	}
}

func testBeginEnd(t *testing.T, m testRangeMap) {
	const ancestor1, ancestor2, ancestor3, ancestor4 = 101, 102, 103, 104

	checkBeginEnd(t, m, 0, false, 0)

	// Ancestor 101 spawned descendant track IDs [1234, 1357).
	m.Add(1234, 123, ancestor1)
	checkBeginEnd(t, m, 1234, true, 1357)
	// A second ancestor's descendants can precede the first's.
	m.Add(1230, 4, ancestor2)
	checkBeginEnd(t, m, 1230, true, 1357)
	m.Add(1230, 1, ancestor3)
	checkBeginEnd(t, m, 1230, true, 1357)
	m.Add(1229, 1, ancestor4)
	checkBeginEnd(t, m, 1229, true, 1357)

	m.Add(1345, 5, ancestor1)
	checkBeginEnd(t, m, 1229, true, 1357)
	m.Add(1350, 9, ancestor1)
	checkBeginEnd(t, m, 1229, true, 1359)

	// Stress test: a long simulation run spawning many ancestor/span pairs.
	const maxTrackID = 100000
	const maxSpanLength = 1000
	begin, _ := m.Begin()
	end := m.End()
	for ancestor := 0; ancestor < 1000; ancestor++ {
		off := uint64(rand.Int63n(maxTrackID))
		length := uint64(rand.Int63n(maxSpanLength) + 1)
		m.Add(off, length, ancestor)
		if off < begin {
			begin = off
		}
		if (off + length) > end {
			end = off + length
		}
		checkBeginEnd(t, m, begin, true, end)
	}
}

func TestBitmapRangeMap_BeginEnd(t *testing.T) {
	var m BitmapRangeMap[int]
	testBeginEnd(t, &m)
}

func testAddGet(t *testing.T, m testRangeMap) {
	const maxTrackID = 100000
	ancestorOf := make([]int, maxTrackID)

	const maxSpanLength = 1000
	const ancestors = 100
	for ancestor := 1; ancestor < ancestors; ancestor++ {
		off := uint64(rand.Int63n(maxTrackID - maxSpanLength))
		length := uint64(rand.Int63n(maxSpanLength) + 1)
		m.Add(off, length, ancestor)
		for j := uint64(0); j < length; j++ {
			ancestorOf[off+j] = ancestor
		}

		for trackID, wantAncestor := range ancestorOf {
			gotAncestor, ok := m.Get(uint64(trackID))
			if wantAncestor == 0 {
				if ok {
					t.Errorf("Get(%d) expected !ok", trackID)
				}
			} else {
				if !ok || gotAncestor != wantAncestor {
					t.Errorf("Get(%d) (%d, %v) != (%d, true)", trackID, gotAncestor, ok, wantAncestor)
				}
			}
		}
	}
}

func TestBitmapRangeMap_AddGet(t *testing.T) {
	var m BitmapRangeMap[int]
	testAddGet(t, &m)
}

func testNext(t *testing.T, m testRangeMap) {
	const maxTrackID = 100000
	ancestorOf := make([]int, maxTrackID)

	const maxSpanLength = 1000
	const ancestors = 100
	for ancestor := 1; ancestor < ancestors; ancestor++ {
		off := uint64(rand.Int63n(maxTrackID - maxSpanLength))
		length := uint64(rand.Int63n(maxSpanLength) + 1)
		m.Add(off, length, ancestor)
		for j := uint64(0); j < length; j++ {
			ancestorOf[off+j] = ancestor
		}
	}

	for trackID, ancestor := range ancestorOf {
		nextKey, ok := m.NextKey(uint64(trackID))
		nextEmpty := m.NextEmpty(uint64(trackID))
		if ancestor == 0 {
			if nextEmpty != uint64(trackID) {
				t.Errorf("NextEmpty(%d) %d != %d", trackID, nextEmpty, trackID)
			}

			// Find the next recorded descendant.
			j := uint64(trackID)
			for ; j < maxTrackID && ancestorOf[j] == 0; j++ {
			}
			if j >= maxTrackID {
				if ok {
					t.Errorf("NextKey(%d) ok", trackID)
				}
			} else {
				if !ok || nextKey != j {
					t.Errorf("NextKey(%d) (%d, %v) != (%d, true)", trackID, nextKey, ok, j)
				}
			}
		} else {
			if !ok || nextKey != uint64(trackID) {
				t.Errorf("NextKey(%d) (%d, %v) != (%d, true)", trackID, nextKey, ok, trackID)
			}

			// Find the next unrecorded track ID.
			j := uint64(trackID)
			for ; j < maxTrackID && ancestorOf[j] != 0; j++ {
			}
			if nextEmpty != j {
				t.Errorf("NextEmpty(%d) %d != %d", trackID, nextEmpty, j)
			}
		}
	}
}

func TestBitmapRangeMap_Next(t *testing.T) {
	var m BitmapRangeMap[int]
	testNext(t, &m)
}

func testIterate(t *testing.T, m testRangeMap) {
	const maxTrackID = 10000
	ancestorOf := make([]int, maxTrackID)

	const maxSpanLength = 1000
	const ancestors = 10
	for ancestor := 1; ancestor < ancestors; ancestor++ {
		off := uint64(rand.Int63n(maxTrackID - maxSpanLength))
		length := uint64(rand.Int63n(maxSpanLength) + 1)
		m.Add(off, length, ancestor)
		for j := uint64(0); j < length; j++ {
			ancestorOf[off+j] = ancestor
		}
	}

	for start := range ancestorOf {
		prevEnd := uint64(0)
		recordedCount := uint64(0)
		m.Iterate(uint64(start), func(r RangeValue[int]) bool {
			if r.Offset < uint64(start) {
				t.Errorf("Offset %d < start %d", r.Offset, start)
			}
			if r.Offset < prevEnd {
				t.Errorf("Offset %d < prevEnd %d", r.Offset, prevEnd)
			}

			for trackID := r.Offset; trackID < r.End(); trackID++ {
				if ancestorOf[trackID] != r.Value {
					t.Errorf("ancestorOf[%d] %d != r.Value %d", trackID, ancestorOf[trackID], r.Value)
				}
			}

			prevEnd = r.Offset + r.Length
			recordedCount += r.Length
			return true
		})
		end := m.End()
		if uint64(start) < end && prevEnd != end {
			t.Errorf("Iterate end %d != End() %d", prevEnd, end)
		}

		actualRecorded := uint64(0)
		for trackID := start; trackID < maxTrackID; trackID++ {
			if ancestorOf[trackID] != 0 {
				actualRecorded++
			}
		}
		if recordedCount != actualRecorded {
			t.Errorf("recordedCount %d != actual %d", recordedCount, actualRecorded)
		}
	}
}

func TestBitmapRangeMap_Iterate(t *testing.T) {
	var m BitmapRangeMap[int]
	testIterate(t, &m)
}

func benchmarkGet(b *testing.B, m testRangeMap) {
	const maxTrackID = 1000000
	ancestorOf := make([]int, maxTrackID)

	const maxSpanLength = 1000
	const ancestors = 1000
	for ancestor := 1; ancestor < ancestors; ancestor++ {
		off := uint64(rand.Int63n(maxTrackID - maxSpanLength))
		length := uint64(rand.Int63n(maxSpanLength) + 1)
		m.Add(off, length, ancestor)
		for j := uint64(0); j < length; j++ {
			ancestorOf[off+j] = ancestor
		}
	}

	randTrackIDs := make([]uint64, b.N)
	for i := range randTrackIDs {
		randTrackIDs[i] = uint64(rand.Int63n(maxTrackID))
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.Get(randTrackIDs[i])
	}
}

func BenchmarkBitmapRangeMap_Get(b *testing.B) {
	var m BitmapRangeMap[int]
	benchmarkGet(b, &m)
}

func benchmarkAdd(b *testing.B, m testRangeMap) {
	const maxTrackID = 1000000
	const maxSpanLength = 512

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		off := uint64(rand.Int63n(maxTrackID - maxSpanLength))
		length := uint64(rand.Int63n(maxSpanLength) + 1)
		m.Add(off, length, i+1)
	}
}

func BenchmarkBitmapRangeMap_Add(b *testing.B) {
	var m BitmapRangeMap[int]
	benchmarkAdd(b, &m)
}
