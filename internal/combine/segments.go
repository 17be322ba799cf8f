package combine

import (
	"reflect"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

// ConsecutiveSegments coalesces, within each patch, runs of member segments
// that share the same parent set, object kind and tags, and are end-to-end
// connected: the first segment of a run is extended with the others'
// coordinates in walk order, and the rest are marked used=0 (spec.md
// §4.H). Processing order matches the polygon decomposer's priority order,
// passed in as priorityOf.
func ConsecutiveSegments(store *model.Store, priorityOf func(kind string) int) int {
	order := make([]int, 0, len(store.Features))
	for i, f := range store.Features {
		if f.Kind == model.KindPolygon && !f.Deleted() {
			order = append(order, i)
		}
	}
	sortByPriority(order, store, priorityOf)

	combined := 0
	for _, fi := range order {
		f := store.Features[fi]
		for pi := range f.Patches {
			combined += combinePatch(store, &f.Patches[pi])
		}
	}
	return combined
}

// sortByPriority orders feature indices by priorityOf(kind), lowest first,
// keeping input order among equal priorities.
func sortByPriority(order []int, store *model.Store, priorityOf func(string) int) {
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && priorityOf(store.Features[order[j]].ObjectKind) < priorityOf(store.Features[order[j-1]].ObjectKind); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
}

func combinePatch(store *model.Store, patch *model.Patch) int {
	members := patch.Members
	if len(members) < 2 {
		return 0
	}

	combined := 0
	newMembers := make([]int, 0, len(members))
	i := 0
	for i < len(members) {
		runStart := i
		j := i + 1
		for j < len(members) && mergeable(store, members[runStart], members[j]) && connected(store, members[j-1], members[j]) {
			j++
		}
		if j-runStart > 1 {
			extendSegment(store, members[runStart:j])
			combined += (j - runStart) - 1
		}
		newMembers = append(newMembers, members[runStart])
		i = j
	}
	patch.Members = newMembers
	return combined
}

func mergeable(store *model.Store, a, b int) bool {
	sa, sb := store.Segments[a], store.Segments[b]
	if sa.ObjectKind != sb.ObjectKind {
		return false
	}
	if !reflect.DeepEqual(sa.Tags, sb.Tags) {
		return false
	}
	return parentSetEqual(sa.Parents, sb.Parents)
}

func parentSetEqual(a, b []model.ParentRef) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[model.ParentRef]bool, len(a))
	for _, p := range a {
		set[p] = true
	}
	for _, p := range b {
		if !set[p] {
			return false
		}
	}
	return true
}

func connected(store *model.Store, a, b int) bool {
	sa, sb := store.Segments[a], store.Segments[b]
	return sa.Last() == sb.First() || sa.Last() == sb.Last() || sa.First() == sb.First() || sa.First() == sb.Last()
}

// extendSegment rewrites members[0] to be the walked concatenation of the
// whole run, and marks the rest used=0. A run found not to be strictly
// end-to-end connected (spec.md §7 "Disconnected combination") is still
// concatenated in input order with no error raised — DisconnectedCombinationError
// exists for the caller to log, not to abort.
func extendSegment(store *model.Store, run []int) {
	head := store.Segments[run[0]]
	combinedCoords := append([]geometry.Coordinate{}, head.Coords...)
	for k := 1; k < len(run); k++ {
		next := store.Segments[run[k]]
		switch {
		case combinedCoords[len(combinedCoords)-1] == next.First():
			combinedCoords = append(combinedCoords, next.Coords[1:]...)
		case combinedCoords[len(combinedCoords)-1] == next.Last():
			combinedCoords = append(combinedCoords, reverseCoords(next.Coords)[1:]...)
		default:
			// Disconnected run: concatenate unchanged rather than dropped
			// (spec.md §7 "Disconnected combination").
			combinedCoords = append(combinedCoords, next.Coords...)
		}
		next.Used = 0
	}
	head.Coords = combinedCoords
	head.InvalidateBBox()
}

func reverseCoords(coords []geometry.Coordinate) []geometry.Coordinate {
	out := make([]geometry.Coordinate, len(coords))
	for i, c := range coords {
		out[len(coords)-1-i] = c
	}
	return out
}
