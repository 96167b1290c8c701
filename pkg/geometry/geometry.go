// Package geometry implements the pure, side-effect-free visible-range and
// offset math that drives the virtualized list. Every function here takes
// its inputs as arguments and returns a value; none hold state or mutate
// their arguments. Sizes are expressed in terminal cells (rows for a
// vertical list, columns for a horizontal one) rather than pixels.
package geometry

import "math"

// Range is a closed interval of item indices [Start, End]. An empty range
// is represented as {Start: 0, End: -1}.
type Range struct {
	Start int
	End   int
}

// Empty reports whether r contains no indices.
func (r Range) Empty() bool {
	return r.End < r.Start
}

// Len returns the number of indices covered by r, or 0 if empty.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start + 1
}

// Alignment controls where a target index is positioned within the
// container once scrolled to.
type Alignment int

const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
)

// sizeAt returns the measured size of index i, falling back to the
// estimate when unmeasured.
func sizeAt(i int, measured map[int]int, estimate int) int {
	if s, ok := measured[i]; ok {
		return s
	}
	return estimate
}

// VisibleRange computes the unbuffered-then-overscanned index range visible
// at scrollPosition, per spec §4.1.
//
// totalItems == 0 yields an empty range. containerSize == 0 yields a
// single-item range anchored at the scroll-implied start index.
func VisibleRange(scrollPosition, containerSize, estimatedItemSize, totalItems, overscan int, measured map[int]int) Range {
	if totalItems <= 0 {
		return Range{Start: 0, End: -1}
	}
	if estimatedItemSize <= 0 {
		estimatedItemSize = 1
	}

	start := indexAtPosition(scrollPosition, estimatedItemSize, measured)
	if start < 0 {
		start = 0
	}
	if start > totalItems-1 {
		start = totalItems - 1
	}

	var count int
	if containerSize <= 0 {
		count = 1
	} else {
		count = ceilDiv(containerSize, estimatedItemSize)
	}

	unbufferedEnd := start + count - 1

	bufferedStart := start - overscan
	bufferedEnd := unbufferedEnd + overscan
	if bufferedStart < 0 {
		bufferedStart = 0
	}
	if bufferedEnd > totalItems-1 {
		bufferedEnd = totalItems - 1
	}
	return Range{Start: bufferedStart, End: bufferedEnd}
}

// indexAtPosition walks measured sizes accumulating offsets until position
// <= scrollPosition < position+size; beyond the last measured index it
// estimates via floor(scrollPosition / estimatedItemSize).
func indexAtPosition(scrollPosition, estimatedItemSize int, measured map[int]int) int {
	if len(measured) == 0 {
		return scrollPosition / estimatedItemSize
	}

	maxMeasured := -1
	for i := range measured {
		if i > maxMeasured {
			maxMeasured = i
		}
	}

	pos := 0
	for i := 0; i <= maxMeasured; i++ {
		size := sizeAt(i, measured, estimatedItemSize)
		if pos <= scrollPosition && scrollPosition < pos+size {
			return i
		}
		pos += size
	}
	// Beyond the last measured index: estimate from the remaining distance.
	remaining := scrollPosition - pos
	if remaining < 0 {
		remaining = 0
	}
	return maxMeasured + 1 + remaining/estimatedItemSize
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return int(math.Ceil(float64(a) / float64(b)))
}

// TotalVirtualSize sums measured sizes where known and the estimate
// elsewhere, for every index in [0, totalItems).
func TotalVirtualSize(totalItems, estimatedItemSize int, measured map[int]int) int {
	if totalItems <= 0 {
		return 0
	}
	total := 0
	for i := 0; i < totalItems; i++ {
		total += sizeAt(i, measured, estimatedItemSize)
	}
	return total
}

// ContainerPosition returns the accumulated offset of the item at index
// start, used to translate the items container.
func ContainerPosition(start int, measured map[int]int, estimatedItemSize int) int {
	if start <= 0 {
		return 0
	}
	pos := 0
	for i := 0; i < start; i++ {
		pos += sizeAt(i, measured, estimatedItemSize)
	}
	return pos
}

// ScrollPositionForIndex computes the scroll position that aligns index
// within the container per alignment, clamped to 0 at the low end.
//
// The high end is intentionally left unclamped to maxScroll: aligning the
// very last index to AlignStart must be able to place that index at the
// top of the container even though doing so scrolls past
// totalVirtualSize-containerSize (spec §8 scenario S1's worked example:
// scrollToIndex(999_999, "start") yields scrollPosition=49_999_950, which
// exceeds max(0, totalVirtualSize-containerSize)=49_999_500). Callers that
// need the hard viewport clamp (invariant 2) apply it separately when
// actually moving the scroll position.
func ScrollPositionForIndex(index int, alignment Alignment, containerSize, estimatedItemSize int, measured map[int]int, totalItems int) int {
	offset := ContainerPosition(index, measured, estimatedItemSize)
	itemSize := sizeAt(index, measured, estimatedItemSize)

	var target int
	switch alignment {
	case AlignCenter:
		target = offset - (containerSize-itemSize)/2
	case AlignEnd:
		target = offset - containerSize + itemSize
	default: // AlignStart
		target = offset
	}

	if target < 0 {
		target = 0
	}
	return target
}

// ScrollbarMetrics computes the custom scrollbar thumb size and position.
const scrollbarThumbMin = 1

func ScrollbarMetrics(scrollPosition, totalVirtualSize, containerSize, trackSize int) (thumbSize, thumbPosition int) {
	if trackSize <= 0 {
		return 0, 0
	}
	if totalVirtualSize <= containerSize || totalVirtualSize <= 0 {
		return trackSize, 0
	}

	thumbSize = int(float64(containerSize) / float64(totalVirtualSize) * float64(trackSize))
	if thumbSize < scrollbarThumbMin {
		thumbSize = scrollbarThumbMin
	}
	if thumbSize > trackSize {
		thumbSize = trackSize
	}

	maxScroll := totalVirtualSize - containerSize
	maxThumbPos := trackSize - thumbSize
	if maxScroll <= 0 {
		thumbPosition = 0
	} else {
		thumbPosition = int(float64(scrollPosition) / float64(maxScroll) * float64(maxThumbPos))
	}
	if thumbPosition < 0 {
		thumbPosition = 0
	}
	if thumbPosition > maxThumbPos {
		thumbPosition = maxThumbPos
	}
	return thumbSize, thumbPosition
}

// MissingRanges returns the contiguous runs of rangeIds covering
// visibleRange that are absent from loaded, expressed as item-index Ranges
// (not rangeId runs) for direct use by the collection coordinator.
func MissingRanges(visible Range, loaded map[int]bool, rangeSize int) []Range {
	if visible.Empty() || rangeSize <= 0 {
		return nil
	}
	firstRange := visible.Start / rangeSize
	lastRange := visible.End / rangeSize

	var out []Range
	var runStart = -1
	for rid := firstRange; rid <= lastRange; rid++ {
		if loaded[rid] {
			if runStart != -1 {
				out = append(out, rangeToItemIndices(runStart, rid-1, rangeSize))
				runStart = -1
			}
			continue
		}
		if runStart == -1 {
			runStart = rid
		}
	}
	if runStart != -1 {
		out = append(out, rangeToItemIndices(runStart, lastRange, rangeSize))
	}
	return out
}

func rangeToItemIndices(firstRangeID, lastRangeID, rangeSize int) Range {
	return Range{Start: firstRangeID * rangeSize, End: (lastRangeID+1)*rangeSize - 1}
}

// Direction of scroll travel, used to bias buffer ranges.
type Direction int

const (
	DirectionNeutral Direction = iota
	DirectionForward
	DirectionBackward
)

// BufferRanges returns the rangeIds to prefetch around visible, symmetric
// when direction is neutral and biased in the scroll direction otherwise.
func BufferRanges(visible Range, loaded map[int]bool, rangeSize, prefetchCount int, direction Direction) []int {
	if visible.Empty() || rangeSize <= 0 || prefetchCount <= 0 {
		return nil
	}
	firstRange := visible.Start / rangeSize
	lastRange := visible.End / rangeSize

	before, after := prefetchCount, prefetchCount
	switch direction {
	case DirectionForward:
		before, after = 0, prefetchCount*2
	case DirectionBackward:
		before, after = prefetchCount*2, 0
	}

	var out []int
	for rid := firstRange - before; rid < firstRange; rid++ {
		if rid >= 0 && !loaded[rid] {
			out = append(out, rid)
		}
	}
	for rid := lastRange + 1; rid <= lastRange+after; rid++ {
		if !loaded[rid] {
			out = append(out, rid)
		}
	}
	return out
}

// ApplyBoundaryResistance scales overscroll outside [0, max]: the excess
// beyond the boundary is multiplied by resistance, so resistance=0 holds
// the result at the boundary and resistance=1 passes the full excess
// through.
func ApplyBoundaryResistance(requested, max int, resistance float64) int {
	if requested < 0 {
		excess := float64(-requested)
		return -int(excess * resistance)
	}
	if requested > max {
		excess := float64(requested - max)
		return max + int(excess*resistance)
	}
	return requested
}
