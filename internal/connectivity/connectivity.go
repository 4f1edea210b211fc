// Package connectivity repairs a raw cluster assignment into a canonical
// label map in which every label is exactly one 4-connected component of
// adequate size.
//
// Discovery runs as a single deterministic raster-scan flood fill rather
// than a lock-protected parallel one: raster order already yields segments
// sorted by their lowest pixel index, which is the ordering the merge
// resolution depends on, and it keeps results identical across worker
// counts. Only the final remap is data-parallel.
package connectivity

import (
	"github.com/mkarpov/superpix/internal/parallel"
)

// 4-neighborhood, in the order the merge scan probes it.
var (
	dx4 = [4]int{-1, 0, 1, 0}
	dy4 = [4]int{0, -1, 0, 1}
)

// segment is one connected component of the raw label map. rep is the
// lowest pixel index in the component, the deterministic tie-break key
// for merge decisions.
type segment struct {
	rep        int
	repX, repY int
	count      int
}

// Enforce rewrites labels in place so that every final label covers one
// 4-connected region, merging regions of at most area/k/4 pixels into a
// resolved neighbor. It returns the final label count; final labels are
// the contiguous range [0, count).
func Enforce(labels []int, width, height, k, workers int) int {
	size := width * height
	threshold := size / k / 4

	// Phase 1: raster-scan flood fill. Every pixel receives the discovery
	// id of its segment; the scan seed of each segment is its lowest
	// pixel index.
	ids := make([]int, size)
	for i := range ids {
		ids[i] = -1
	}

	queueX := make([]int, size)
	queueY := make([]int, size)
	var segs []segment

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if ids[idx] >= 0 {
				continue
			}

			id := len(segs)
			raw := labels[idx]
			ids[idx] = id
			queueX[0], queueY[0] = x, y

			count := 1
			for c := 0; c < count; c++ {
				for n := 0; n < 4; n++ {
					nx := queueX[c] + dx4[n]
					ny := queueY[c] + dy4[n]
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					ni := ny*width + nx
					if ids[ni] < 0 && labels[ni] == raw {
						ids[ni] = id
						queueX[count], queueY[count] = nx, ny
						count++
					}
				}
			}

			segs = append(segs, segment{rep: idx, repX: x, repY: y, count: count})
		}
	}

	// Phase 2: serial resolution. Segments above the size threshold take
	// the next canonical label in ascending representative order. The
	// rest wait in a retry queue until a neighbor with a strictly smaller
	// effective representative index has been resolved, then adopt that
	// neighbor's label. The segment holding pixel 0 always resolves to
	// label 0 regardless of size.
	canon := make([]int, len(segs))
	effRep := make([]int, len(segs))
	for i := range canon {
		canon[i] = -1
	}

	next := 0
	var retry []int
	for id, s := range segs {
		if s.count > threshold {
			canon[id] = next
			effRep[id] = s.rep
			next++
		} else {
			retry = append(retry, id)
		}
	}

	for len(retry) > 0 {
		id := retry[0]
		retry = retry[1:]
		s := segs[id]

		if s.rep == 0 {
			canon[id] = 0
			effRep[id] = 0
			continue
		}

		adopt := -1
		for n := 0; n < 4; n++ {
			nx := s.repX + dx4[n]
			ny := s.repY + dy4[n]
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			nid := ids[ny*width+nx]
			if nid == id || canon[nid] < 0 {
				continue
			}
			if effRep[nid] < s.rep {
				adopt = nid
			}
		}
		if adopt < 0 {
			// Merge target still pending; revisit after it resolves.
			retry = append(retry, id)
			continue
		}

		canon[id] = canon[adopt]
		effRep[id] = effRep[adopt]
	}

	// If no segment cleared the threshold, everything collapsed into the
	// pixel-0 segment and label 0 is still in use.
	if next == 0 && size > 0 {
		next = 1
	}

	// Phase 3: parallel remap into the caller's label buffer.
	parallel.Rows(height, workers, func(sy, ey int) {
		for i := sy * width; i < ey*width; i++ {
			labels[i] = canon[ids[i]]
		}
	})

	return next
}
