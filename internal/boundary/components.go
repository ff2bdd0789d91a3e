package boundary

import "container/list"

// componentStats summarizes a connected component of the mask.
type componentStats struct {
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

// connectedComponents labels 8-connected regions of the mask. Labels start
// at 1; zero means background. Components smaller than minPixels are
// discarded (their label stays in the label map but is not reported).
func connectedComponents(mask []bool, w, h, minPixels int) ([]componentStats, []int, []int) {
	labels := make([]int, w*h)
	var stats []componentStats
	var kept []int
	label := 1

	dirs := [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	for y := range h {
		for x := range w {
			start := y*w + x
			if !mask[start] || labels[start] != 0 {
				continue
			}
			st := componentStats{minX: x, minY: y, maxX: x, maxY: y}
			q := list.New()
			q.PushBack(start)
			labels[start] = label
			for q.Len() > 0 {
				e := q.Front()
				q.Remove(e)
				ci, ok := e.Value.(int)
				if !ok {
					continue
				}
				cx, cy := ci%w, ci/w
				st.count++
				st.minX = min(st.minX, cx)
				st.minY = min(st.minY, cy)
				st.maxX = max(st.maxX, cx)
				st.maxY = max(st.maxY, cy)
				for _, d := range dirs {
					nx, ny := cx+d[0], cy+d[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					ni := ny*w + nx
					if mask[ni] && labels[ni] == 0 {
						labels[ni] = label
						q.PushBack(ni)
					}
				}
			}
			if st.count >= minPixels {
				stats = append(stats, st)
				kept = append(kept, label)
			}
			label++
		}
	}
	return stats, kept, labels
}
