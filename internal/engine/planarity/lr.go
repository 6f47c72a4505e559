package planarity

import "sort"

// none marks an unset edge or height slot.
const none = -1

// interval is a range of return edges that must sit on the same side.
type interval struct {
	low, high int
}

func emptyInterval() interval {
	return interval{low: none, high: none}
}

func (i interval) empty() bool {
	return i.low == none && i.high == none
}

// conflictPair holds two intervals whose edges must sit on opposite sides.
// Pairs are shared by pointer: the stack-bottom bookkeeping compares identity.
type conflictPair struct {
	left, right interval
}

func (p *conflictPair) swap() {
	p.left, p.right = p.right, p.left
}

type arc struct {
	to, edge int
}

// lrTest runs the left-right planarity test over one edge set.
// Edge ids are positions in the endpoint slice it was built from; once the
// DFS orients an edge, src and dst hold its direction.
type lrTest struct {
	adj [][]arc
	out [][]int

	height     []int
	parentEdge []int

	src, dst     []int
	oriented     []bool
	lowpt        []int
	lowpt2       []int
	nestingDepth []int
	ref          []int
	lowptEdge    []int

	stack       []*conflictPair
	stackBottom []*conflictPair
}

func newLRTest(n int, endpoints [][2]int) *lrTest {
	m := len(endpoints)
	t := &lrTest{
		adj:          make([][]arc, n),
		out:          make([][]int, n),
		height:       filled(n, none),
		parentEdge:   filled(n, none),
		src:          filled(m, none),
		dst:          filled(m, none),
		oriented:     make([]bool, m),
		lowpt:        make([]int, m),
		lowpt2:       make([]int, m),
		nestingDepth: make([]int, m),
		ref:          filled(m, none),
		lowptEdge:    filled(m, none),
		stackBottom:  make([]*conflictPair, m),
	}
	for id, e := range endpoints {
		t.adj[e[0]] = append(t.adj[e[0]], arc{to: e[1], edge: id})
		t.adj[e[1]] = append(t.adj[e[1]], arc{to: e[0], edge: id})
	}
	return t
}

func filled(n, v int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// isPlanar reports whether the graph on n vertices with the given edges is planar.
func isPlanar(n int, endpoints [][2]int) bool {
	m := len(endpoints)
	if n > 2 && m > 3*n-6 {
		return false
	}
	return newLRTest(n, endpoints).run()
}

func (t *lrTest) run() bool {
	var roots []int
	for v := range t.adj {
		if t.height[v] == none {
			t.height[v] = 0
			roots = append(roots, v)
			t.orient(v)
		}
	}

	for v := range t.out {
		sort.SliceStable(t.out[v], func(a, b int) bool {
			return t.nestingDepth[t.out[v][a]] < t.nestingDepth[t.out[v][b]]
		})
	}

	for _, r := range roots {
		if !t.test(r) {
			return false
		}
	}
	return true
}

// orient is the first DFS: it orients edges, computes heights, low points and
// nesting depths.
func (t *lrTest) orient(v int) {
	e := t.parentEdge[v]
	for _, a := range t.adj[v] {
		vw, w := a.edge, a.to
		if t.oriented[vw] {
			continue
		}
		t.oriented[vw] = true
		t.src[vw], t.dst[vw] = v, w
		t.out[v] = append(t.out[v], vw)

		t.lowpt[vw] = t.height[v]
		t.lowpt2[vw] = t.height[v]
		if t.height[w] == none {
			t.parentEdge[w] = vw
			t.height[w] = t.height[v] + 1
			t.orient(w)
		} else {
			t.lowpt[vw] = t.height[w]
		}

		t.nestingDepth[vw] = 2 * t.lowpt[vw]
		if t.lowpt2[vw] < t.height[v] {
			t.nestingDepth[vw]++ // chordal
		}

		if e == none {
			continue
		}
		switch {
		case t.lowpt[vw] < t.lowpt[e]:
			t.lowpt2[e] = min(t.lowpt[e], t.lowpt2[vw])
			t.lowpt[e] = t.lowpt[vw]
		case t.lowpt[vw] > t.lowpt[e]:
			t.lowpt2[e] = min(t.lowpt2[e], t.lowpt[vw])
		default:
			t.lowpt2[e] = min(t.lowpt2[e], t.lowpt2[vw])
		}
	}
}

// test is the second DFS: it visits out-edges by nesting depth and merges
// the constraints of each subtree into the conflict-pair stack.
func (t *lrTest) test(v int) bool {
	e := t.parentEdge[v]
	for i, ei := range t.out[v] {
		w := t.dst[ei]
		t.stackBottom[ei] = t.top()
		if ei == t.parentEdge[w] {
			if !t.test(w) {
				return false
			}
		} else {
			t.lowptEdge[ei] = ei
			t.push(&conflictPair{left: emptyInterval(), right: interval{low: ei, high: ei}})
		}

		if t.lowpt[ei] < t.height[v] {
			if i == 0 {
				t.lowptEdge[e] = t.lowptEdge[ei]
			} else if !t.addConstraints(ei, e) {
				return false
			}
		}
	}

	if e != none {
		t.removeBackEdges(e)
	}
	return true
}

func (t *lrTest) addConstraints(ei, e int) bool {
	p := &conflictPair{left: emptyInterval(), right: emptyInterval()}

	// merge return edges of ei into p.right
	for {
		q := t.pop()
		if q == nil {
			break
		}
		if !q.left.empty() {
			q.swap()
		}
		if !q.left.empty() {
			return false
		}
		if t.lowpt[q.right.low] > t.lowpt[e] {
			if p.right.empty() {
				p.right = q.right
			} else {
				t.setRef(p.right.low, q.right.high)
			}
			p.right.low = q.right.low
		} else {
			t.setRef(q.right.low, t.lowptEdge[e])
		}
		if t.top() == t.stackBottom[ei] {
			break
		}
	}

	// merge conflicting return edges of earlier siblings into p.left
	for {
		top := t.top()
		if top == nil || !(t.conflicting(top.left, ei) || t.conflicting(top.right, ei)) {
			break
		}
		q := t.pop()
		if t.conflicting(q.right, ei) {
			q.swap()
		}
		if t.conflicting(q.right, ei) {
			return false
		}
		t.setRef(p.right.low, q.right.high)
		if q.right.low != none {
			p.right.low = q.right.low
		}
		if p.left.empty() {
			p.left = q.left
		} else {
			t.setRef(p.left.low, q.left.high)
		}
		p.left.low = q.left.low
	}

	if !p.left.empty() || !p.right.empty() {
		t.push(p)
	}
	return true
}

// removeBackEdges drops the return edges ending at the parent of e.
func (t *lrTest) removeBackEdges(e int) {
	u := t.src[e]
	for len(t.stack) > 0 && t.lowest(t.top()) == t.height[u] {
		t.pop()
	}

	if p := t.pop(); p != nil {
		for p.left.high != none && t.dst[p.left.high] == u {
			p.left.high = t.ref[p.left.high]
		}
		if p.left.high == none && p.left.low != none {
			t.setRef(p.left.low, p.right.low)
			p.left.low = none
		}
		for p.right.high != none && t.dst[p.right.high] == u {
			p.right.high = t.ref[p.right.high]
		}
		if p.right.high == none && p.right.low != none {
			t.setRef(p.right.low, p.left.low)
			p.right.low = none
		}
		t.push(p)
	}

	if t.lowpt[e] < t.height[u] {
		top := t.top()
		if top == nil {
			return
		}
		hl, hr := top.left.high, top.right.high
		if hl != none && (hr == none || t.lowpt[hl] > t.lowpt[hr]) {
			t.ref[e] = hl
		} else {
			t.ref[e] = hr
		}
	}
}

func (t *lrTest) conflicting(i interval, b int) bool {
	return !i.empty() && t.lowpt[i.high] > t.lowpt[b]
}

func (t *lrTest) lowest(p *conflictPair) int {
	switch {
	case p.left.empty() && p.right.empty():
		return none
	case p.left.empty():
		return t.lowpt[p.right.low]
	case p.right.empty():
		return t.lowpt[p.left.low]
	default:
		return min(t.lowpt[p.left.low], t.lowpt[p.right.low])
	}
}

func (t *lrTest) setRef(e, target int) {
	if e != none {
		t.ref[e] = target
	}
}

func (t *lrTest) top() *conflictPair {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

func (t *lrTest) push(p *conflictPair) {
	t.stack = append(t.stack, p)
}

func (t *lrTest) pop() *conflictPair {
	if len(t.stack) == 0 {
		return nil
	}
	p := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return p
}
