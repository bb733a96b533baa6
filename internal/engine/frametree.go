package engine

// FrameTree holds the timeline phases whose orbit frames are centered on one
// star or body. Trees nest: a body's tree hangs below the tree holding the
// body's own phases.
type FrameTree struct {
	starParent *Star
	bodyParent *Body
	children   []*TimelinePhase

	defaultFrame ReferenceFrame

	boundingSphereRadius          float64
	maxChildRadius                float64
	containsSecondaryIlluminators bool
	childClassMask                Classification
	changed                       bool
}

// NewStarFrameTree returns the root tree of a star's system.
func NewStarFrameTree(star *Star) *FrameTree {
	return &FrameTree{
		starParent:   star,
		defaultFrame: NewJ2000EclipticFrame(SelectStar(star)),
		changed:      true,
	}
}

// NewBodyFrameTree returns the tree of objects orbiting body.
func NewBodyFrameTree(body *Body) *FrameTree {
	return &FrameTree{
		bodyParent:   body,
		defaultFrame: NewJ2000EclipticFrame(SelectBody(body)),
		changed:      true,
	}
}

// Star returns the star of a root tree, or nil.
func (ft *FrameTree) Star() *Star { return ft.starParent }

// Body returns the body a tree belongs to, or nil for a root tree.
func (ft *FrameTree) Body() *Body { return ft.bodyParent }

// IsRoot reports whether the tree belongs to a star.
func (ft *FrameTree) IsRoot() bool { return ft.bodyParent == nil }

// DefaultFrame is an ecliptic frame centered on the tree's parent.
func (ft *FrameTree) DefaultFrame() ReferenceFrame { return ft.defaultFrame }

// AddChild adds p to the tree.
func (ft *FrameTree) AddChild(p *TimelinePhase) {
	ft.children = append(ft.children, p)
	ft.MarkChanged()
}

// RemoveChild removes p if present.
func (ft *FrameTree) RemoveChild(p *TimelinePhase) {
	for i, c := range ft.children {
		if c == p {
			ft.children = append(ft.children[:i], ft.children[i+1:]...)
			ft.MarkChanged()
			return
		}
	}
}

func (ft *FrameTree) Child(i int) *TimelinePhase { return ft.children[i] }

func (ft *FrameTree) ChildCount() int { return len(ft.children) }

// MarkChanged flags the tree and its ancestors for recomputation.
func (ft *FrameTree) MarkChanged() {
	if ft.changed {
		return
	}
	ft.changed = true
	if !ft.IsRoot() {
		ft.bodyParent.MarkChanged()
	}
}

// MarkUpdated clears the change flag.
func (ft *FrameTree) MarkUpdated() { ft.changed = false }

func (ft *FrameTree) UpdateRequired() bool { return ft.changed }

// RecomputeBoundingSphere refreshes the tree's aggregate radii, flags and
// class mask from its children and their subtrees.
func (ft *FrameTree) RecomputeBoundingSphere() {
	if !ft.changed {
		return
	}
	// Clear first so a tree that contains itself stops recursing.
	ft.changed = false

	ft.boundingSphereRadius = 0
	ft.maxChildRadius = 0
	ft.containsSecondaryIlluminators = false
	ft.childClassMask = 0

	for _, phase := range ft.children {
		body := phase.Body()
		r := phase.Orbit().BoundingRadius()
		if body != nil {
			r += body.CullingRadius()
			ft.maxChildRadius = max(ft.maxChildRadius, body.Radius())
			ft.containsSecondaryIlluminators = ft.containsSecondaryIlluminators || body.IsSecondaryIlluminator()
			ft.childClassMask |= body.Classification()

			if sub := body.FrameTree(); sub != nil && sub != ft {
				sub.RecomputeBoundingSphere()
				r += sub.BoundingSphereRadius()
				ft.maxChildRadius = max(ft.maxChildRadius, sub.MaxChildRadius())
				ft.containsSecondaryIlluminators = ft.containsSecondaryIlluminators || sub.ContainsSecondaryIlluminators()
				ft.childClassMask |= sub.ChildClassMask()
			}
		}
		ft.boundingSphereRadius = max(ft.boundingSphereRadius, r)
	}
}

// BoundingSphereRadius is the radius in km of a sphere around the parent
// enclosing every object in the tree.
func (ft *FrameTree) BoundingSphereRadius() float64 { return ft.boundingSphereRadius }

// MaxChildRadius is the radius of the largest body in the tree.
func (ft *FrameTree) MaxChildRadius() float64 { return ft.maxChildRadius }

func (ft *FrameTree) ContainsSecondaryIlluminators() bool { return ft.containsSecondaryIlluminators }

// ChildClassMask is the union of the classifications in the tree.
func (ft *FrameTree) ChildClassMask() Classification { return ft.childClassMask }
