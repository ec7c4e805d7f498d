package odata

import (
	"maps"
	"slices"
	"strings"
)

// Resolution is the result of resolving a path. Target is nil when the
// path does not resolve.
type Resolution struct {
	Target       Node
	IsCollection bool
}

// ResolvePathTarget resolves a '/'-separated path. A leading '/' makes the
// path absolute, starting at the entity container; otherwise it is resolved
// relative to base. IsCollection becomes true once an entity set or a
// collection-valued navigation is traversed; the container itself is never a
// collection. A final segment of the form @Term#Qualifier resolves to an
// annotation.
func ResolvePathTarget(md *Metadata, path string, base Node) Resolution {
	if md == nil {
		return Resolution{}
	}
	var cur Node
	collection := false
	rest := path
	if strings.HasPrefix(path, "/") {
		if md.Container == nil {
			return Resolution{}
		}
		cur = md.Container
		rest = path[1:]
	} else {
		if base == nil {
			return Resolution{}
		}
		cur = base
		collection = isCollectionNode(base)
	}

	rest = strings.TrimSuffix(rest, "/")
	if rest == "" {
		return Resolution{Target: cur, IsCollection: collection}
	}
	segments := strings.Split(rest, "/")
	for _, seg := range segments {
		// Properties and annotations end a path; step rejects anything
		// after them other than an annotation of the property.
		next, many := md.step(cur, seg)
		if next == nil {
			return Resolution{}
		}
		cur = next
		collection = collection || many
	}
	return Resolution{Target: cur, IsCollection: collection}
}

func isCollectionNode(n Node) bool {
	switch n := n.(type) {
	case *EntitySet:
		return true
	case *NavigationProperty:
		return n.IsCollection
	}
	return false
}

// step resolves one segment below cur and reports whether the segment is
// collection-valued.
func (md *Metadata) step(cur Node, seg string) (Node, bool) {
	if seg == "" {
		return nil, false
	}
	if strings.HasPrefix(seg, "@") {
		return md.annotation(cur, seg[1:]), false
	}
	switch cur := cur.(type) {
	case *EntityContainer:
		n := cur.lookup(seg)
		if n == nil {
			return nil, false
		}
		return n, isCollectionNode(n)
	case *Property, *Annotation:
		return nil, false
	}
	et := md.EntityTypeOf(cur)
	if et == nil {
		return nil, false
	}
	if nav := et.navigation(seg); nav != nil {
		return nav, nav.IsCollection
	}
	if p := et.property(seg); p != nil {
		return p, false
	}
	return nil, false
}

func (md *Metadata) annotation(cur Node, ref string) Node {
	term, qualifier, _ := strings.Cut(ref, "#")
	_, full := md.splitTerm(term)
	var target string
	switch cur := cur.(type) {
	case *Property:
		target = cur.Owner + "/" + cur.name
	case *EntityContainer:
		target = cur.FQN
	case *Annotation:
		return nil
	default:
		et := md.EntityTypeOf(cur)
		if et == nil {
			return nil
		}
		target = et.FQN
	}
	for _, a := range md.AnnotationsOf(target) {
		if a.Term == full && a.Qualifier == qualifier {
			return a
		}
	}
	return nil
}

// Options constrain the targets enumerated by GetNextPossiblePathTargets.
type Options struct {
	// AllowedTargets lists the node kinds that may be returned. Empty
	// allows every kind.
	AllowedTargets []Kind
	// AllowedTerms, when set, requires the entity type reached by a
	// candidate to carry at least one of these annotation terms. Ignored
	// for property paths.
	AllowedTerms []string
	// IsPropertyPath adds the structural properties of entity types.
	IsPropertyPath bool
	// IsCollection, when set, keeps only candidates of that cardinality.
	IsCollection *bool
}

func (o Options) allows(k Kind) bool {
	return len(o.AllowedTargets) == 0 || slices.Contains(o.AllowedTargets, k)
}

func (o Options) cardinalityOK(collection bool) bool {
	return o.IsCollection == nil || *o.IsCollection == collection
}

// GetNextPossiblePathTargets enumerates the nodes that may follow node in
// a path. Navigation to the node's own entity type and to entity types in
// visited (keyed by FQN) is excluded. The entity container only starts
// absolute paths, so it yields nothing when isRelative is set.
func GetNextPossiblePathTargets(md *Metadata, node Node, isRelative bool, opts Options, visited map[string]bool) []Node {
	if md == nil || node == nil {
		return nil
	}
	var out []Node
	switch n := node.(type) {
	case *EntityContainer:
		if isRelative {
			return nil
		}
		for _, s := range n.EntitySets {
			if opts.allows(KindEntitySet) && md.acceptEntity(md.EntityTypes[s.EntityType], true, opts, visited) {
				out = append(out, s)
			}
		}
		for _, s := range n.Singletons {
			if opts.allows(KindSingleton) && md.acceptEntity(md.EntityTypes[s.EntityType], false, opts, visited) {
				out = append(out, s)
			}
		}
		return out
	case *Property, *Annotation:
		return nil
	}

	et := md.EntityTypeOf(node)
	if et == nil {
		return nil
	}
	if opts.IsPropertyPath && opts.allows(KindProperty) {
		for _, p := range et.Properties {
			out = append(out, p)
		}
	}
	if !opts.allows(KindNavigationProperty) {
		return out
	}
	for _, nav := range et.NavigationProperties {
		target := md.EntityTypes[nav.TargetType]
		if target == et {
			continue
		}
		if md.acceptEntity(target, nav.IsCollection, opts, visited) {
			out = append(out, nav)
		}
	}
	return out
}

func (md *Metadata) acceptEntity(t *EntityType, collection bool, opts Options, visited map[string]bool) bool {
	if t == nil || visited[t.FQN] || !opts.cardinalityOK(collection) {
		return false
	}
	return opts.IsPropertyPath || md.HasAnnotation(t, opts.AllowedTerms)
}

// Path is a completion candidate produced by CollectPaths.
type Path struct {
	Text         string
	Target       Node
	IsCollection bool
}

// CollectPaths enumerates every path of at most maxSegments segments that
// starts at start and ends in a node accepted by opts. Paths from the
// entity container are absolute. When opts allows KindAnnotation, the
// paths end in an annotation segment (@Term#Qualifier) of an allowed term.
// Intermediate segments are navigation hops that never revisit an entity
// type.
func CollectPaths(md *Metadata, start Node, opts Options, maxSegments int) []Path {
	if md == nil || start == nil || maxSegments <= 0 {
		return nil
	}
	c := &collector{md: md, opts: opts, max: maxSegments, seen: make(map[string]bool)}
	visited := make(map[string]bool)
	if et := md.EntityTypeOf(start); et != nil {
		visited[et.FQN] = true
	}
	prefix := ""
	relative := true
	if start.Kind() == KindEntityContainer {
		prefix = "/"
		relative = false
	}
	c.walk(start, prefix, relative, 0, isCollectionNode(start), visited)
	return c.out
}

type collector struct {
	md   *Metadata
	opts Options
	max  int
	seen map[string]bool
	out  []Path
}

func (c *collector) emit(text string, target Node, collection bool) {
	if c.seen[text] {
		return
	}
	c.seen[text] = true
	c.out = append(c.out, Path{Text: text, Target: target, IsCollection: collection})
}

var hopOptions = Options{AllowedTargets: []Kind{KindEntitySet, KindSingleton, KindNavigationProperty}}

func (c *collector) walk(node Node, prefix string, relative bool, depth int, collection bool, visited map[string]bool) {
	if depth >= c.max {
		return
	}

	if c.opts.allows(KindAnnotation) && len(c.opts.AllowedTargets) > 0 {
		if et := c.md.EntityTypeOf(node); et != nil {
			for _, a := range c.md.AnnotationsOf(et.FQN) {
				if len(c.opts.AllowedTerms) == 0 || slices.Contains(c.opts.AllowedTerms, a.Term) {
					c.emit(prefix+a.Name(), a, collection)
				}
			}
		}
	}

	terminalOpts := c.opts
	terminalOpts.IsCollection = nil
	for _, t := range GetNextPossiblePathTargets(c.md, node, relative, terminalOpts, visited) {
		many := collection || isCollectionNode(t)
		if !c.opts.cardinalityOK(many) {
			continue
		}
		c.emit(prefix+t.Name(), t, many)
	}

	for _, hop := range GetNextPossiblePathTargets(c.md, node, relative, hopOptions, visited) {
		et := c.md.EntityTypeOf(hop)
		if et == nil {
			continue
		}
		next := maps.Clone(visited)
		next[et.FQN] = true
		c.walk(hop, prefix+hop.Name()+"/", true, depth+1, collection || isCollectionNode(hop), next)
	}
}
