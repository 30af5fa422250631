// Package node defines the mind-map node entity and the structural
// invariants every tree must satisfy.
//
// A tree is a plain pointer structure: each Node owns its Children slice,
// and Parent is a derived back-reference. Parent links are never maintained
// incrementally; after any structural change the owner calls
// RecomputeParentLinks, which rebuilds every link in one traversal.
//
// # Invariants
//
//  1. Exactly one node has Root set and it has no parent.
//  2. After RecomputeParentLinks, n.Parent is the node whose Children
//     contains n.
//  3. IDs are unique across the tree.
//  4. No node is its own ancestor.
//  5. Children slices contain no nil entries.
//
// Validate checks all five and reports the first violation as an
// *InvariantError.
package node
