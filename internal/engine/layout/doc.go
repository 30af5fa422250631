// Package layout computes box positions for a mind-map tree.
//
// Layout runs in two passes. A post-order pass measures every visible node
// and sums subtree extents; a pre-order pass places boxes, starting from
// the root whose box has its left edge at X=0 and its centre at Y=0.
//
// Coordinates are integer cells with Y growing downwards. Collapsed nodes
// contribute only their own box.
//
// # Sizes
//
// For an expanded node with children c1..cn:
//
//	SubtreeH = sum(ci.SubtreeH) + (n-1)*VGap
//	SubtreeW = W + HGap + max(ci.SubtreeW)
//
// Leaves and collapsed nodes have SubtreeH = H and SubtreeW = W.
//
// # Direction
//
// Right places every branch to the right of the root, Left to the left.
// Both splits the root's children with Partition and centres each half on
// the root independently.
package layout
