package node

// SplitSides partitions the root's children into left and right branches
// for a tree laid out on both sides.
//
// Children with an assigned Side keep it. Unassigned children go to the
// side that has fewer branches so far, with ties going left. The result
// depends only on the children's order and Side values.
func SplitSides(root *Node) (left, right []*Node) {
	if root == nil {
		return nil, nil
	}
	for _, c := range root.Children {
		switch c.Side {
		case SideLeft:
			left = append(left, c)
		case SideRight:
			right = append(right, c)
		default:
			if len(left) <= len(right) {
				left = append(left, c)
			} else {
				right = append(right, c)
			}
		}
	}
	return left, right
}

// NextSide returns the side a new top-level branch should take so that
// both halves stay balanced.
func NextSide(root *Node) Side {
	left, right := SplitSides(root)
	if len(left) <= len(right) {
		return SideLeft
	}
	return SideRight
}
