package cart

// Group is the items of one machine, in cart order.
type Group struct {
	MachineName string
	Items       []Item
}

// GroupByMachine partitions items into per-machine groups. Groups appear in
// first-occurrence order of the machine name in the cart, and every item
// lands in exactly one group. The cart page, the checkout summary, and the
// invoice all render from this one function so their grouping can never
// disagree.
func GroupByMachine(items []Item) []Group {
	var groups []Group
	index := make(map[string]int, len(items))

	for _, it := range items {
		i, ok := index[it.MachineName]
		if !ok {
			i = len(groups)
			index[it.MachineName] = i
			groups = append(groups, Group{MachineName: it.MachineName})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}
