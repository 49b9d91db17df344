package cart

// MaxItemCount is the largest count a single item may carry.
const MaxItemCount = 1_000_000

// Total is the number of units in the cart: the sum of item counts.
// A nil cart totals zero.
func Total(c *Cart) int {
	if c == nil {
		return 0
	}
	total := 0
	for _, it := range c.Items {
		total += it.Count
	}
	return total
}
