package engine

// NextTurn rotates to the next seat in order, skipping seats for which done
// reports true. If every other seat is done the current seat is kept.
func NextTurn(order []string, current int, done func(playerID string) bool) int {
	n := len(order)
	if n == 0 {
		return 0
	}
	for step := 1; step <= n; step++ {
		next := (current + step) % n
		if done == nil || !done(order[next]) {
			return next
		}
	}
	return current
}
