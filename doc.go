// Package ledger derives consistent per-account state from a mutable set of
// raw financial operations.
//
// Operations (trades, transfers, dividends, corporate actions, cash
// movements) live in a Journal, ordered by a stable (timestamp, sequence)
// key. A Rebuilder replays them from a frontier checkpoint forward and
// produces derived state: running cash balances, open FIFO cost-basis lots,
// and realized deals. Derived state is a value, committed only at pass
// boundaries; a failed pass leaves everything before the failing record
// valid and the frontier parked just before it.
package ledger
