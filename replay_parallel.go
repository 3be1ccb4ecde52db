package ledger

import (
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// AccountGroups partitions the journal's accounts into replay groups. Two
// accounts land in the same group when a transfer links them, directly or
// through a chain: such accounts must replay on the same worker to keep both
// legs of every transfer in one consistent ledger. All other accounts are
// independent. Groups come back sorted, accounts sorted within each group.
func (j *Journal) AccountGroups() [][]string {
	parent := make(map[string]string)
	var find func(string) string
	find = func(id string) string {
		p, ok := parent[id]
		if !ok {
			parent[id] = id
			return id
		}
		if p == id {
			return id
		}
		root := find(p)
		parent[id] = root
		return root
	}
	union := func(a, b string) {
		parent[find(a)] = find(b)
	}

	for _, op := range j.Operations() {
		ids := touchedAccounts(op)
		var first string
		for _, id := range ids {
			if id == "" {
				continue
			}
			if first == "" {
				first = id
				find(id)
				continue
			}
			union(first, id)
		}
	}

	byRoot := make(map[string][]string)
	for id := range parent {
		root := find(id)
		byRoot[root] = append(byRoot[root], id)
	}
	groups := make([][]string, 0, len(byRoot))
	for _, group := range byRoot {
		slices.Sort(group)
		groups = append(groups, group)
	}
	slices.SortFunc(groups, func(a, b []string) int {
		return cmpString(a[0], b[0])
	})
	return groups
}

// GroupResult is the outcome of one group's pass within a parallel rebuild.
type GroupResult struct {
	Accounts []string
	Result
}

// RebuildAll replays the journal as independent per-group passes running
// concurrently, one worker per account group. priors maps the first account
// of a group to its previous ledger value; groups without a prior start from
// scratch. Blocking errors stay local to their group's Result: one broken
// account does not stop the others. Only context cancellation aborts the
// whole rebuild early.
func RebuildAll(ctx context.Context, j *Journal, store ReferenceStore, opts Options, priors map[string]*Ledger) ([]GroupResult, error) {
	groups := j.AccountGroups()
	results := make([]GroupResult, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, group := range groups {
		g.Go(func() error {
			sub := NewJournal()
			filters := make([]func(Operation) bool, 0, len(group))
			for _, id := range group {
				filters = append(filters, ByAccount(id))
			}
			for _, op := range j.Operations(filters...) {
				sub.Append(op)
			}

			prior := priors[group[0]]
			if prior == nil {
				prior = NewLedger()
			}
			res := NewRebuilder(sub, store, opts).Rebuild(ctx, prior)
			results[i] = GroupResult{Accounts: group, Result: res}
			if res.State == PassCanceled {
				return ctx.Err()
			}
			return nil
		})
	}
	err := g.Wait()
	return results, err
}
