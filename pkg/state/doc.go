// Package state persists which extensions the host has deactivated.
//
// A deactivation requested by a failed requirements check must survive the
// request that triggered it, so the host records it through a [Repository].
// [FileRepository] stores a small JSON document; [MemoryRepository] keeps it
// in memory for tests and embedded use.
//
// # Usage
//
//	repo := state.NewFileRepository("/var/lib/reqgate")
//	s, err := repo.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	s.Deactivate("demo/demo.php", time.Now())
//	if err := repo.Save(ctx, s); err != nil {
//	    return err
//	}
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package state
