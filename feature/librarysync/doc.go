// Package librarysync runs reconciliation passes that keep the catalog in line
// with the files under each library root.
//
// A pass locks the library, scans it, and applies two reconcile levels inside
// one catalog unit of work: the series of the library, then the books of every
// series that survived. The unit of work is committed when both levels finish
// and rolled back on any fatal error, so a pass is either fully visible or not
// at all. Failures on single entities are reported in PassResult.
//
// Passes for the same library never overlap. Within a process this is a keyed
// mutex; with Config.LockDir set a lock file per library also excludes other
// processes.
//
//	svc := librarysync.NewService(store, scanner.Multi{...}, cfg.Catalog, log)
//	result, err := svc.Reconcile(ctx, libraryID, librarysync.DryRun())
package librarysync
