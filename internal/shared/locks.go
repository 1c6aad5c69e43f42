package shared

import "fmt"

// LedgerWarmupLockKey builds the redis key guarding a ledger warmup run so
// overlapping scheduler ticks do not rebuild the same period twice.
func LedgerWarmupLockKey(p Period) string {
	return fmt.Sprintf("billing:warmup:%s:lock", p)
}
