package recordmgr

import "github.com/coredb/recordmgr/rmconfig"

// InitRecordManager validates cfg and is the hook callers use before
// opening or creating any table. It holds no package-level state - every
// Table carries its own buffer pool and logger - so repeated or concurrent
// calls are always safe.
func InitRecordManager(cfg rmconfig.Config) error {
	return cfg.Validate()
}

// ShutdownRecordManager exists for symmetry with InitRecordManager. Callers
// should CloseTable every Table they opened before calling this; there is
// no global state here to release.
func ShutdownRecordManager() error {
	return nil
}
