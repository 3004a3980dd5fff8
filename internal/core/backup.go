package core

import (
	"errors"
	"io/fs"
	"os"
)

// RestoreOutcome is the result of a restore attempt. Outcomes are not errors.
type RestoreOutcome int

const (
	// RestoreRestored means the backup was copied over the current store.
	RestoreRestored RestoreOutcome = iota + 1
	// RestoreNoBackup means there was no backup file to restore from.
	RestoreNoBackup
	// RestoreAlreadyUpToDate means the current store already equals the backup.
	RestoreAlreadyUpToDate
)

func (o RestoreOutcome) String() string {
	switch o {
	case RestoreRestored:
		return "restored"
	case RestoreNoBackup:
		return "no_backup"
	case RestoreAlreadyUpToDate:
		return "already_up_to_date"
	default:
		return "unknown"
	}
}

// MarshalText lets outcomes serialize by name.
func (o RestoreOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// BackupBeforeImport copies current over backup unconditionally, creating
// the backup directory if needed. When current does not exist the backup
// slot is emptied, so a later restore reports RestoreNoBackup instead of
// bringing back a library older than the import.
func BackupBeforeImport(current, backup string) error {
	if _, err := os.Stat(current); errors.Is(err, fs.ErrNotExist) {
		if err := os.Remove(backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &FileError{Op: "remove stale backup", Path: backup, Err: err}
		}
		return nil
	}
	return copyFile(current, backup)
}

// Restore replaces current with backup unless the two already hold the same
// bytes. A missing current file counts as different.
func Restore(current, backup string) (RestoreOutcome, error) {
	backupSum, err := FileDigest(backup)
	if errors.Is(err, fs.ErrNotExist) {
		return RestoreNoBackup, nil
	}
	if err != nil {
		return 0, &FileError{Op: "digest", Path: backup, Err: err}
	}

	currentSum, err := FileDigest(current)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return 0, &FileError{Op: "digest", Path: current, Err: err}
	case currentSum == backupSum:
		return RestoreAlreadyUpToDate, nil
	}

	if err := copyFile(backup, current); err != nil {
		return 0, err
	}
	return RestoreRestored, nil
}
