package models

import "time"

// BackupFormatVersion identifies the backup aggregate shape. Version 2
// added chunk payloads, so backups of chunked objects are no longer lossy.
const BackupFormatVersion = 2

// Backup is a transient full-store snapshot. It is produced and consumed
// in memory by the engine; serializing it to a file is the caller's
// concern.
type Backup struct {
	FormatVersion int            `json:"format_version"`
	Profiles      []Profile      `json:"profiles"`
	Objects       []StoredObject `json:"objects"`
	Chunks        []Chunk        `json:"chunks"`
	ExportedAt    time.Time      `json:"exported_at"`
}
