package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBNotConnectedError
	DBTableExistsCheckError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError
	DBEmptyDatabaseError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaPartitionError
	SchemaCollationError

	// Sources errors
	SourcesConfigError
	SourcesSaveError

	// Archive errors
	ArchiveFetchError
	ArchiveOpenError
	ArchiveReadError

	// Import errors
	ImportInterpretError
	ImportPersistError
	ImportDatasetError
	ImportDatasetBusyError

	// Store errors
	StoreQueryError
	StoreWriteError
	StorePartitionError
	StoreConflictError

	// Sector sync errors
	SectorNotFoundError
	SectorRootMissingError
	SectorStateError
	SectorRepositoryError

	// Coordinator errors
	CoordDatasetLockedError
	CoordDatasetBusyError

	// Index errors
	IndexUpsertError
	IndexDeleteError

	// Optimize errors
	OptimizeOrphanError
	OptimizeVacuumError
)
