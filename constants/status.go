package constants

// JobStatus is the canonical status for rows in extraction_job.
type JobStatus string

// Stable values (store these exact strings in the DB).
const (
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOK      JobStatus = "OK"      // extraction finished (possibly zero fields)
	JobStatusFailed  JobStatus = "FAILED"  // structural failure
)
