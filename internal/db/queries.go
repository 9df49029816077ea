package db

// Queries use ? placeholders and are rebound per driver.
const (
	InsertJob = `INSERT INTO print_jobs (id, data_json, created_at) VALUES (?, ?, ?)`

	GetJobByID = `SELECT id, data_json, created_at FROM print_jobs WHERE id = ?`
)
