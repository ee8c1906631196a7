package mysql

// Schema lives in migrations/0001_sessions.sql.

const findSessionSQL = `
SELECT data
FROM sessions
WHERE token = ? AND expiry > UTC_TIMESTAMP(6)
`

const commitSessionSQL = `
INSERT INTO sessions (token, data, expiry)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  data   = VALUES(data),
  expiry = VALUES(expiry)
`

const deleteSessionSQL = `DELETE FROM sessions WHERE token = ?`

// Expired rows are removed in batches to keep lock times short.
const deleteExpiredSQL = `DELETE FROM sessions WHERE expiry < UTC_TIMESTAMP(6) LIMIT 1000`
