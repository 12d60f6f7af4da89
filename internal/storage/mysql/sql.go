package mysql

const createSubmissionsSQL = `
CREATE TABLE IF NOT EXISTS submissions (
  id          CHAR(36)     NOT NULL PRIMARY KEY,
  place_id    VARCHAR(255) NULL,
  place_name  VARCHAR(512) NOT NULL,
  lat         DOUBLE       NOT NULL,
  lng         DOUBLE       NOT NULL,
  files       INT          NOT NULL DEFAULT 0,
  outcome     VARCHAR(16)  NOT NULL,
  http_status INT          NOT NULL DEFAULT 0,
  message     TEXT         NULL,
  created_at  DATETIME(6)  NOT NULL,
  KEY idx_submissions_created (created_at, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

// Retried inserts of the same id keep the first row.
const insertSubmissionSQL = `
INSERT INTO submissions
  (id, place_id, place_name, lat, lng, files, outcome, http_status, message, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE id = id
`

// Newest first; aligns with idx_submissions_created.
const recentSubmissionsSQL = `
SELECT id, COALESCE(place_id, ''), place_name, lat, lng, files, outcome, http_status, COALESCE(message, ''), created_at
FROM submissions
ORDER BY created_at DESC, id DESC
LIMIT ?
`
