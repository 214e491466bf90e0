package mysql

const insertFetchSQL = `
INSERT INTO supplier_fetches
  (supplier, ok, records, error, duration_ms, fetched_at)
VALUES
  (?, ?, ?, ?, ?, ?)
`

// Latest row per supplier; ids are monotonic so MAX(id) is the newest call.
const latestFetchesSQL = `
SELECT
  f.supplier,
  f.ok,
  f.records,
  f.error,
  f.duration_ms,
  f.fetched_at
FROM supplier_fetches f
JOIN (
  SELECT supplier, MAX(id) AS id
  FROM supplier_fetches
  GROUP BY supplier
) last ON last.id = f.id
ORDER BY f.supplier
`

const pruneFetchesSQL = `
DELETE FROM supplier_fetches
WHERE fetched_at < ?
`
