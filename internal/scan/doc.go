// Package scan provides the business boundary for the disaster scanner.
// It defines the Service (lifecycle, source fan-in, async dispatch), the
// Engine (pure classification/dedup/ranking pipeline over a materialized
// batch), the Store interface, and the scan result model.
package scan
