// Package model defines the domain data shared across the fetcher: content
// references, preview metadata, download plans, progress snapshots, run
// records and their status enums, plus the display formatters used for
// previews.
package model
