// Package docs publishes the outcome of executed scenarios.
//
// The Publisher interface is the single capability the execution core
// depends on: it receives a scenario's metadata and its pass/fail status
// once per executed scenario. Two publishers are provided:
//
//   - Journal writes one canonical JSON line per scenario to an io.Writer.
//   - Store persists records in SQLite for later listing and summaries.
//
// Journal lines can be loaded back with ReadJournal and imported into a
// Store, which is what `bddkit docs import` does.
package docs
