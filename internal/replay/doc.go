// Package replay records query executions against a live container and
// serves them back offline.
//
// Recorder and Replayer both implement querybuilder.Container, so a builder
// runs unchanged against either. Queries are matched by canonical.QueryKey:
// the rendered text, the canonical parameter values and the paging options.
// A query whose parameters differ in any value is a different recording.
//
// Recording is pass-through. Pages are persisted only after the live
// container returned them successfully; failed fetches are not recorded.
package replay
