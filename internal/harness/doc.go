// Package harness runs conformance scenarios for query definitions.
//
// A scenario executes one query definition against scripted container
// responses and checks the outcome, the queries that reached the container
// and what was logged along the way.
//
// # Scenario Format
//
// Scenarios are YAML files named *.scenario.yaml:
//
//	name: adults
//	description: "Two adults on the first page, five in total"
//	definition: ../queries/adults.yaml
//	fetch: all            # or "one"
//	page_size: 2
//	responses:
//	  - resources: [{id: a, age: 30}, {id: b, age: 40}]
//	    continuation_token: page-2
//	    has_more_results: true
//	  - resources: [5]
//	expect:
//	  count: 2
//	  total_count: 5
//	  items: [{id: a}, {id: b}]
//	assertions:
//	  - {type: query_count, count: 2}
//	  - {type: query_contains, index: 1, text: "VALUE COUNT(1)"}
//	replay: true
//
// Responses are served in order, one per query. An entry with error set
// fails that query instead.
//
// # Assertion Types
//
//   - query_count: exactly N queries reached the container
//   - query_contains: the query at index contains text
//   - query_parameters: the query at index was bound to parameters
//   - log_contains: a log entry with level and message was written
//
// # Deterministic Replay
//
// Every run goes through a Recorder backed by an in-memory SQLite store.
// With replay set, the scenario is executed a second time from the
// recording and the result must be identical to the live run.
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of the trace and output with
// testdata/golden/<name>.golden. Regenerate with -update.
package harness
