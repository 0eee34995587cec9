// Package todo owns the task collection and its persisted form.
//
// A Store holds the ordered list of tasks and applies the three mutations
// (add, toggle, delete). After every successful mutation the whole
// collection is serialized and written through the Storage port under a
// single key:
//
//	[
//	  {"id": 1, "text": "Buy milk", "completed": true},
//	  {"id": 2, "text": "Write report", "completed": false}
//	]
//
// # Startup
//
// Open reads the key once. A missing key yields an empty store. Data that
// cannot be read, parsed, or validated is discarded and the store starts
// empty; the discarded cause is available from Store.Recovered.
//
// # Derived views
//
// FilteredView and ComputeStats are pure functions over a snapshot:
//
//   - "all": every task in insertion order
//   - "active": tasks with completed == false
//   - "completed": tasks with completed == true
//
// CompletionRate rounds half up: 1 of 8 completed is 13%, not 12%.
//
// # Concurrency
//
// A Store is not safe for concurrent use. Snapshots returned by Tasks are
// never modified by later mutations.
package todo
