/*
Package operation rewrites files by folding a rule set over their content.

	+-----------+      +-----------+      +-----------+
	| Selection | ---> |  Runner   | ---> |  Applier  |
	|  (paths)  |      | (workers) |      | (one file)|
	+-----------+      +-----+-----+      +-----+-----+
	                         |                  |
	                   +-----+-----+      +-----+-----+
	                   |   Sink    | <--- |  Writer   |
	                   +-----------+      +-----------+

🎯 Purpose:
- Load one file, fold every rule over it, hand the result to a status.Writer
- Run many files on a bounded worker pool
- Turn per-file failures into records instead of aborting

🔄 Flow:
 1. The runner drains the selection, dropping paths it has already seen
 2. Each path is processed on a worker: Load, Apply, Commit
 3. The resulting record goes to the sink

⚡ Cancellation:
When the context is done the runner stops starting files. Files already in
flight finish their write, so no file is left half written.

🔍 Example:

	applier := operation.NewApplier(rules, operation.WithVerify(true))
	runner := operation.NewRunner(applier, status.NewFileWriter(), collector, 8)
	err := runner.Run(ctx, selection.Paths())
*/
package operation
