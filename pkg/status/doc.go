/*
Package status persists rewritten files and tracks what happened to each one.

	+----------+      +-----------+      +-----------+
	| Applier  | ---> |  Writer   | ---> | Collector |
	| (Change) |      | (file or  |      | (records, |
	+----------+      |  diff)    |      |  summary) |
	                  +-----------+      +-----+-----+
	                                           |
	                                     +-----+-----+
	                                     | Reporter  |
	                                     +-----------+

🎯 Purpose:
- Write changed files atomically, leave unchanged ones untouched
- Render dry run diffs instead of writing
- Collect one ChangeRecord per file from many workers
- Summarize a run

🔄 Flow:
 1. The applier hands a Change to a Writer
 2. FileWriter writes to a temp file in the target's directory, syncs it,
    restores the original mode and renames it over the target
 3. DiffWriter fills ChangeRecord.Diff and writes nothing
 4. The Collector stores the record and forwards it to a Reporter

⚡ Failure Semantics:
A failed write never leaves a partial file behind. The error is a
*FileWriteError carried in the record, and the run moves on to the next file.

🔍 Example:

	collector := status.NewCollector(reporter)
	rec, err := status.NewFileWriter().Commit(ctx, change)
	collector.Record(ctx, rec)
	summary := collector.Summary()
*/
package status
