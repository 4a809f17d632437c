/*
Package status tracks batch progress and formats job results for chunkrc.

	            +-------------+
	            |   Driver    |
	            +------+------+
	                   | file finished
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+------+
	|  Tracker  |           | Formatter |
	| (percent) |           |  (UI/UX)  |
	+-----------+           +-----------+

🎯 Purpose:
- Counts finished file jobs and reports round(completed*100/total)
- Formats per-job result lines and progress messages

🔄 Flow:
1. The driver creates one Tracker per batch
2. Every finished file job calls Complete exactly once
3. The callback sees the new percentage while the tracker lock is held
4. The CLI renders results through Formatter and FormatJobLine

⚡ Guarantees:
- Reported percentages never decrease
- A batch where every job finished reports exactly 100
- A nil callback is a no-op

🔍 Example:

	tr := status.NewTracker(len(jobs), func(pct int) {
		fmt.Println(pct)
	})

	for range jobs {
		tr.Complete()
	}

	fmt.Println(status.FormatProgress(tr.Completed(), tr.Total()))
*/
package status
