/*
Package pipeline runs chunked, parallel transforms over text files.

	+---------+    +----------+    +------+    +------------+    +--------+
	| source  | -> | splitter | -> | pool | -> | reassemble | -> | atomic |
	| (open)  |    | (chunks) |    | (N)  |    | (ordered)  |    | write  |
	+---------+    +----------+    +------+    +------------+    +--------+

🎯 Purpose:
- Split each input into fixed-size chunks counted in characters
- Transform chunks concurrently with at most N in flight per file
- Write output in the original chunk order, all or nothing
- Run many files at once and report batch progress

🔄 Flow:
1. ProcessFiles zips inputs and outputs into file jobs and validates them
2. The driver runs file jobs through an errgroup bounded by MaxParallelFiles
3. Each file job opens its input, splits it and admits chunks to its own pool
4. Workers store results in the reassembler by chunk index
5. Once every chunk is in, the fragments are committed through a temp file
6. Each committed file moves the batch progress forward exactly once

⚠️ Failure handling:
- A transform failure is per chunk and handled by the FailurePolicy
- Any other failure ends the file and the batch; committed files stay
- Cancelling the context stops admission everywhere; running transforms are
  expected to watch ctx themselves

🔍 Example:

	res, err := pipeline.ProcessFiles(ctx,
		[]string{"a.txt", "b.txt"},
		[]string{"out/a.txt", "out/b.txt"},
		text.Filter{MinTokenLength: 4},
		func(pct int) { fmt.Println(pct) },
		pipeline.WithChunkSize(4096),
	)
*/
package pipeline
