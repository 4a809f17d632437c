/*
Package config loads chunkrc run configuration from YAML, HCL or JSON.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +-----------+-----------+-----------+
	      |           |           |           |
	+-----+----+ +----+----+ +----+-----+ +---+-----+
	|   YAML   | |   HCL   | |   JSON   | |  Globs  |
	|  Parser  | |  Parser | |  Parser  | | (jobs)  |
	+----------+ +---------+ +----------+ +---------+

🎯 Purpose:
- Picks a parser by file extension and rejects unknown fields
- Validates tunables and fills defaults
- Expands job entries and glob entries into ordered input/output lists

🔄 Flow:
1. Load reads the file and hands it to the registered parser
2. Validate checks values and applies defaults
3. Jobs returns explicit jobs first, then glob matches in lexical order
4. Options and TextFilter translate the config for the pipeline

🔍 Example (YAML):

	chunk_size: 4096
	max_parallel_files: 4
	failure_policy: abort
	filter:
	  min_token_length: 4
	  strip_punctuation: true
	jobs:
	  - input: notes.txt
	    output: out/notes.txt
	globs:
	  - pattern: "docs/*.md"
	    output_dir: out/docs
	    suffix: .filtered

The same file in HCL:

	chunk_size     = 4096
	failure_policy = "abort"

	filter {
	  min_token_length  = 4
	  strip_punctuation = true
	}

	job {
	  input  = "notes.txt"
	  output = "out/notes.txt"
	}

Relative paths are resolved against the directory holding the config file.
*/
package config
