// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	jobIndent    = 4  // spaces to indent job entries
	nameWidth    = 35 // Base width for the input path
	chunkWidth   = 10 // Width for the chunk count
	outcomeWidth = 10 // Width for outcome text
)

// 🎯 FormatJobLine formats one finished file job as an aligned console row
func FormatJobLine(input string, chunks int, outcome Outcome) string {
	var prefix string
	switch outcome {
	case OutcomeCommitted:
		prefix = color.GreenString("✓")
	case OutcomeDegraded:
		prefix = color.YellowString("⟳")
	case OutcomeFailed:
		prefix = color.RedString("✗")
	default:
		prefix = color.HiBlackString("-")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, input)
	chunkPart := fmt.Sprintf("%-*s", chunkWidth, fmt.Sprintf("%d chunks", chunks))
	outcomePart := fmt.Sprintf("%-*s", outcomeWidth, outcome.String())

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", jobIndent),
		prefix,
		namePart,
		chunkPart,
		outcomePart,
	)
}
