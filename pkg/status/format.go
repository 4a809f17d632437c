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
)

// Outcome is how a file job ended
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeCommitted
	OutcomeDegraded
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// Formatter defines how file jobs and batch progress should be formatted
type Formatter interface {
	// FormatJob formats the result line of a single file job
	FormatJob(input, output string, outcome Outcome) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// FormatJob formats a file job with emojis
func (f *DefaultFormatter) FormatJob(input, output string, outcome Outcome) string {
	switch outcome {
	case OutcomeCommitted:
		return fmt.Sprintf("✨ Wrote %s → %s", input, output)
	case OutcomeDegraded:
		return fmt.Sprintf("⚠️  Wrote %s → %s with failed chunks", input, output)
	case OutcomeFailed:
		return fmt.Sprintf("❌ Failed %s", input)
	case OutcomeCancelled:
		return fmt.Sprintf("🛑 Cancelled %s", input)
	default:
		return fmt.Sprintf("⏳ Pending %s", input)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFormatter) FormatProgress(current, total int) string {
	return FormatProgress(current, total)
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

// FormatProgress formats current/total with the rounded percentage
func FormatProgress(current, total int) string {
	pct := 0
	if total <= 0 {
		if current > 0 {
			pct = 100
		}
	} else {
		pct = percent(current, total)
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%d%%)", current, total, pct)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%d%%)", current, total, pct)
}
