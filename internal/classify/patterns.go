package classify

// This file contains the message pattern table.

import "regexp"

// patternGroup couples a reason with the patterns that suggest it.
type patternGroup struct {
	reason   Reason
	patterns []*regexp.Regexp
}

// patternGroups is evaluated in declaration order; the first group with any
// matching pattern wins. Keep this a slice: ordering is load-bearing because
// wording overlaps across groups (e.g. "timeout" vs "unavailable").
var patternGroups = []patternGroup{
	{
		reason: ReasonAuth,
		patterns: compile(
			`invalid (api[ -]?key|x-api-key)`,
			`(api[ -]?key|token|credential)s? (is |was |has )?(invalid|expired|revoked)`,
			`authentication[ _](error|failed)`,
			`unauthorized`,
			`permission denied`,
			`forbidden`,
		),
	},
	{
		reason: ReasonBilling,
		patterns: compile(
			`credit balance`,
			`insufficient (funds|credits|quota)`,
			`quota (has been )?(exceeded|exhausted)`,
			`payment required`,
			`billing`,
			`plan limit`,
		),
	},
	{
		reason: ReasonRateLimit,
		patterns: compile(
			`rate[ -_]?limit`,
			`too many requests`,
			`throttl(ed|ing)`,
			`requests? per (minute|second)`,
		),
	},
	{
		reason: ReasonTimeout,
		patterns: compile(
			`timed?[ -]?out`,
			`deadline exceeded`,
			`request timeout`,
		),
	},
	{
		reason: ReasonContextOverflow,
		patterns: compile(
			`context (length|window|limit)`,
			`maximum context`,
			`(prompt|input) is too long`,
			`too many (total )?tokens`,
			`token limit`,
			`exceeds? the (maximum )?(number of )?tokens`,
		),
	},
	{
		reason: ReasonModelUnavailable,
		patterns: compile(
			`overloaded`,
			`(service|server|model|temporarily) unavailable`,
			`bad gateway`,
			`server is busy`,
			`at capacity`,
			`model .*(not found|unavailable|unsupported)`,
			`try again later`,
		),
	},
}

// cancellationPattern recognizes explicit user-abort wording. Kept apart
// from patternGroups: cancellation must never be treated as recoverable.
var cancellationPattern = regexp.MustCompile(
	`(?i)(operation was aborted|request (was )?aborted|cancell?ed by user|context canceled)`)

// compile builds case-insensitive regexps from the given expressions.
func compile(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return compiled
}

// matchMessage walks the pattern groups in order and returns the first
// reason with a matching pattern.
func matchMessage(msg string) (Reason, bool) {
	for _, group := range patternGroups {
		for _, pattern := range group.patterns {
			if pattern.MatchString(msg) {
				return group.reason, true
			}
		}
	}
	return ReasonUnknown, false
}
