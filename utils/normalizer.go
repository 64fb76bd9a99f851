package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reNumericToken = regexp.MustCompile(`\d+(?:\.\d+)?`)
	reWideSpaceRun = regexp.MustCompile(`\s{3,}`)
	reSpaceRun     = regexp.MustCompile(`\s+`)
	reWordPunct    = regexp.MustCompile(`([A-Za-z])[.,]([A-Za-z])`)
	reTrailingFrag = regexp.MustCompile(`\b([A-Za-z]{1,4})$`)
	reLeadingAlpha = regexp.MustCompile(`^[A-Za-z]`)
)

// Short common words that must never be merged into the following token.
// Everything else ≤5 chars is fair game; the known false-merge rate on
// genuine two-word text is accepted in exchange for repairing OCR
// fragmentation.
var mergeStopWords = map[string]bool{
	"a": true, "an": true, "as": true, "at": true, "be": true, "by": true,
	"do": true, "go": true, "if": true, "in": true, "is": true, "it": true,
	"me": true, "my": true, "no": true, "of": true, "on": true, "or": true,
	"so": true, "to": true, "up": true, "us": true, "we": true,
}

// Known OCR mis-renderings of domain labels, replaced case-insensitively as
// whole words.
var labelFixes = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bAddre ss\b`), "Address"},
	{regexp.MustCompile(`(?i)\bAdd re ss\b`), "Address"},
	{regexp.MustCompile(`(?i)\blnvoice\b`), "Invoice"},
	{regexp.MustCompile(`(?i)\blnv0ice\b`), "Invoice"},
	{regexp.MustCompile(`(?i)\bT0tal\b`), "Total"},
	{regexp.MustCompile(`(?i)\bAm0unt\b`), "Amount"},
	{regexp.MustCompile(`(?i)\bGSTlN\b`), "GSTIN"},
	{regexp.MustCompile(`(?i)\bGS TIN\b`), "GSTIN"},
}

// Normalize cleans raw OCR or PDF-layer text into an ordered list of
// non-empty canonical lines. Six layers run in fixed order over the whole
// line list: unicode/whitespace normalization, single-letter spacing repair,
// intra-word punctuation repair, short-fragment merging, cross-line
// continuation splicing, and label canonicalization. The chain is re-applied
// until the output is stable, so already-clean text is a fixed point and
// Normalize is idempotent.
func Normalize(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r", ""), "\n")
	for i := 0; i < 5; i++ {
		next := normalizePass(lines)
		if equalLines(next, lines) {
			return next
		}
		lines = next
	}
	return lines
}

// NormalizeJoined is Normalize with the result joined back into a single
// newline-separated string, for callers that keep text flat.
func NormalizeJoined(raw string) string {
	return strings.Join(Normalize(raw), "\n")
}

func normalizePass(lines []string) []string {
	lines = dropEmpty(mapLines(lines, baseNormalize))
	lines = dropEmpty(mapLines(lines, collapseLetterRuns))
	lines = dropEmpty(mapLines(lines, repairWordPunctuation))
	lines = dropEmpty(mapLines(lines, mergeShortFragments))
	lines = dropEmpty(spliceContinuations(lines))
	lines = dropEmpty(mapLines(lines, canonicalizeLabels))
	return lines
}

// baseNormalize applies NFC and the conditional whitespace policy: lines with
// at least two numeric tokens keep their column-alignment signal (runs of 3+
// spaces capped at exactly 3), everything else is fully collapsed.
func baseNormalize(line string) string {
	line = norm.NFC.String(line)
	if len(reNumericToken.FindAllString(line, -1)) >= 2 {
		return strings.TrimSpace(reWideSpaceRun.ReplaceAllString(line, "   "))
	}
	return strings.TrimSpace(reSpaceRun.ReplaceAllString(line, " "))
}

// collapseLetterRuns repairs OCR letter-spacing artifacts such as
// "M e r c h a n t" by joining runs of two or more single-letter tokens.
// Numeric tokens are never touched.
func collapseLetterRuns(line string) string {
	tokens := strings.Split(line, " ")
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		j := i
		for j < len(tokens) && isSingleLetter(tokens[j]) {
			j++
		}
		if j-i >= 2 {
			out = append(out, strings.Join(tokens[i:j], ""))
			i = j
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return strings.Join(out, " ")
}

// repairWordPunctuation deletes a period or comma sandwiched directly between
// two letters ("Add.ress" -> "Address"). Runs to a local fixed point so
// stacked artifacts like "A.d.dress" resolve in one layer.
func repairWordPunctuation(line string) string {
	for {
		repaired := reWordPunct.ReplaceAllString(line, "$1$2")
		if repaired == line {
			return repaired
		}
		line = repaired
	}
}

// mergeShortFragments joins adjacent alphabetic tokens of up to five
// characters each, unless the first is a common short word. Lossy by design.
func mergeShortFragments(line string) string {
	tokens := strings.Split(line, " ")
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if i+1 < len(tokens) &&
			isShortAlpha(tokens[i]) && isShortAlpha(tokens[i+1]) &&
			!mergeStopWords[strings.ToLower(tokens[i])] {
			out = append(out, tokens[i]+tokens[i+1])
			i += 2
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return strings.Join(out, " ")
}

// spliceContinuations repairs words broken across a line boundary: a line
// ending in a short alphabetic fragment absorbs the first word of the next
// line, which loses that prefix.
func spliceContinuations(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	for i := 0; i+1 < len(out); i++ {
		frag := reTrailingFrag.FindString(out[i])
		if frag == "" || !reLeadingAlpha.MatchString(out[i+1]) {
			continue
		}
		next := out[i+1]
		firstWord := next
		if sp := strings.IndexByte(next, ' '); sp >= 0 {
			firstWord = next[:sp]
		}
		out[i] += firstWord
		out[i+1] = strings.TrimSpace(next[len(firstWord):])
	}
	return out
}

func canonicalizeLabels(line string) string {
	for _, fix := range labelFixes {
		line = fix.re.ReplaceAllString(line, fix.replacement)
	}
	return line
}

func mapLines(lines []string, fn func(string) string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fn(l)
	}
	return out
}

func dropEmpty(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isSingleLetter(tok string) bool {
	return len(tok) == 1 &&
		((tok[0] >= 'a' && tok[0] <= 'z') || (tok[0] >= 'A' && tok[0] <= 'Z'))
}

func isShortAlpha(tok string) bool {
	if len(tok) == 0 || len(tok) > 5 {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
