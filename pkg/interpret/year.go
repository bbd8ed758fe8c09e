package interpret

import (
	"regexp"
	"strconv"

	"github.com/gnames/gncat/pkg/model"
)

// a 3 or 4 digit year, a trailing question mark stands for an unknown last
// digit.
var yearRe = regexp.MustCompile(`^(\d{3,4})\s*(\?)?(?:\D|$)`)

// year parses a publication year. Years outside of 1500..now+10 are kept
// and flagged as unlikely.
func (it *Interpreter) year(s string, issues *model.IssueSet) int {
	m := yearRe.FindStringSubmatch(s)
	if m == nil {
		*issues = issues.Add(model.UnparsableYear)
		return 0
	}
	digits := m[1]
	if m[2] != "" {
		digits += "0"
	}
	res, err := strconv.Atoi(digits)
	if err != nil {
		*issues = issues.Add(model.UnparsableYear)
		return 0
	}
	if res < minYear || res > it.maxYear {
		*issues = issues.Add(model.UnlikelyYear)
	}
	return res
}
