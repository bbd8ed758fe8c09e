package sector

import "slices"

// Diff lists names that appeared or disappeared between two attempts.
type Diff struct {
	SectorKey int      `json:"sectorKey"`
	Attempt1  int      `json:"attempt1"`
	Attempt2  int      `json:"attempt2"`
	Deleted   []string `json:"deleted"`
	Inserted  []string `json:"inserted"`
}

// IsEmpty is true when both attempts produced the same names.
func (d Diff) IsEmpty() bool {
	return len(d.Deleted) == 0 && len(d.Inserted) == 0
}

// NamesDiff compares names of an earlier attempt a with a later attempt b.
func NamesDiff(a, b *SectorImport) Diff {
	res := Diff{
		SectorKey: b.SectorKey,
		Attempt1:  a.Attempt,
		Attempt2:  b.Attempt,
	}
	res.Deleted = minus(a.Names, b.Names)
	res.Inserted = minus(b.Names, a.Names)
	return res
}

// minus returns sorted unique names of a that are missing in b.
func minus(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	res := []string{}
	for _, v := range a {
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		res = append(res, v)
	}
	slices.Sort(res)
	return res
}
