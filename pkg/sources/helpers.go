package sources

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	keyPattern     = regexp.MustCompile(`^(\d+)`)
	datePattern    = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	versionPattern = regexp.MustCompile(`^_(.+?)\.(?:sql|sqlite)$`)
)

// ParseArchiveName extracts metadata from an SFGA file name.
// Expected format: {key}_{name}_{date}_{version}.(sql|sqlite)[.zip]
// Examples:
//   - 0001_col_2025-10-03_v2024.1.sqlite.zip  → Key=1, Date=2025-10-03, Version=v2024.1
//   - 0003_worms_2025-01-01.sqlite            → Key=3, Date=2025-01-01, Version=""
//   - 1001.sql                                 → Key=1001, Date="", Version=""
func ParseArchiveName(path string) ArchiveMetadata {
	var res ArchiveMetadata
	res.IsURL = IsValidURL(path)

	filename := filepath.Base(path)
	filename = strings.TrimSuffix(filename, ".zip")

	if matches := keyPattern.FindStringSubmatch(filename); len(matches) > 1 {
		if key, err := strconv.Atoi(matches[1]); err == nil {
			res.Key = key
		}
	}

	if matches := datePattern.FindStringSubmatch(filename); len(matches) > 1 {
		res.ReleaseDate = matches[1]
	}

	// version is everything between the date and the extension
	if res.ReleaseDate != "" {
		dateIdx := strings.Index(filename, res.ReleaseDate)
		afterDate := filename[dateIdx+len(res.ReleaseDate):]
		if matches := versionPattern.FindStringSubmatch(afterDate); len(matches) > 1 {
			res.Version = matches[1]
		}
	}

	return res
}

// IsValidURL checks if a string is a valid URL.
func IsValidURL(str string) bool {
	u, err := url.Parse(str)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// FilterDatasets filters datasets by a filter string and returns warnings
// for the user. Supported filters:
//   - "source" or "managed": datasets of the kind
//   - "1,3,5": datasets with given keys
//   - "180-208": datasets with keys in range [180, 208] (inclusive)
//   - "-10": datasets with keys from 1 to 10 (inclusive)
//   - "1000-": datasets with keys from 1000 to the largest key
//   - "": all datasets
func FilterDatasets(
	datasets []DatasetConfig,
	filter string,
) ([]DatasetConfig, []string, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return datasets, nil, nil
	}

	if filter == "source" || filter == "managed" {
		var res []DatasetConfig
		for _, d := range datasets {
			if d.Kind == filter {
				res = append(res, d)
			}
		}
		return res, nil, nil
	}

	requested := make(map[int]bool)
	explicit := make(map[int]bool)
	var warnings []string

	for item := range strings.SplitSeq(filter, ",") {
		item = strings.TrimSpace(item)

		if strings.Contains(item, "-") {
			start, end, err := parseRange(item, datasets)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to parse range '%s': %w", item, err)
			}
			var found bool
			for _, d := range datasets {
				if d.Key >= start && d.Key <= end {
					requested[d.Key] = true
					found = true
				}
			}
			if !found {
				warnings = append(warnings, fmt.Sprintf("range '%s' matched no datasets", item))
			}
			continue
		}

		key, err := strconv.Atoi(item)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid dataset key '%s': must be a number or range", item)
		}
		requested[key] = true
		explicit[key] = true
	}

	var res []DatasetConfig
	found := make(map[int]bool)
	for _, d := range datasets {
		if requested[d.Key] {
			res = append(res, d)
			found[d.Key] = true
		}
	}

	for key := range explicit {
		if !found[key] {
			warnings = append(warnings, fmt.Sprintf("dataset %d not found in configuration", key))
		}
	}

	if len(res) == 0 {
		if len(warnings) > 0 {
			return nil, warnings, fmt.Errorf(
				"no datasets matched filter '%s': %s",
				filter,
				strings.Join(warnings, "; "),
			)
		}
		return nil, nil, fmt.Errorf("no datasets matched filter '%s'", filter)
	}

	return res, warnings, nil
}

// parseRange parses a range string like "180-208", "-10", or "197-".
func parseRange(rangeStr string, datasets []DatasetConfig) (int, int, error) {
	parts := strings.Split(rangeStr, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid format: expected 'X-Y', '-Y', or 'X-'")
	}

	startStr := strings.TrimSpace(parts[0])
	endStr := strings.TrimSpace(parts[1])

	var start, end int
	var err error

	switch {
	case startStr == "":
		start = 1
		end, err = strconv.Atoi(endStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid end value: %w", err)
		}
	case endStr == "":
		start, err = strconv.Atoi(startStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid start value: %w", err)
		}
		end = maxKey(datasets)
		if end == 0 {
			return 0, 0, fmt.Errorf("no datasets available to determine end of range")
		}
	default:
		start, err = strconv.Atoi(startStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid start value: %w", err)
		}
		end, err = strconv.Atoi(endStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid end value: %w", err)
		}
	}

	if start > end {
		return 0, 0, fmt.Errorf("start (%d) must be <= end (%d)", start, end)
	}

	return start, end, nil
}

func maxKey(datasets []DatasetConfig) int {
	var res int
	for _, d := range datasets {
		res = max(res, d.Key)
	}
	return res
}
