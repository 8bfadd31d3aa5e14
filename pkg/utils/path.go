package utils

import "strings"

// JoinKey joins object-key segments with "/", dropping empty segments and
// trimming redundant separators. Providers use it to build backend keys from
// a root path and case-relative names.
func JoinKey(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "/")
}

// BaseName returns the final segment of a slash-separated key.
func BaseName(key string) string {
	key = strings.TrimRight(key, "/")
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// FileTypeOf returns the substring after the last "." in name. A name
// without a dot yields the whole name.
func FileTypeOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// SizeLabelOf detects the payload-size class encoded in an asset filename
// (the seeded benchmark assets carry small/medium/large tokens). Unknown
// names label as "unknown".
func SizeLabelOf(name string) string {
	lower := strings.ToLower(name)
	for _, label := range []string{"small", "medium", "large"} {
		if strings.Contains(lower, label) {
			return label
		}
	}
	return "unknown"
}
