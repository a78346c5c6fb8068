package clientmeta

import "golang.org/x/mod/semver"

// MeetsMinimum reports whether a client version satisfies the configured
// minimum. An empty minimum admits everything; an empty client version
// fails any non-empty minimum (the client predates version reporting).
// Uses semver comparison when both sides parse as semver, otherwise
// falls back to string comparison (works for YYYY-MM-DD style versions).
func MeetsMinimum(version, minimum string) bool {
	if minimum == "" {
		return true
	}
	if version == "" {
		return false
	}

	v := normalizeVersion(version)
	m := normalizeVersion(minimum)

	if !semver.IsValid(v) || !semver.IsValid(m) {
		return version >= minimum
	}

	return semver.Compare(v, m) >= 0
}

// normalizeVersion adds "v" prefix if needed for semver parsing.
func normalizeVersion(v string) string {
	if v == "" {
		return "v0.0.0"
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}
