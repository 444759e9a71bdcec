package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/matzehuels/minbump/pkg/version"
)

// maxPackageNameLength is npm's limit on package names.
const maxPackageNameLength = 214

// npmPackageNameRegex matches npm package names, scoped or not. Uppercase is
// accepted because legacy packages such as JSONStream still resolve.
var npmPackageNameRegex = regexp.MustCompile(`^(@[A-Za-z0-9-~][A-Za-z0-9-._~]*/)?[A-Za-z0-9-~][A-Za-z0-9-._~]*$`)

// ValidatePackageName validates an npm package name before it is used in a
// registry URL or a cache key.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}
	if len(name) > maxPackageNameLength {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", "..")
	}
	if !npmPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid npm package name: %q", name)
	}
	return nil
}

// ValidateVersion validates a concrete version such as "1.2.3" or "v1.2.3".
func ValidateVersion(v string) error {
	if strings.TrimSpace(v) == "" {
		return New(ErrCodeInvalidVersion, "version cannot be empty")
	}
	if !version.Valid(v) {
		return New(ErrCodeInvalidVersion, "invalid version: %q", v)
	}
	return nil
}

// ValidateSpecifier validates a version or range as written in package.json.
func ValidateSpecifier(spec string) error {
	if !version.ValidSpec(spec) {
		return New(ErrCodeInvalidVersion, "invalid version or range: %q", spec)
	}
	return nil
}

// ValidateURL validates a registry URL. Only http and https are allowed.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}
	return nil
}
