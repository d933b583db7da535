// Package giturl classifies the different git remote url syntaxes
package giturl

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Scheme is the transport a remote url will be fetched or pushed with
type Scheme string

const (
	SchemeSCP   Scheme = "scp"   // user@host.xz:path/to/repo.git
	SchemeSSH   Scheme = "ssh"   // ssh://[user@]host.xz[:port]/path/to/repo.git
	SchemeHTTPS Scheme = "https" // https://host.xz[:port]/path/to/repo.git
	SchemeHTTP  Scheme = "http"  // http://host.xz[:port]/path/to/repo.git
	SchemeFile  Scheme = "file"  // file:///path/to/repo.git
	SchemeLocal Scheme = "local" // /path/to/repo.git or ./repo.git
	SchemeOther Scheme = "other" // git://, ext:: and other transports
)

var (
	// scp-like syntax is only recognised if there is no slash before the first colon
	// user@host.xz:path/to/repo.git or host.xz:path/to/repo.git
	scpURLRgx = regexp.MustCompile(`^(?:[^@/:]+@)?[^@/:]+:`)

	// <transport>://...
	schemeURLRgx = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.\-]*)://`)
)

// NormaliseURL will return url with surrounding white spaces and
// trailing slashes removed
func NormaliseURL(rawURL string) string {
	nURL := strings.TrimSpace(rawURL)
	nURL = strings.TrimRight(nURL, "/")

	return nURL
}

// SchemeOf returns the transport of the given remote url
func SchemeOf(rawURL string) Scheme {
	rawURL = NormaliseURL(rawURL)

	if m := schemeURLRgx.FindStringSubmatch(rawURL); m != nil {
		switch strings.ToLower(m[1]) {
		case "ssh", "git+ssh", "ssh+git":
			return SchemeSSH
		case "https":
			return SchemeHTTPS
		case "http":
			return SchemeHTTP
		case "file":
			return SchemeFile
		default:
			return SchemeOther
		}
	}

	if strings.Contains(rawURL, "::") {
		return SchemeOther
	}

	if scpURLRgx.MatchString(rawURL) {
		return SchemeSCP
	}

	return SchemeLocal
}

// IsSSH returns true if git will use ssh to talk to the remote
func IsSSH(rawURL string) bool {
	s := SchemeOf(rawURL)
	return s == SchemeSCP || s == SchemeSSH
}

// IsHTTP returns true if git will use http(s) to talk to the remote
func IsHTTP(rawURL string) bool {
	s := SchemeOf(rawURL)
	return s == SchemeHTTPS || s == SchemeHTTP
}

// RepoName returns the last path element of the remote url without
// `.git` suffix. ie 'repo' for 'git@github.com:org/repo.git'
// empty string is returned if name cant be worked out.
func RepoName(rawURL string) string {
	rawURL = NormaliseURL(rawURL)

	p := rawURL
	switch SchemeOf(rawURL) {
	case SchemeSCP:
		_, p, _ = strings.Cut(rawURL, ":")
	case SchemeSSH, SchemeHTTPS, SchemeHTTP, SchemeFile, SchemeOther:
		if u, err := url.Parse(rawURL); err == nil {
			p = u.Path
		}
	}

	name := strings.TrimSuffix(path.Base(strings.ReplaceAll(p, `\`, "/")), ".git")
	switch name {
	case "", ".", "..", "/":
		return ""
	}
	return name
}

// Redact returns url with password (or token) replaced so that it can be logged.
// non url remotes are returned as is.
func Redact(rawURL string) string {
	if !schemeURLRgx.MatchString(rawURL) {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Redacted()
}
