package searchtool

import "strings"

// Prefixes of the network-share paths Windows uses for WSL distributions.
const (
	wslLocalhostPrefix = `\\wsl.localhost\`
	wslDollarPrefix    = `\\wsl$\`
)

// IsUNCPath reports whether p is a WSL network-share path such as
// \\wsl.localhost\Ubuntu\home\user or \\wsl$\Ubuntu\home\user.
func IsUNCPath(p string) bool {
	return strings.HasPrefix(p, wslLocalhostPrefix) || strings.HasPrefix(p, wslDollarPrefix)
}

// NormalizePath rewrites a WSL network-share path to the Linux path the
// tools inside the distribution expect:
//
//	\\wsl.localhost\Ubuntu\home\user -> /home/user
//	\\wsl$\Ubuntu\home\user          -> /home/user
//
// Other paths are returned unchanged. It never touches the filesystem.
func NormalizePath(p string) string {
	var rest string
	switch {
	case strings.HasPrefix(p, wslLocalhostPrefix):
		rest = p[len(wslLocalhostPrefix):]
	case strings.HasPrefix(p, wslDollarPrefix):
		rest = p[len(wslDollarPrefix):]
	default:
		return p
	}

	// Drop the distribution name.
	_, tail, found := strings.Cut(rest, `\`)
	if !found {
		return "/"
	}
	return "/" + strings.ReplaceAll(tail, `\`, "/")
}
