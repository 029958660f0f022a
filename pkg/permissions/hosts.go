// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"sort"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"

	"golang.org/x/net/publicsuffix"
)

// DistinctHosts reduces a pattern set to the hosts it names. Hosts that
// differ only in their registry-controlled domain collapse into one entry.
// With includeRCD the best domain is kept (com, then net, then org, then the
// first seen); without it every entry is the bare host. Subdomain wildcards
// are rendered as a "*." prefix. The result is sorted.
func DistinctHosts(hosts urlpattern.Set, includeRCD, excludeFileScheme bool) []string {
	type hostRCD struct {
		host, rcd string
	}
	var seen []hostRCD

	for _, p := range hosts.Patterns() {
		if excludeFileScheme && p.Scheme() == "file" {
			continue
		}

		host := p.Host()
		if p.MatchSubdomains() {
			host = "*." + host
		}

		rcd := ""
		if n := registryLength(host); n > 0 {
			if includeRCD {
				rcd = host[len(host)-n:]
			}
			host = host[:len(host)-n]
		}

		found := false
		for i := range seen {
			if seen[i].host != host {
				continue
			}
			found = true
			if includeRCD && rcdBetterThan(rcd, seen[i].rcd) {
				seen[i].rcd = rcd
			}
			break
		}
		if !found {
			seen = append(seen, hostRCD{host: host, rcd: rcd})
		}
	}

	set := make(map[string]struct{}, len(seen))
	for _, h := range seen {
		set[h.host+h.rcd] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// registryLength returns the length of the known public suffix of host, or
// 0 when the host has none or is itself a suffix. Unlisted top-level labels
// do not count as registries.
func registryLength(host string) int {
	if host == "" || strings.HasSuffix(host, ".") {
		return 0
	}
	suffix, icann := publicsuffix.PublicSuffix(host)
	if suffix == "" || suffix == host {
		return 0
	}
	if !icann && !strings.Contains(suffix, ".") {
		return 0
	}
	return len(suffix)
}

// rcdBetterThan ranks registry-controlled domains: com > net > org > others.
func rcdBetterThan(a, b string) bool {
	if a == b {
		return false
	}
	switch a {
	case "com":
		return true
	case "net":
		return b != "com"
	case "org":
		return b != "com" && b != "net"
	default:
		return false
	}
}
