// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"strings"
	"testing"

	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"
)

func TestDistinctHostsForDisplay(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	tests := []struct {
		name       string
		explicit   []string
		scriptable []string
		want       []string
	}{
		{
			name:     "no dupes",
			explicit: []string{"http://www.foo.com/path", "http://www.bar.com/path", "http://www.baz.com/path"},
			want:     []string{"www.bar.com", "www.baz.com", "www.foo.com"},
		},
		{
			name: "dupes, schemes and paths collapse",
			explicit: []string{
				"http://www.foo.com/path", "http://www.bar.com/path", "http://www.baz.com/path",
				"http://www.foo.com/path", "https://www.bar.com/path", "http://www.bar.com/pathypath",
			},
			want: []string{"www.bar.com", "www.baz.com", "www.foo.com"},
		},
		{
			name:     "subdomains are distinct",
			explicit: []string{"http://www.bar.com/path", "http://monkey.www.bar.com/path", "http://bar.com/path"},
			want:     []string{"bar.com", "monkey.www.bar.com", "www.bar.com"},
		},
		{
			name: "registry domains collapse",
			explicit: []string{
				"http://www.foo.com/path", "http://www.foo.co.uk/path", "http://www.foo.de/path",
				"http://www.foo.ca.us/path", "http://www.foo.net/path", "http://www.foo.com.my/path",
				"http://www.foo.xyzzy/path",
			},
			want: []string{"www.foo.com", "www.foo.xyzzy"},
		},
		{
			name:     "subdomain wildcards",
			explicit: []string{"http://*.google.com/*"},
			want:     []string{"*.google.com"},
		},
		{
			name:       "scriptable hosts are included",
			explicit:   []string{"http://*.google.com/*"},
			scriptable: []string{"http://*.example.com/*"},
			want:       []string{"*.example.com", "*.google.com"},
		},
		{
			name:     "file urls are excluded",
			explicit: []string{"file:///*"},
			want:     []string{},
		},
		{
			name: "com is best",
			explicit: []string{
				"http://www.foo.ca/path", "http://www.foo.org/path", "http://www.foo.co.uk/path",
				"http://www.foo.net/path", "http://www.foo.jp/path", "http://www.foo.com/path",
			},
			want: []string{"www.foo.com"},
		},
		{
			name: "net is second best",
			explicit: []string{
				"http://www.foo.ca/path", "http://www.foo.org/path", "http://www.foo.co.uk/path",
				"http://www.foo.net/path", "http://www.foo.jp/path",
			},
			want: []string{"www.foo.net"},
		},
		{
			name:     "org is third best",
			explicit: []string{"http://www.foo.ca/path", "http://www.foo.org/path", "http://www.foo.co.uk/path", "http://www.foo.jp/path"},
			want:     []string{"www.foo.org"},
		},
		{
			name:     "first seen otherwise",
			explicit: []string{"http://www.foo.ca/path", "http://www.foo.co.uk/path", "http://www.foo.jp/path"},
			want:     []string{"www.foo.ca"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewSet(reg, nil, hosts(tt.explicit...), hosts(tt.scriptable...))
			got := s.DistinctHostsForDisplay()
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("DistinctHostsForDisplay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistinctHostsWithoutRCD(t *testing.T) {
	t.Parallel()

	set := hosts("http://www.google.com/*", "http://www.google.co.uk/*", "file:///*", "http://10.0.0.1/*")
	got := DistinctHosts(set, false, false)
	want := []string{"", "10.0.0.1", "www.google."}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("DistinctHosts() = %q, want %q", got, want)
	}
}

func TestRCDBetterThan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"com", "net", true},
		{"com", "com", false},
		{"net", "com", false},
		{"net", "org", true},
		{"org", "net", false},
		{"org", "co.uk", true},
		{"co.uk", "jp", false},
	}

	for _, tt := range tests {
		if got := rcdBetterThan(tt.a, tt.b); got != tt.want {
			t.Errorf("rcdBetterThan(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestHostListMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hosts []string
		id    MessageID
		text  string
	}{
		{[]string{"a.com"}, MessageHosts1, "Your data on a.com"},
		{[]string{"b.com", "a.com"}, MessageHosts2, "Your data on a.com and b.com"},
		{[]string{"a.com", "b.com", "c.com"}, MessageHosts3, "Your data on a.com, b.com, and c.com"},
		{[]string{"d.com", "a.com", "c.com", "b.com"}, MessageHosts4OrMore, "Your data on a.com, b.com, and 2 other websites"},
	}

	for _, tt := range tests {
		m := HostListMessage(tt.hosts)
		if m.ID != tt.id || m.Text != tt.text {
			t.Errorf("HostListMessage(%v) = {%d %q}, want {%d %q}", tt.hosts, m.ID, m.Text, tt.id, tt.text)
		}
	}
}

func TestEmptyHostSet(t *testing.T) {
	t.Parallel()

	if got := DistinctHosts(urlpattern.Set{}, true, true); len(got) != 0 {
		t.Errorf("DistinctHosts(empty) = %v", got)
	}
}
