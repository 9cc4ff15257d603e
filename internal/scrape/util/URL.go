package util

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalizeURL strips tracking parameters and fragments so the same
// posting linked from different alerts yields the same application link.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "trk" || lk == "trackingid" || lk == "refid" ||
			lk == "lipi" || lk == "midtoken" || lk == "midsig" {
			q.Del(k)
		}
	}

	// LinkedIn view links carry the id in the path; everything else is noise.
	if strings.HasSuffix(u.Host, "linkedin.com") && strings.Contains(u.Path, "/jobs/view/") {
		q = url.Values{}
		u.Path = strings.Replace(u.Path, "/comm/jobs/view/", "/jobs/view/", 1)
	}

	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}
