// internal/requestinfo/geo.go
//
// Coarse geolocation for visit analytics.
//
// Context
// -------
// When a GeoLite2-City database is configured the Locator answers from it.
// Otherwise, or when the database has no match, it falls back to the
// country and city headers that edge networks add in front of the API
// (Cloudflare CF-IPCountry, Vercel X-Vercel-IP-Country / X-Vercel-IP-City).
//
// The geoip2 reader is safe for concurrent lookups.  A nil *Locator is
// valid and only consults headers.
package requestinfo

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Geo holds best-effort location hints.  Fields may be empty.
type Geo struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// Locator resolves addresses to Geo.
type Locator struct {
	reader *geoip2.Reader
}

// OpenLocator opens the GeoLite2 database at path.  An empty path returns
// a header-only Locator.
func OpenLocator(path string) (*Locator, error) {
	if path == "" {
		return &Locator{}, nil
	}
	rd, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip db %s: %w", path, err)
	}
	return &Locator{reader: rd}, nil
}

// Close releases the database handle.
func (l *Locator) Close() error {
	if l == nil || l.reader == nil {
		return nil
	}
	return l.reader.Close()
}

// Lookup resolves addr, falling back to edge headers on r.
func (l *Locator) Lookup(r *http.Request, addr string) Geo {
	var g Geo
	if l != nil && l.reader != nil {
		if ip := net.ParseIP(addr); ip != nil {
			if rec, err := l.reader.City(ip); err == nil {
				g.Country = rec.Country.IsoCode
				g.City = rec.City.Names["en"]
			}
		}
	}
	if g.Country == "" {
		g.Country = firstHeader(r, "CF-IPCountry", "X-Vercel-IP-Country")
		// Cloudflare uses XX for unknown and T1 for Tor.
		if g.Country == "XX" || g.Country == "T1" {
			g.Country = ""
		}
	}
	if g.City == "" {
		if c := r.Header.Get("X-Vercel-IP-City"); c != "" {
			if dec, err := url.QueryUnescape(c); err == nil {
				c = dec
			}
			g.City = c
		}
	}
	return g
}

func firstHeader(r *http.Request, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(r.Header.Get(n)); v != "" {
			return strings.ToUpper(v)
		}
	}
	return ""
}
