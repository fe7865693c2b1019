package stripeip

import (
	"net/http"
	"net/netip"

	"github.com/labstack/echo/v4"
)

// Stripe's published webhook source addresses. Overridden per deployment
// via STRIPE_ALLOWED_IPS; a single "*" disables the check.
var defaultAllowed = []string{
	"3.18.12.63",
	"3.130.192.231",
	"13.235.14.237",
	"13.235.122.149",
	"18.211.135.69",
	"35.154.171.200",
	"52.15.183.38",
	"54.88.130.119",
	"54.88.130.237",
	"54.187.174.169",
	"54.187.205.235",
	"54.187.216.72",
}

// Allowlist rejects webhook calls from addresses outside the allowed set.
// Entries may be plain addresses or CIDR prefixes.
func Allowlist(allowed []string) echo.MiddlewareFunc {
	if len(allowed) == 0 {
		allowed = defaultAllowed
	}

	open := false
	exact := make(map[string]struct{}, len(allowed))
	var prefixes []netip.Prefix
	for _, a := range allowed {
		if a == "*" {
			open = true
			continue
		}
		if p, err := netip.ParsePrefix(a); err == nil {
			prefixes = append(prefixes, p)
			continue
		}
		exact[a] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if open {
				return next(c)
			}
			ip := c.RealIP()
			if _, ok := exact[ip]; ok {
				return next(c)
			}
			if addr, err := netip.ParseAddr(ip); err == nil {
				for _, p := range prefixes {
					if p.Contains(addr) {
						return next(c)
					}
				}
			}
			return c.String(http.StatusForbidden, "Forbidden")
		}
	}
}
