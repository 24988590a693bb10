// routes_middleware.go - Middleware-Funktionen fuer den HTTP-Router
// Enthaelt: isLocalIP(), allowedHost(), loopbackOnly(), requestHost(), allowedHostsMiddleware()

package server

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"os"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/attnviz/attnviz/logutil"
)

// localTLDs sind Endungen, die immer als lokaler Host gelten
var localTLDs = []string{
	"localhost",
	"local",
	"internal",
}

// isLocalIP prueft ob die IP-Adresse zu einem lokalen Interface gehoert
func isLocalIP(ip netip.Addr) bool {
	if interfaces, err := net.Interfaces(); err == nil {
		for _, iface := range interfaces {
			addrs, err := iface.Addrs()
			if err != nil {
				continue
			}

			for _, a := range addrs {
				if prefix, err := netip.ParsePrefix(a.String()); err == nil && prefix.Addr().Unmap() == ip.Unmap() {
					return true
				}
			}
		}
	}

	return false
}

// allowedHost prueft, ob ein Hostname auf diese Maschine zeigt
func allowedHost(host string) bool {
	host = strings.ToLower(host)

	switch host {
	case "", "localhost":
		return true
	}

	if hostname, err := os.Hostname(); err == nil && host == strings.ToLower(hostname) {
		return true
	}

	return slices.ContainsFunc(localTLDs, func(tld string) bool {
		return strings.HasSuffix(host, "."+tld)
	})
}

// loopbackOnly meldet, ob der Listener nur lokal erreichbar ist.
// Unbekannte Adressformate werden wie Loopback behandelt.
func loopbackOnly(addr net.Addr) bool {
	if addr == nil {
		return false
	}

	ap, err := netip.ParseAddrPort(addr.String())
	return err != nil || ap.Addr().IsLoopback()
}

// requestHost liefert den Host-Header ohne Port und Klammern
func requestHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		host = r.Host
	}
	return strings.Trim(host, "[]")
}

// allowedHostsMiddleware blockiert Anfragen an fremde Hostnamen, solange der
// Server nur auf Loopback lauscht (Schutz gegen DNS-Rebinding)
func allowedHostsMiddleware(addr net.Addr) gin.HandlerFunc {
	if !loopbackOnly(addr) {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		host := requestHost(c.Request)

		if ip, err := netip.ParseAddr(host); err == nil {
			if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || isLocalIP(ip) {
				c.Next()
				return
			}
		} else if allowedHost(host) {
			// Preflight direkt beantworten
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}

			c.Next()
			return
		}

		logutil.Trace("rejected request for foreign host", "host", host, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("host %q is not allowed", host)})
	}
}
