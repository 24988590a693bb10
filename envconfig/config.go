// config.go - Haupt-Konfigurationsfunktionen fuer attnviz
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (ATTNVIZ_HOST)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (ATTNVIZ_ORIGINS)
// - History: Gibt den Pfad der Run-History zurueck (ATTNVIZ_HISTORY)
// - HealthInterval: Intervall fuer den Health-Check (ATTNVIZ_HEALTH_INTERVAL)
// - LogLevel: Gibt Log-Level zurueck (ATTNVIZ_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Modell-Dimensionen und Feature-Flags
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Host gibt Scheme und Host zurueck
// Konfigurierbar via ATTNVIZ_HOST
// Default: http://127.0.0.1:5000
func Host() *url.URL {
	defaultPort := "5000"

	s := strings.TrimSpace(Var("ATTNVIZ_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// AllowedOrigins gibt erlaubte Origins zurueck
// Konfigurierbar via ATTNVIZ_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost
func AllowedOrigins() (origins []string) {
	if s := Origins(); s != "" {
		origins = strings.Split(s, ",")
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	origins = append(origins, "file://*")

	return origins
}

// History gibt den Pfad der SQLite Run-History zurueck
// Konfigurierbar via ATTNVIZ_HISTORY
// Default: $HOME/.attnviz/history.sqlite
func History() string {
	if s := HistoryPath(); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "attnviz", "history.sqlite")
	}

	return filepath.Join(home, ".attnviz", "history.sqlite")
}

// HealthInterval gibt das Intervall zwischen zwei Health-Checks zurueck
// Konfigurierbar via ATTNVIZ_HEALTH_INTERVAL (Dauer oder Sekunden)
// Werte <= 0 fallen auf den Default zurueck
// Default: 5 Sekunden
func HealthInterval() (interval time.Duration) {
	interval = 5 * time.Second
	if s := Var("ATTNVIZ_HEALTH_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			interval = d
		} else if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			interval = time.Duration(n) * time.Second
		}
	}

	if interval <= 0 {
		return 5 * time.Second
	}

	return interval
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via ATTNVIZ_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("ATTNVIZ_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
