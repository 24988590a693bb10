// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - BoolWithDefault/Bool: Boolean-Getter mit Default-Wert
// - String: String-Getter
// - Uint/Uint64/Float: Zahlen-Getter mit Default-Wert
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"strconv"
)

// =============================================================================
// Boolean-Getter
// =============================================================================

// BoolWithDefault gibt eine Funktion zurueck, die einen Bool mit Default-Wert liest
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// =============================================================================
// String-Getter
// =============================================================================

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// =============================================================================
// Zahlen-Getter
// =============================================================================

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Uint64 gibt eine Funktion zurueck, die einen uint64 mit Default-Wert liest
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// Float gibt eine Funktion zurueck, die einen float64 im Bereich [0, 1) liest
func Float(key string, defaultValue float64) func() float64 {
	return func() float64 {
		if s := Var(key); s != "" {
			if f, err := strconv.ParseFloat(s, 64); err != nil || f < 0 || f >= 1 {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return f
			}
		}
		return defaultValue
	}
}

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"ATTNVIZ_DEBUG":           {"ATTNVIZ_DEBUG", LogLevel(), "Show additional debug information (e.g. ATTNVIZ_DEBUG=1)"},
		"ATTNVIZ_HOST":            {"ATTNVIZ_HOST", Host(), "IP Address for the attnviz server (default 127.0.0.1:5000)"},
		"ATTNVIZ_ORIGINS":         {"ATTNVIZ_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"ATTNVIZ_D_MODEL":         {"ATTNVIZ_D_MODEL", DModel(), "Model width of the encoder layer (default: 64)"},
		"ATTNVIZ_NHEAD":           {"ATTNVIZ_NHEAD", NumHeads(), "Number of attention heads (default: 4)"},
		"ATTNVIZ_DIM_FEEDFORWARD": {"ATTNVIZ_DIM_FEEDFORWARD", DimFeedforward(), "Width of the feed-forward network (default: 128)"},
		"ATTNVIZ_DROPOUT":         {"ATTNVIZ_DROPOUT", Dropout(), "Dropout probability applied to attention weights (default: 0.1)"},
		"ATTNVIZ_SEED":            {"ATTNVIZ_SEED", Seed(), "Seed for the model weights, 0 picks one from the clock"},
		"ATTNVIZ_HEALTH_INTERVAL": {"ATTNVIZ_HEALTH_INTERVAL", HealthInterval(), "How often clients probe the server (default \"5s\")"},
		"ATTNVIZ_HISTORY":         {"ATTNVIZ_HISTORY", History(), "The path to the run history database"},
		"ATTNVIZ_NOHISTORY":       {"ATTNVIZ_NOHISTORY", NoHistory(), "Do not record processed inputs"},
	}
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
