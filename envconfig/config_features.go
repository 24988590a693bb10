// config_features.go - Modell-Dimensionen und Feature-Flags
//
// Dieses Modul enthaelt:
// - Dimensionen des Encoder-Layers (d_model, nhead, dim_feedforward)
// - Dropout und Seed fuer die Gewichte
// - Feature-Flags fuer die Run-History
// - zusaetzliche CORS-Origins
package envconfig

// =============================================================================
// Modell-Dimensionen
// =============================================================================

var (
	// DModel ist die Breite der Token-Repraesentation
	DModel = Uint("ATTNVIZ_D_MODEL", 64)

	// NumHeads ist die Anzahl der Attention-Heads
	NumHeads = Uint("ATTNVIZ_NHEAD", 4)

	// DimFeedforward ist die Breite des Feed-Forward-Netzes
	DimFeedforward = Uint("ATTNVIZ_DIM_FEEDFORWARD", 128)

	// Dropout ist die Dropout-Wahrscheinlichkeit auf den Attention-Gewichten
	Dropout = Float("ATTNVIZ_DROPOUT", 0.1)

	// Seed initialisiert die Gewichte; 0 = zeitbasiert
	Seed = Uint64("ATTNVIZ_SEED", 0)
)

// =============================================================================
// Feature-Flags
// =============================================================================

var (
	// NoHistory deaktiviert die Run-History
	NoHistory = Bool("ATTNVIZ_NOHISTORY")

	// HistoryPath ueberschreibt den Pfad der Run-History
	HistoryPath = String("ATTNVIZ_HISTORY")
)

// =============================================================================
// Server
// =============================================================================

var (
	// Origins sind zusaetzliche erlaubte Origins, komma-separiert
	Origins = String("ATTNVIZ_ORIGINS")
)
