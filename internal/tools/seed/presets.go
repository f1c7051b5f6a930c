package seed

// Preset names a dataset size.
type Preset string

const (
	// PresetDemo is a small dataset for trying the tools by hand.
	PresetDemo Preset = "demo"

	// PresetStress is a large dataset for timing the reports.
	PresetStress Preset = "stress"
)

// PresetConfig holds the row counts for a preset.
type PresetConfig struct {
	Salesmen     int
	Customers    int
	Plans        int
	Transactions int
}

// GetPresetConfig returns the configuration for a preset. Unknown presets
// report false.
func GetPresetConfig(preset Preset) (PresetConfig, bool) {
	switch preset {
	case PresetDemo:
		return PresetConfig{
			Salesmen:     8,
			Customers:    25,
			Plans:        150,
			Transactions: 300,
		}, true
	case PresetStress:
		return PresetConfig{
			Salesmen:     60,
			Customers:    2000,
			Plans:        20000,
			Transactions: 50000,
		}, true
	default:
		return PresetConfig{}, false
	}
}
