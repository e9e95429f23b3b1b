package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ColorScheme is the palette handed to the rendering layer. It travels
// by value; nothing in this package mutates shared state after load.
type ColorScheme struct {
	Background       string `mapstructure:"background"`
	Primary          string `mapstructure:"primary"`
	Secondary        string `mapstructure:"secondary"`
	Contour          string `mapstructure:"contour"`
	HighlightContour string `mapstructure:"highlight_contour"`
	Grid             string `mapstructure:"grid"`
	ScanLine         string `mapstructure:"scan_line"`
	Cross            string `mapstructure:"cross"`
	Corner           string `mapstructure:"corner"`
	Colormap         string `mapstructure:"colormap"`
}

// MapScale ties grid samples to physical terrain dimensions. The decoder
// never produces this; it comes from configuration alone.
type MapScale struct {
	WidthKm        float64 `mapstructure:"width_km"`
	HeightKm       float64 `mapstructure:"height_km"`
	MaxElevationKm float64 `mapstructure:"max_elevation_km"`
}

// DefaultColorScheme is the cyan-on-black default theme.
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Background:       "#000000",
		Primary:          "#00FFFF",
		Secondary:        "#FF7F00",
		Contour:          "#00FFFF",
		HighlightContour: "#FFFFFF",
		Grid:             "#0000FF",
		ScanLine:         "#00FFFF",
		Cross:            "#00FFFF",
		Corner:           "#00FFFF",
		Colormap:         "plasma",
	}
}

// DefaultMapScale matches the terrain exports this tool was built
// around.
func DefaultMapScale() MapScale {
	return MapScale{
		WidthKm:        10.61,
		HeightKm:       10.61,
		MaxElevationKm: 1.33,
	}
}

// Load resolves the color scheme and map scale from v, starting from the
// defaults and applying any "scheme" and "scale" overrides found in the
// config file.
func Load(v *viper.Viper) (ColorScheme, MapScale, error) {
	scheme := DefaultColorScheme()
	scale := MapScale{}

	if err := v.UnmarshalKey("scheme", &scheme); err != nil {
		return ColorScheme{}, MapScale{}, fmt.Errorf("reading scheme config: %w", err)
	}
	if err := v.UnmarshalKey("scale", &scale); err != nil {
		return ColorScheme{}, MapScale{}, fmt.Errorf("reading scale config: %w", err)
	}
	if scale == (MapScale{}) {
		scale = DefaultMapScale()
	}
	return scheme, scale, nil
}
