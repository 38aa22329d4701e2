package icons

import _ "embed"

//go:embed embedded/hicolor/index.theme
var hicolorIndexData []byte

// LoadHicolorTheme returns the bundled hicolor theme index, guaranteed
// resolvable even if no package in the archive ships its own copy
// (spec §4.5: "The hicolor theme index is shipped bundled to guarantee
// its presence").
func LoadHicolorTheme() (*ThemeIndex, error) {
	return ParseThemeIndex(hicolorIndexData)
}
