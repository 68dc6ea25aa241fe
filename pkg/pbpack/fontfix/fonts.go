package fontfix

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SnowyFontResourceIDs lists the 1-based identifiers of the font resources
// in the snowy platform system pack, from resource_ids.auto.h. This is the
// default replacement set; it is fixed and never derived from pack contents.
var SnowyFontResourceIDs = []ResourceID{
	7,                          // GOTHIC_18_BOLD
	32, 33, 34, 35, 36, 37, 38, // GOTHIC_09 through GOTHIC_18_EMOJI
	39, 40, 41, 42, 43, 44, 45, 46, // GOTHIC_24 through GOTHIC_36_BOLD
	47, 48, 49, 50, 51, 52, 53, // BITHAM fonts
	56, 57, 58, 59, 60, 61, 62, 63, // DROID_SERIF and LECO fonts
	477,                                    // FONT_FALLBACK_INTERNAL
	488, 489, 490, 491, 492, 493, 494, 495, // GOTHIC_EXTENDED fonts
}

type resourceIDFile struct {
	Fonts []ResourceID `yaml:"fonts"`
}

// LoadResourceIDs reads a replacement identifier list from a YAML file with
// a top-level "fonts" sequence of 1-based resource identifiers.
func LoadResourceIDs(path string) ([]ResourceID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f resourceIDFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse resource id list %s: %w", path, err)
	}
	if len(f.Fonts) == 0 {
		return nil, fmt.Errorf("resource id list %s names no fonts", path)
	}
	return f.Fonts, nil
}
