package events

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Categories maps upstream event-type codes to display names. The set is open:
// codes missing from the table still resolve through Name.
type Categories map[int]string

var defaultCategories = Categories{
	45:  "Flanke",
	46:  "Pass in Angriffsdrittel",
	47:  "Präziser Torwart-Sweeper",
	48:  "Präziser Abwurf (TW)",
	49:  "Präziser langer Ball",
	50:  "Tödlicher Pass",
	52:  "Kopfballduell verloren",
	79:  "Kopfballduell gewonnen",
	80:  "Abpraller-Vorlage",
	81:  "Abpraller-Vorlage",
	82:  "Eigentor erzwungen",
	83:  "Abgefälschte Vorlage",
	84:  "Lattentreffer-Vorlage",
	86:  "Bonus: Weitschuss",
	87:  "Elfmeter verwandelt",
	88:  "Elfmeter verschossen",
	89:  "Elfmeter verschossen",
	90:  "Elfmeter verschossen",
	91:  "Pfosten",
	92:  "Linker Pfosten",
	93:  "Rechter Pfosten",
	94:  "Rückpass-Foul (TW)",
	96:  "Große Chance kreiert",
	98:  "Große Chance kreiert",
	99:  "Große Chance kreiert",
	100: "Große Chance kreiert",
	101: "Große Chance kreiert",
	102: "Große Chance kreiert",
	103: "Große Chance vergeben",
	104: "Flanke geblockt",
	106: "Zweikampf verloren",
	107: "Auf der Linie geklärt",
	108: "Flanke nicht gefangen (TW)",
	109: "Gefährliches Spiel",
	110: "Flugparade (TW)",
	111: "Parade (TW)",
	112: "Flanke geblockt und Ballbesitz",
	113: "Geklärt",
	114: "Fehler vor Tor",
	115: "Fehler vor Schuss",
	116: "Falscher Einwurf",
	117: "Foul",
	118: "Foul im letzten Drittel",
	120: "Absichtliche Vorlage",
	121: "Flanke abgefangen (TW)",
	122: "Eins-gegen-Eins",
	123: "Handspiel",
	124: "Balleroberung",
	125: "Ball abgefangen",
	126: "Balleroberung im Strafraum",
	127: "Bonus: Letzter-Mann-Tackle",
	130: "Überrannt",
	131: "Eigentor",
	132: "Elfmeter verursacht",
	133: "Elfmeter gehalten (TW)",
	134: "Elfmeter herausgeholt",
	135: "Ball gefaustet (TW)",
	136: "Rote Karte",
	137: "Schuss gehalten (TW)",
	138: "Distanzschuss gehalten (TW)",
	139: "Gelb-Rote Karte",
	141: "6-Sekunden-Regel (TW)",
	142: "Im Stand gehalten (TW)",
	143: "Pass ins letzte Drittel",
	144: "Schuss-Vorlage",
	147: "Abseits",
	148: "Abseits",
	149: "Schuss aufs Tor",
	152: "Zweikampf gewonnen",
	153: "Ecke herausgeholt",
	154: "Tackle gewonnen",
	155: "Gelbe Karte",
	156: "Startelf",
	157: "Ballverlust",
	159: "Mannschaftstor",
	160: "Gegentor",
	165: "Spiel gewonnen",
	166: "Spiel verloren",
	167: "Bonus für gespielte Minuten",
	168: "Mannschaftstor",
	169: "Gegentor",
	170: "Mannschaftstor",
	171: "Gegentor",
	173: "Tor (TW)",
	174: "Tor (Mittelfeld)",
	175: "Tor (Verteidiger)",
	176: "Tor (Stürmer)",
	177: "Vorlage (TW)",
	178: "Vorlage (Verteidiger)",
	179: "Vorlage (Mittelfeld)",
	180: "Vorlage (Stürmer)",
	181: "Tor vorbereitet (TW)",
	182: "Tor vorbereitet (Verteidiger)",
	183: "Tor vorbereitet (Mittelfeld)",
	184: "Tor vorbereitet (Stürmer)",
	185: "Tor (Einwechselspieler)",
	186: "Vorlage (Einwechselspieler)",
	187: "Tor vorbereitet (Einwechselspieler)",
	188: "Zu Null (TW)",
	189: "Zu Null (Verteidiger)",
	190: "Zu Null (Mittelfeld)",
	191: "Zu Null (Stürmer)",
	194: "Große Chance gehalten (TW)",
	195: "Ball ungestört gesichert (TW)",
	196: "Ball unter Druck gesichert (TW)",
	197: "Schuss aufs Tor (knapp vorbei)",
	199: "Schuss aufs Tor (weit weg)",
	200: "Schuss aufs Tor (geblockt)",
	203: "Elfmeter gehalten (Elfmeterschießen)",
	204: "Elfmeter verschossen (Elfmeterschießen)",
	205: "Elfmeter verwandelt (Elfmeterschießen)",
	206: "Schuss geblockt",
	207: "Schuss geblockt",
	208: "Schuss geblockt",
	-1:  "Eingewechselt",
	-2:  "Ausgewechselt",
	-7:  "Auf Bank",
	-8:  "Von Anfang an gespielt",
	-10: "Erste Halbzeit des Spiels beendet",
	-17: "Zweite Halbzeit des Spiels beendet",
}

// DefaultCategories returns a copy of the built-in code table.
func DefaultCategories() Categories {
	out := make(Categories, len(defaultCategories))
	for code, name := range defaultCategories {
		out[code] = name
	}
	return out
}

// Name resolves code, synthesizing a placeholder for unknown codes.
func (c Categories) Name(code int) string {
	if name, ok := c[code]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Unknown Event (%d)", code)
}

type categoriesFile struct {
	Categories map[int]string `yaml:"categories"`
}

// LoadCategories merges the YAML table at path over the defaults.
// An empty path yields the defaults unchanged.
func LoadCategories(path string) (Categories, error) {
	cats := DefaultCategories()
	if path == "" {
		return cats, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse categories %s: %w", path, err)
	}
	for code, name := range file.Categories {
		if name == "" {
			delete(cats, code)
			continue
		}
		cats[code] = name
	}
	return cats, nil
}
