package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/fourfront/fourfront-server/internal/game/effects"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
	"github.com/fourfront/fourfront-server/internal/game/values"
)

//go:embed data/*.json
var builtin embed.FS

const (
	unitsFile     = "units.json"
	buildingsFile = "buildings.json"
	cardsFile     = "cards.json"
)

// LoadBuiltin loads the catalog compiled into the binary.
func LoadBuiltin() (*Catalog, error) {
	sub, err := fs.Sub(builtin, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads units.json, buildings.json and cards.json from dir.
func LoadDir(dir string) (*Catalog, error) {
	return Load(os.DirFS(dir))
}

// Load reads the three template files from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	read := func(name string) ([]byte, error) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	units, err := read(unitsFile)
	if err != nil {
		return nil, err
	}
	buildings, err := read(buildingsFile)
	if err != nil {
		return nil, err
	}
	cards, err := read(cardsFile)
	if err != nil {
		return nil, err
	}
	return Parse(units, buildings, cards)
}

type abilityRecord struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Uses        int                `json:"uses"`
	Targets     []targeting.Target `json:"targets"`
	Effects     []map[string]any   `json:"effects"`
}

type statsRecord struct {
	Name        string          `json:"name"`
	Faction     Faction         `json:"faction"`
	Description string          `json:"description"`
	MaxHealth   int             `json:"maxHealth"`
	Damage      int             `json:"damage"`
	Splash      int             `json:"splash"`
	Range       int             `json:"range"`
	Attributes  []string        `json:"attributes"`
	Passives    []string        `json:"passives"`
	Actives     []abilityRecord `json:"actives"`
}

type unitRecord struct {
	statsRecord `json:",squash"`
	Speed       int `json:"speed"`
}

type buildingRecord struct {
	statsRecord `json:",squash"`
	Size        int `json:"size"`
	Upkeep      int `json:"upkeep"`
	MoneyGen    int `json:"moneyGen"`
	EnergyGen   int `json:"energyGen"`
	BuildTime   int `json:"buildTime"`
}

type cardRecord struct {
	Name        string             `json:"name"`
	Faction     Faction            `json:"faction"`
	CardType    CardType           `json:"cardType"`
	Description string             `json:"description"`
	Cost        int                `json:"cost"`
	Targets     []targeting.Target `json:"targets"`
	Effects     []map[string]any   `json:"effects"`
	Modifiers   map[string]any     `json:"modifiers"`
}

// Parse builds a catalog from the raw JSON of the three template files.
// Defaults are filled in, every record is decoded into its typed template
// and cross references are checked.
func Parse(unitsJSON, buildingsJSON, cardsJSON []byte) (*Catalog, error) {
	var rawUnits, rawBuildings, rawCards map[string]map[string]any
	if err := json.Unmarshal(unitsJSON, &rawUnits); err != nil {
		return nil, fmt.Errorf("parse %s: %w", unitsFile, err)
	}
	if err := json.Unmarshal(buildingsJSON, &rawBuildings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", buildingsFile, err)
	}
	if err := json.Unmarshal(cardsJSON, &rawCards); err != nil {
		return nil, fmt.Errorf("parse %s: %w", cardsFile, err)
	}

	cat := &Catalog{
		Units:     make(map[string]*Unit, len(rawUnits)),
		Buildings: make(map[string]*Building, len(rawBuildings)),
		Cards:     make(map[string]*Card, len(rawCards)),
	}

	for _, id := range sortedKeys(rawUnits) {
		var rec unitRecord
		if err := decodeWithDefaults(rawUnits[id], unitDefaults, &rec); err != nil {
			return nil, fmt.Errorf("unit %s: %w", id, err)
		}
		stats, err := rec.statsRecord.build(id)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", id, err)
		}
		if rec.Speed < 0 {
			return nil, fmt.Errorf("unit %s: negative speed", id)
		}
		cat.Units[id] = &Unit{Stats: stats, Speed: rec.Speed}
	}

	for _, id := range sortedKeys(rawBuildings) {
		var rec buildingRecord
		if err := decodeWithDefaults(rawBuildings[id], buildingDefaults, &rec); err != nil {
			return nil, fmt.Errorf("building %s: %w", id, err)
		}
		stats, err := rec.statsRecord.build(id)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", id, err)
		}
		if rec.Size < 1 || rec.BuildTime < 0 || rec.Upkeep < 0 {
			return nil, fmt.Errorf("building %s: size must be positive and buildTime, upkeep non-negative", id)
		}
		cat.Buildings[id] = &Building{
			Stats:     stats,
			Size:      rec.Size,
			Upkeep:    rec.Upkeep,
			MoneyGen:  rec.MoneyGen,
			EnergyGen: rec.EnergyGen,
			BuildTime: rec.BuildTime,
		}
	}

	for _, id := range sortedKeys(rawCards) {
		raw, err := cat.spawnCardDefaults(id, rawCards[id])
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", id, err)
		}
		var rec cardRecord
		if err := decodeWithDefaults(raw, cardDefaults, &rec); err != nil {
			return nil, fmt.Errorf("card %s: %w", id, err)
		}
		card, err := rec.build(id)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", id, err)
		}
		cat.Cards[id] = card
	}

	if err := cat.checkSpawnReferences(); err != nil {
		return nil, err
	}
	return cat, nil
}

func decodeWithDefaults(raw, defaults map[string]any, out any) error {
	filled, err := ApplyDefaults(raw, defaults)
	if err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if err := values.Decode(filled, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// spawnCardDefaults fills name, faction, targets and effects of unit and
// building cards from the template sharing the card's id.
func (c *Catalog) spawnCardDefaults(id string, raw map[string]any) (map[string]any, error) {
	out := values.CopyMap(raw)
	kind, _ := out["cardType"].(string)

	var (
		name     string
		faction  Faction
		property map[string]any
	)
	switch CardType(kind) {
	case CardUnit:
		u, ok := c.Units[id]
		if !ok {
			return nil, fmt.Errorf("no unit template %q", id)
		}
		name, faction = u.Name, u.Faction
		property = map[string]any{string(targeting.PropSpawnable): true}
	case CardBuilding:
		b, ok := c.Buildings[id]
		if !ok {
			return nil, fmt.Errorf("no building template %q", id)
		}
		name, faction = b.Name, b.Faction
		property = map[string]any{string(targeting.PropBuildable): b.Size}
	default:
		return out, nil
	}

	if _, ok := out["name"]; !ok {
		out["name"] = name
	}
	if _, ok := out["faction"]; !ok {
		out["faction"] = string(faction)
	}
	if _, ok := out["effects"]; !ok {
		out["effects"] = []any{map[string]any{
			"effect": string(effects.KindSpawn),
			"type":   kind,
			"id":     id,
			"loc":    "$loc",
		}}
	}
	if _, ok := out["targets"]; !ok {
		out["targets"] = []any{map[string]any{
			"name":       "$loc",
			"type":       string(targeting.TargetTypeTile),
			"properties": property,
		}}
	}
	return out, nil
}

func (r statsRecord) build(id string) (Stats, error) {
	if r.Name == "" {
		return Stats{}, fmt.Errorf("missing name")
	}
	if !r.Faction.valid() {
		return Stats{}, fmt.Errorf("unknown faction %q", r.Faction)
	}
	if r.MaxHealth <= 0 {
		return Stats{}, fmt.Errorf("maxHealth must be positive")
	}
	if r.Damage < 0 || r.Splash < 0 || r.Range < 0 {
		return Stats{}, fmt.Errorf("damage, splash and range must be non-negative")
	}
	actives := make([]Ability, len(r.Actives))
	for i, a := range r.Actives {
		ability, err := a.build()
		if err != nil {
			return Stats{}, fmt.Errorf("active %d: %w", i, err)
		}
		actives[i] = ability
	}
	return Stats{
		ID:          id,
		Name:        r.Name,
		Faction:     r.Faction,
		Description: r.Description,
		MaxHealth:   r.MaxHealth,
		Damage:      r.Damage,
		Splash:      r.Splash,
		Range:       r.Range,
		Attributes:  r.Attributes,
		Passives:    r.Passives,
		Actives:     actives,
	}, nil
}

func (r abilityRecord) build() (Ability, error) {
	if r.Uses < 0 {
		return Ability{}, fmt.Errorf("negative uses")
	}
	list, err := buildEffects(r.Targets, r.Effects)
	if err != nil {
		return Ability{}, err
	}
	return Ability{
		Name:        r.Name,
		Description: r.Description,
		Uses:        r.Uses,
		Targets:     r.Targets,
		Effects:     list,
	}, nil
}

func (r cardRecord) build(id string) (*Card, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if !r.Faction.valid() {
		return nil, fmt.Errorf("unknown faction %q", r.Faction)
	}
	switch r.CardType {
	case CardUnit, CardBuilding, CardOther:
	default:
		return nil, fmt.Errorf("unknown card type %q", r.CardType)
	}
	if r.Cost < 0 {
		return nil, fmt.Errorf("negative cost")
	}
	list, err := buildEffects(r.Targets, r.Effects)
	if err != nil {
		return nil, err
	}
	return &Card{
		ID:          id,
		Name:        r.Name,
		Faction:     r.Faction,
		Type:        r.CardType,
		Description: r.Description,
		Cost:        r.Cost,
		Targets:     r.Targets,
		Effects:     list,
		Modifiers:   r.Modifiers,
	}, nil
}

func buildEffects(targets []targeting.Target, raw []map[string]any) ([]effects.Effect, error) {
	declared := make(map[string]bool, len(targets))
	for _, t := range targets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if declared[t.Name] {
			return nil, fmt.Errorf("duplicate target %s", t.Name)
		}
		declared[t.Name] = true
	}
	list := make([]effects.Effect, len(raw))
	for i, m := range raw {
		e, err := effects.FromMap(m)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		if err := e.Validate(declared); err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		list[i] = e
	}
	return list, nil
}

// checkSpawnReferences makes sure every spawn effect names a known template.
func (c *Catalog) checkSpawnReferences() error {
	check := func(owner string, list []effects.Effect) error {
		for _, e := range list {
			if e.Kind != effects.KindSpawn {
				continue
			}
			id, _ := e.Params["id"].(string)
			switch effects.SpawnType(fmt.Sprint(e.Params["type"])) {
			case effects.SpawnUnit:
				if _, ok := c.Units[id]; !ok {
					return fmt.Errorf("%s: spawn of unknown unit %q", owner, id)
				}
			case effects.SpawnBuilding:
				if _, ok := c.Buildings[id]; !ok {
					return fmt.Errorf("%s: spawn of unknown building %q", owner, id)
				}
			default:
				return fmt.Errorf("%s: spawn type must be U or B, got %v", owner, e.Params["type"])
			}
		}
		return nil
	}
	for _, id := range sortedKeys(c.Cards) {
		if err := check("card "+id, c.Cards[id].Effects); err != nil {
			return err
		}
	}
	for _, id := range sortedKeys(c.Units) {
		for _, a := range c.Units[id].Actives {
			if err := check("unit "+id, a.Effects); err != nil {
				return err
			}
		}
	}
	for _, id := range sortedKeys(c.Buildings) {
		for _, a := range c.Buildings[id].Actives {
			if err := check("building "+id, a.Effects); err != nil {
				return err
			}
		}
	}
	return nil
}
