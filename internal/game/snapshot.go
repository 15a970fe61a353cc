package game

import (
	"go.uber.org/zap"

	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/templates"
)

// UnitView is the client representation of a unit.
type UnitView struct {
	ID         EntityID `json:"id"`
	Template   string   `json:"template"`
	Name       string   `json:"name"`
	Owner      [2]int   `json:"owner"`
	Loc        [2]int   `json:"loc"`
	Health     int      `json:"health"`
	MaxHealth  int      `json:"maxHealth"`
	Damage     int      `json:"damage"`
	Splash     int      `json:"splash"`
	Range      int      `json:"range"`
	Speed      int      `json:"speed"`
	Moves      int      `json:"moves"`
	Steps      int      `json:"steps"`
	Attacks    int      `json:"attacks"`
	ActiveUses []int    `json:"activeUses"`
	Attributes []string `json:"attributes"`
}

// BuildingView is the client representation of a building.
type BuildingView struct {
	ID         EntityID `json:"id"`
	Template   string   `json:"template"`
	Name       string   `json:"name"`
	Owner      [2]int   `json:"owner"`
	Loc        [2]int   `json:"loc"`
	Size       int      `json:"size"`
	Health     int      `json:"health"`
	MaxHealth  int      `json:"maxHealth"`
	Damage     int      `json:"damage"`
	Splash     int      `json:"splash"`
	Range      int      `json:"range"`
	Attacks    int      `json:"attacks"`
	ActiveUses []int    `json:"activeUses"`
	Upkeep     int      `json:"upkeep"`
	MoneyGen   int      `json:"moneyGen"`
	EnergyGen  int      `json:"energyGen"`
	BuildTime  int      `json:"buildTime"`
	BuildLeft  int      `json:"buildLeft"`
	Active     bool     `json:"active"`
	HQ         bool     `json:"hq"`
}

// CardView is a card as its holder sees it.
type CardView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Faction     templates.Faction  `json:"faction"`
	Type        templates.CardType `json:"type"`
	Cost        int                `json:"cost"`
	Description string             `json:"description"`
	Modifiers   map[string]any     `json:"modifiers"`
}

// PlayerView is one seat's public state, plus the hand for its owner.
type PlayerView struct {
	ID          [2]int            `json:"id"`
	Name        string            `json:"name"`
	Faction     templates.Faction `json:"faction"`
	Money       int               `json:"money"`
	Energy      int               `json:"energy"`
	TotalEnergy int               `json:"totalEnergy"`
	Hand        []CardView        `json:"hand,omitempty"`
	HandSize    int               `json:"handSize"`
	DeckSize    int               `json:"deckSize"`
	Buildings   []EntityID        `json:"buildings"`
	Units       []EntityID        `json:"units"`
	Connected   bool              `json:"connected"`
	HasHQ       bool              `json:"hasHQ"`
	EndTurn     bool              `json:"endTurn"`
}

// Snapshot is a full view of the match for one client.
type Snapshot struct {
	FieldSize  int              `json:"fieldSize"`
	Turn       int              `json:"turn"`
	TurnNumber int              `json:"turnNumber"`
	Phase      string           `json:"phase"`
	Active     bool             `json:"active"`
	Winner     *int             `json:"winner,omitempty"`
	Players    [2][2]PlayerView `json:"players"`
	Buildings  []BuildingView   `json:"buildings"`
	Units      []UnitView       `json:"units"`
	Checksum   string           `json:"checksum,omitempty"`
}

func unitView(e *Entity) UnitView {
	v := UnitView{
		ID:         e.ID,
		Template:   e.Template,
		Name:       e.Name,
		Owner:      e.Owner.Pair(),
		Loc:        e.Loc.Pair(),
		Health:     e.Health,
		MaxHealth:  e.MaxHealth,
		Damage:     e.Damage,
		Splash:     e.Splash,
		Range:      e.Range,
		Attacks:    e.Attacks,
		ActiveUses: append([]int{}, e.ActiveUses...),
		Attributes: append([]string{}, e.Attributes...),
	}
	if u := e.Unit; u != nil {
		v.Speed, v.Moves, v.Steps = u.Speed, u.Moves, u.Steps
	}
	return v
}

func buildingView(e *Entity) BuildingView {
	v := BuildingView{
		ID:         e.ID,
		Template:   e.Template,
		Name:       e.Name,
		Owner:      e.Owner.Pair(),
		Loc:        e.Loc.Pair(),
		Size:       e.Size(),
		Health:     e.Health,
		MaxHealth:  e.MaxHealth,
		Damage:     e.Damage,
		Splash:     e.Splash,
		Range:      e.Range,
		Attacks:    e.Attacks,
		ActiveUses: append([]int{}, e.ActiveUses...),
	}
	if b := e.Building; b != nil {
		v.Upkeep, v.MoneyGen, v.EnergyGen = b.Upkeep, b.MoneyGen, b.EnergyGen
		v.BuildTime, v.BuildLeft = b.BuildTime, b.BuildLeft
		v.Active, v.HQ = b.Active, b.HQ
	}
	return v
}

func cardView(c *Card) CardView {
	t := c.Template
	return CardView{
		ID:          t.ID,
		Name:        t.Name,
		Faction:     t.Faction,
		Type:        t.Type,
		Cost:        t.Cost,
		Description: t.Description,
		Modifiers:   c.Modifiers.Map(),
	}
}

// ClientSnapshot renders the match for viewer. Only the viewer's own hand
// is included; everyone else's is reduced to its size. A nil viewer sees
// no hands at all. The checksum covers the public part only, so all four
// seats receive the same value for the same state.
func (s *State) ClientSnapshot(viewer *rules.PlayerID) Snapshot {
	public := s.snapshot(nil)
	sum, err := Checksum(public)
	if err != nil {
		s.logger.Error("snapshot checksum failed", zap.Error(err))
	}
	snap := public
	if viewer != nil && viewer.Valid() {
		snap = s.snapshot(viewer)
	}
	snap.Checksum = sum
	return snap
}

func (s *State) snapshot(viewer *rules.PlayerID) Snapshot {
	snap := Snapshot{
		FieldSize:  s.field.Size(),
		Turn:       int(s.turns.Team()),
		TurnNumber: s.turns.TurnNumber(),
		Phase:      s.turns.Phase().String(),
		Active:     s.active,
		Buildings:  make([]BuildingView, 0, len(s.buildings)),
		Units:      make([]UnitView, 0, len(s.units)),
	}
	if s.winner != nil {
		w := int(*s.winner)
		snap.Winner = &w
	}
	for _, id := range rules.AllPlayers() {
		p := s.player(id)
		v := PlayerView{
			ID:          id.Pair(),
			Name:        p.Name,
			Faction:     p.Faction,
			Money:       p.Purse.Money,
			Energy:      p.Purse.Energy,
			TotalEnergy: p.Purse.TotalEnergy,
			HandSize:    p.Hand.Len(),
			DeckSize:    p.Deck.Size(),
			Buildings:   append([]EntityID{}, p.Buildings...),
			Units:       append([]EntityID{}, p.Units...),
			Connected:   p.Connected,
			HasHQ:       p.HasHQ,
			EndTurn:     s.turns.Flagged(id),
		}
		if viewer != nil && *viewer == id {
			for _, c := range p.Hand.Items() {
				v.Hand = append(v.Hand, cardView(c))
			}
		}
		snap.Players[id.Team][id.Slot] = v
	}
	for _, id := range s.buildings {
		snap.Buildings = append(snap.Buildings, buildingView(s.entities[id]))
	}
	for _, id := range s.units {
		snap.Units = append(snap.Units, unitView(s.entities[id]))
	}
	return snap
}
