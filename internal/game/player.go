package game

import (
	"github.com/fourfront/fourfront-server/internal/game/economy"
	"github.com/fourfront/fourfront-server/internal/game/modifiers"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/templates"
)

// Card is a card instance. The template is shared; modifiers belong to
// this copy and travel with it between hand and deck.
type Card struct {
	Template  *templates.Card
	Modifiers *modifiers.Bag
}

func newCard(t *templates.Card) *Card {
	return &Card{Template: t, Modifiers: modifiers.New(t.Modifiers)}
}

// Player is one seat's resources and holdings.
type Player struct {
	ID      rules.PlayerID
	Name    string
	Faction templates.Faction

	Purse *economy.Purse
	Hand  *economy.Hand[*Card]
	Deck  *economy.Deck[*Card]

	// Buildings and Units list owned entities in spawn order.
	Buildings []EntityID
	Units     []EntityID

	Connected bool
	HasHQ     bool
}

// Active reports whether the player still takes part: connected and
// holding a headquarters.
func (p *Player) Active() bool {
	return p.Connected && p.HasHQ
}

// draw moves one card from deck to hand. A full hand sends the card back
// to the deck. Only the drawing player learns which card it was; the
// others see the new hand size.
func (s *State) draw(p *Player) *rules.Ledger {
	l := rules.NewLedger()
	card, ok := p.Deck.Draw()
	if !ok {
		return l
	}
	if !p.Hand.Add(card) {
		p.Deck.Return(card)
		return l
	}
	l.AddFiltered(rules.EventCardDraw,
		[]any{p.ID.Pair(), cardView(card)},
		[]any{p.ID.Pair(), p.Hand.Len()},
		func(q rules.PlayerID) bool { return q == p.ID },
	)
	return l
}

// discard returns the card at index to the bottom of the deck.
func (s *State) discard(p *Player, index int) *rules.Ledger {
	l := rules.NewLedger()
	card, ok := p.Hand.Remove(index)
	if !ok {
		return l
	}
	p.Deck.Return(card)
	l.Add(rules.EventDiscard, p.ID.Pair(), index)
	return l
}

func removeID(ids []EntityID, id EntityID) ([]EntityID, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}
