// Package economy holds player resources: money, energy, decks and hands.
package economy

// Purse tracks a player's money and energy.
//
// Energy is the amount still available after upkeep of active buildings;
// TotalEnergy is the gross generation of those buildings. Energy may go
// negative transiently until upkeep deactivates consumers.
type Purse struct {
	Money       int
	Energy      int
	TotalEnergy int
}

// NewPurse creates a purse with starting resources.
func NewPurse(money, energy int) *Purse {
	return &Purse{Money: money, Energy: energy, TotalEnergy: energy}
}

// CanAfford reports whether cost can be paid from money.
func (p *Purse) CanAfford(cost int) bool {
	return cost <= p.Money
}

// Spend pays cost from money. Returns false and leaves the purse untouched
// when it cannot be afforded.
func (p *Purse) Spend(cost int) bool {
	if !p.CanAfford(cost) {
		return false
	}
	p.Money -= cost
	return true
}

// AddMoney adds (or removes, when negative) money.
func (p *Purse) AddMoney(amount int) {
	p.Money += amount
}

// CanPower reports whether a building with the given upkeep can be switched on.
func (p *Purse) CanPower(upkeep int) bool {
	return upkeep <= p.Energy
}

// Power applies the energy deltas of switching a building on.
func (p *Purse) Power(upkeep, generation int) {
	p.Energy += generation - upkeep
	p.TotalEnergy += generation
}

// Unpower reverses Power.
func (p *Purse) Unpower(upkeep, generation int) {
	p.Energy -= generation - upkeep
	p.TotalEnergy -= generation
}

// Deficit reports whether available energy is negative.
func (p *Purse) Deficit() bool {
	return p.Energy < 0
}
