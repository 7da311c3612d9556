package actor

import (
	"maps"
	"slices"

	"github.com/nomis52/turnact/activity"
)

// ActivityOutOfBounds reports whether the activity's target is outside the
// loaded region. Without an environment everything is in bounds.
func (c *Character) ActivityOutOfBounds(inst *activity.Instance) bool {
	if c.env == nil {
		return false
	}
	return c.env.TargetOutOfBounds(inst)
}

// RefuelFire feeds a fire next to the character.
func (c *Character) RefuelFire(*activity.Instance) {
	if c.env == nil {
		return
	}
	if c.env.RefuelFire(c.position) {
		c.logger.Debug("refuelled fire", "at", c.position.String())
	}
}

// DropInvalidInventory drops the most recently picked up items until the
// carried weight is within the limit. A zero limit means unlimited.
func (c *Character) DropInvalidInventory() {
	if c.carryLimit <= 0 {
		return
	}
	var dropped []Item
	for len(c.inventory) > 0 && c.carriedWeight() > c.carryLimit {
		last := len(c.inventory) - 1
		dropped = append(dropped, c.inventory[last])
		c.inventory = c.inventory[:last]
	}
	if len(dropped) == 0 {
		return
	}
	c.logger.Debug("dropped overflow items", "count", len(dropped))
	if c.env != nil {
		c.env.DropItems(c.position, dropped)
	}
}

func (c *Character) carriedWeight() int {
	total := 0
	for _, it := range c.inventory {
		total += it.Weight
	}
	return total
}

// AddItem puts it in the inventory without checking the carry limit.
func (c *Character) AddItem(it Item) {
	c.inventory = append(c.inventory, it)
}

// Inventory returns a copy of the carried items.
func (c *Character) Inventory() []Item {
	return append([]Item(nil), c.inventory...)
}

// SetSkill records the character's progress in a skill.
func (c *Character) SetSkill(skill string, p activity.SkillProgress) {
	c.skills[skill] = p
}

// Identify marks a book type as known.
func (c *Character) Identify(typeID string) {
	c.identified[typeID] = true
}

// Skills returns a copy of the character's skill standings.
func (c *Character) Skills() map[string]activity.SkillProgress {
	return maps.Clone(c.skills)
}

// Identified returns the known book types, sorted.
func (c *Character) Identified() []string {
	return slices.Sorted(maps.Keys(c.identified))
}

func (c *Character) item(t activity.Target) (Item, bool) {
	for _, it := range c.inventory {
		if it.ID == t.ID {
			return it, true
		}
	}
	return Item{}, false
}

// ItemName returns the display name of a carried target.
func (c *Character) ItemName(t activity.Target) (string, bool) {
	it, ok := c.item(t)
	if !ok {
		return "", false
	}
	return it.Name, true
}

// Book returns the book details of a carried target.
func (c *Character) Book(t activity.Target) (activity.Book, bool) {
	it, ok := c.item(t)
	if !ok || it.Book == nil {
		return activity.Book{}, false
	}
	return *it.Book, true
}

func (c *Character) Skill(skill string) activity.SkillProgress {
	return c.skills[skill]
}

func (c *Character) HasIdentified(typeID string) bool {
	return c.identified[typeID]
}

// ConstructionCounter reads the progress of the construction at a site.
func (c *Character) ConstructionCounter(at activity.Point) (int, bool) {
	if c.env == nil {
		return 0, false
	}
	return c.env.ConstructionCounter(at)
}
