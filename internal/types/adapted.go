//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// Well-known content slot identifiers. A slot is a named unit of content
// eligible for independent LLM adaptation and caching.
const (
	SlotSummary    = "summary"
	SlotSkills     = "skills"
	SlotLetterBody = "letter:body"
)

// BulletsSlot returns the slot identifier for an experience's bullets.
func BulletsSlot(experienceID string) string {
	return fmt.Sprintf("position:%s:bullets", experienceID)
}

// RoleSlot returns the slot identifier for an experience's role translation.
func RoleSlot(experienceID string) string {
	return fmt.Sprintf("role:%s", experienceID)
}

// AdaptedText is the outcome of one slot adaptation. When the adaptation
// call failed, Text holds the original source text and Adapted is false.
type AdaptedText struct {
	Text    string `json:"text"`
	Adapted bool   `json:"adapted"`
}

// AdaptedContent maps slot identifiers to their adapted (or fallback) text.
type AdaptedContent map[string]AdaptedText

// Get returns the slot's text, or fallback when the slot is absent.
func (c AdaptedContent) Get(slot, fallback string) string {
	if entry, ok := c[slot]; ok && entry.Text != "" {
		return entry.Text
	}
	return fallback
}
