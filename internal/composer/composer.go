// Package composer assembles retrieved and adapted content into the final
// structured document handed to the rendering boundary. It performs no I/O
// and is deterministic for a given set of inputs.
package composer

import (
	"fmt"
	"strings"

	"github.com/jonathan/cv-tailor/internal/types"
)

// Line-estimation parameters. The estimate is intentionally coarse: it only
// has to make budget truncation deterministic and roughly page-accurate.
const (
	linesPerPage = 45
	charsPerLine = 90
)

// Bullet caps per document kind.
const (
	bulletsPerExperienceCV     = 4
	bulletsPerExperienceLetter = 2
)

// Fixed line costs for non-variable sections.
const (
	headerLines        = 4
	educationLinesEach = 2
	experienceHeading  = 2
	greetingLines      = 2
)

// Compose merges profile, signal, ranking, and adapted content into a
// ComposedDocument for the given kind, honoring the kind's page budget.
func Compose(
	profile *types.ProfessionalProfile,
	signal *types.JobSignal,
	ranked []types.RankedExperience,
	adapted types.AdaptedContent,
	facts *types.CompanyFacts,
	kind types.DocumentKind,
) *types.ComposedDocument {
	doc := &types.ComposedDocument{
		Kind:       kind,
		Language:   signal.Language,
		Header:     header(profile),
		PageBudget: kind.PageBudget(),
	}

	if kind == types.KindCoverLetter {
		composeLetter(doc, profile, signal, ranked, adapted, facts)
	} else {
		composeCV(doc, profile, ranked, adapted)
	}
	return doc
}

func header(profile *types.ProfessionalProfile) types.DocumentHeader {
	info := profile.PersonalInfo
	return types.DocumentHeader{
		Name:     info.Name,
		Title:    info.Title,
		Email:    info.Email,
		Phone:    info.Phone,
		Location: info.Location,
		Website:  info.Website,
		LinkedIn: info.LinkedIn,
		GitHub:   info.GitHub,
	}
}

// composeCV fills summary, experience, skills, and education sections,
// truncating the experience list greedily against the page budget.
func composeCV(doc *types.ComposedDocument, profile *types.ProfessionalProfile, ranked []types.RankedExperience, adapted types.AdaptedContent) {
	doc.Summary = adapted.Get(types.SlotSummary, profile.Summary.Short)
	doc.SkillGroups = skillGroups(profile, adapted)
	doc.Education = profile.Education

	budget := doc.PageBudget * linesPerPage
	used := headerLines +
		estimateLines(doc.Summary) + 1 +
		len(doc.SkillGroups) + 1 +
		len(doc.Education)*educationLinesEach

	for _, entry := range ranked {
		bullets := experienceBullets(&entry.Experience, adapted, bulletsPerExperienceCV)
		cost := experienceHeading
		for _, bullet := range bullets {
			cost += estimateLines(bullet)
		}
		if used+cost > budget {
			break
		}
		used += cost
		doc.Experiences = append(doc.Experiences, types.ComposedExperience{
			Role:         adapted.Get(types.RoleSlot(entry.Experience.ID), entry.Experience.Role),
			Company:      entry.Experience.Company,
			Period:       period(&entry.Experience),
			Bullets:      bullets,
			Technologies: entry.MatchedTechnologies,
		})
	}
	doc.EstimatedLines = used
}

// composeLetter fills greeting, opening hook, experience highlights, and
// closing, truncating highlights greedily against the one-page budget.
func composeLetter(doc *types.ComposedDocument, profile *types.ProfessionalProfile, signal *types.JobSignal, ranked []types.RankedExperience, adapted types.AdaptedContent, facts *types.CompanyFacts) {
	letter := &types.LetterBody{
		Greeting: greeting(signal),
	}

	body, bodyAdapted := adapted[types.SlotLetterBody]
	paragraphs := splitParagraphs(body.Text)
	if bodyAdapted && body.Adapted && len(paragraphs) >= 2 {
		letter.Opening = paragraphs[0]
		letter.Closing = paragraphs[len(paragraphs)-1]
	} else {
		letter.Opening = openingFallback(profile, facts)
		letter.Closing = closingLine(signal.Language)
	}

	budget := doc.PageBudget * linesPerPage
	used := greetingLines + estimateLines(letter.Opening) + 1 + estimateLines(letter.Closing) + 1

	for _, entry := range ranked {
		highlight := highlightText(&entry.Experience, adapted)
		cost := estimateLines(highlight) + 1
		if used+cost > budget {
			break
		}
		used += cost
		letter.Highlights = append(letter.Highlights, highlight)
		doc.Experiences = append(doc.Experiences, types.ComposedExperience{
			Role:    entry.Experience.Role,
			Company: entry.Experience.Company,
			Period:  period(&entry.Experience),
			Bullets: experienceBullets(&entry.Experience, adapted, bulletsPerExperienceLetter),
		})
	}

	doc.Letter = letter
	doc.EstimatedLines = used
}

// skillGroups returns the adapted skill ordering when available, otherwise
// the profile's groups unchanged.
func skillGroups(profile *types.ProfessionalProfile, adapted types.AdaptedContent) []types.SkillGroup {
	entry, ok := adapted[types.SlotSkills]
	if !ok || !entry.Adapted {
		return profile.SkillGroups
	}

	var groups []types.SkillGroup
	for _, line := range strings.Split(entry.Text, "\n") {
		category, items, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		group := types.SkillGroup{Category: strings.TrimSpace(category)}
		for _, item := range strings.Split(items, ",") {
			if item = strings.TrimSpace(item); item != "" {
				group.Items = append(group.Items, item)
			}
		}
		if len(group.Items) > 0 {
			groups = append(groups, group)
		}
	}
	if len(groups) == 0 {
		return profile.SkillGroups
	}
	return groups
}

// experienceBullets returns the slot's adapted bullets, falling back to the
// experience's original achievements. At most limit bullets, never split
// mid-bullet.
func experienceBullets(exp *types.Experience, adapted types.AdaptedContent, limit int) []string {
	var bullets []string
	if entry, ok := adapted[types.BulletsSlot(exp.ID)]; ok && entry.Text != "" {
		bullets = parseBullets(entry.Text)
	}
	if len(bullets) == 0 {
		bullets = exp.Achievements
	}
	if len(bullets) > limit {
		bullets = bullets[:limit]
	}
	return bullets
}

// parseBullets splits adapted bullet text into individual entries.
func parseBullets(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "• ")
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	return bullets
}

func highlightText(exp *types.Experience, adapted types.AdaptedContent) string {
	bullets := experienceBullets(exp, adapted, 1)
	lead := exp.Role
	if exp.Company != "" {
		lead = fmt.Sprintf("%s, %s", exp.Role, exp.Company)
	}
	if len(bullets) == 0 {
		return lead
	}
	return fmt.Sprintf("%s: %s", lead, bullets[0])
}

func greeting(signal *types.JobSignal) string {
	if signal.Language == types.LanguageSpanish {
		if signal.Company != "" {
			return fmt.Sprintf("Estimado equipo de %s:", signal.Company)
		}
		return "Estimado equipo de selección:"
	}
	if signal.Company != "" {
		return fmt.Sprintf("Dear %s team,", signal.Company)
	}
	return "Dear Hiring Team,"
}

// openingFallback derives an opening hook strictly from profile content,
// flavored by the company name when research produced one.
func openingFallback(profile *types.ProfessionalProfile, facts *types.CompanyFacts) string {
	opening := profile.Summary.Short
	if !facts.Empty() && facts.Company != "" {
		opening = fmt.Sprintf("%s I am writing to apply to %s.", opening, facts.Company)
	}
	return opening
}

func closingLine(language types.Language) string {
	if language == types.LanguageSpanish {
		return "Quedo a su disposición para ampliar cualquier detalle en una entrevista."
	}
	return "I would welcome the opportunity to discuss my experience in more detail."
}

func period(exp *types.Experience) string {
	if exp.EndDate == "" {
		if exp.StartDate == "" {
			return ""
		}
		return exp.StartDate + " - present"
	}
	return exp.StartDate + " - " + exp.EndDate
}

// estimateLines approximates rendered line count from character length.
func estimateLines(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	lines := 0
	for _, line := range strings.Split(text, "\n") {
		n := len(strings.TrimSpace(line))
		if n == 0 {
			continue
		}
		lines += (n + charsPerLine - 1) / charsPerLine
	}
	if lines == 0 {
		lines = 1
	}
	return lines
}

// splitParagraphs splits text into trimmed non-empty paragraphs.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}
