package composer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-tailor/internal/types"
)

func testProfile() *types.ProfessionalProfile {
	return &types.ProfessionalProfile{
		PersonalInfo: types.PersonalInfo{
			Name:     "Jane Doe",
			Title:    "Software Engineer",
			Email:    "jane@example.com",
			Location: "Madrid",
		},
		Summary: types.ProfessionalSummary{
			Short:    "Backend engineer with ten years of experience building distributed systems.",
			Detailed: "Backend engineer with ten years of experience. Focused on Go services, data pipelines, and reliability work.",
		},
		SkillGroups: []types.SkillGroup{
			{Category: "Languages", Items: []string{"Go", "Python"}},
			{Category: "Infrastructure", Items: []string{"Kubernetes", "PostgreSQL"}},
		},
		Education: []types.Education{
			{Degree: "BSc Computer Science", Institution: "UPM", Period: "2010-2014"},
		},
	}
}

func testSignal() *types.JobSignal {
	return &types.JobSignal{
		Language:     types.LanguageEnglish,
		RoleTitle:    "Backend Engineer",
		Technologies: []string{"Go", "PostgreSQL"},
		Company:      "Acme",
	}
}

func rankedExperience(id, role string, score float64) types.RankedExperience {
	return types.RankedExperience{
		Experience: types.Experience{
			ID:           id,
			Company:      "PayCorp",
			Role:         role,
			StartDate:    "2019-01",
			EndDate:      "2023-06",
			Achievements: []string{"Shipped the payments platform", "Cut p99 latency in half"},
			Technologies: []string{"Go", "PostgreSQL"},
		},
		Score:               score,
		MatchedTechnologies: []string{"Go"},
	}
}

func TestCompose_CV(t *testing.T) {
	ranked := []types.RankedExperience{rankedExperience("payments", "Backend Engineer", 0.9)}
	adapted := types.AdaptedContent{
		types.SlotSummary: {Text: "Adapted summary targeting Acme.", Adapted: true},
		types.BulletsSlot("payments"): {
			Text:    "- Built the Go payments API\n- Scaled PostgreSQL ingestion",
			Adapted: true,
		},
	}

	doc := Compose(testProfile(), testSignal(), ranked, adapted, &types.CompanyFacts{}, types.KindCV)

	assert.Equal(t, types.KindCV, doc.Kind)
	assert.Equal(t, types.LanguageEnglish, doc.Language)
	assert.Equal(t, "Jane Doe", doc.Header.Name)
	assert.Equal(t, 2, doc.PageBudget)
	assert.Equal(t, "Adapted summary targeting Acme.", doc.Summary)
	assert.Nil(t, doc.Letter)

	require.Len(t, doc.Experiences, 1)
	exp := doc.Experiences[0]
	assert.Equal(t, "Backend Engineer", exp.Role)
	assert.Equal(t, "2019-01 - 2023-06", exp.Period)
	assert.Equal(t, []string{"Built the Go payments API", "Scaled PostgreSQL ingestion"}, exp.Bullets)
	assert.Equal(t, []string{"Go"}, exp.Technologies)
}

func TestCompose_CVFallsBackWithoutAdaptedContent(t *testing.T) {
	ranked := []types.RankedExperience{rankedExperience("payments", "Backend Engineer", 0.9)}

	doc := Compose(testProfile(), testSignal(), ranked, types.AdaptedContent{}, &types.CompanyFacts{}, types.KindCV)

	assert.Equal(t, testProfile().Summary.Short, doc.Summary)
	assert.Equal(t, testProfile().SkillGroups, doc.SkillGroups)
	require.Len(t, doc.Experiences, 1)
	assert.Equal(t, []string{"Shipped the payments platform", "Cut p99 latency in half"}, doc.Experiences[0].Bullets)
}

func TestCompose_Deterministic(t *testing.T) {
	ranked := []types.RankedExperience{
		rankedExperience("payments", "Backend Engineer", 0.9),
		rankedExperience("platform", "Platform Engineer", 0.7),
	}
	adapted := types.AdaptedContent{
		types.SlotSummary: {Text: "Adapted.", Adapted: true},
	}

	first := Compose(testProfile(), testSignal(), ranked, adapted, &types.CompanyFacts{}, types.KindCV)
	second := Compose(testProfile(), testSignal(), ranked, adapted, &types.CompanyFacts{}, types.KindCV)
	assert.Equal(t, first, second)
}

func TestCompose_CVBudgetTruncation(t *testing.T) {
	longBullet := strings.Repeat("delivered measurable results across the stack ", 10)
	var ranked []types.RankedExperience
	adapted := types.AdaptedContent{}
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("exp-%d", i)
		entry := rankedExperience(id, "Engineer", 1.0-float64(i)*0.01)
		entry.Experience.Achievements = []string{longBullet, longBullet, longBullet, longBullet}
		ranked = append(ranked, entry)
	}

	doc := Compose(testProfile(), testSignal(), ranked, adapted, &types.CompanyFacts{}, types.KindCV)

	assert.Less(t, len(doc.Experiences), 30, "budget must cut the experience list")
	assert.NotEmpty(t, doc.Experiences, "budget cuts the tail, not the head")
	assert.LessOrEqual(t, doc.EstimatedLines, doc.PageBudget*linesPerPage)
}

func TestCompose_CVBulletCap(t *testing.T) {
	entry := rankedExperience("payments", "Engineer", 0.9)
	entry.Experience.Achievements = []string{"one", "two", "three", "four", "five", "six"}

	doc := Compose(testProfile(), testSignal(), []types.RankedExperience{entry}, types.AdaptedContent{}, &types.CompanyFacts{}, types.KindCV)

	require.Len(t, doc.Experiences, 1)
	assert.Len(t, doc.Experiences[0].Bullets, bulletsPerExperienceCV)
}

func TestCompose_CVSkillGroupsFromAdaptedText(t *testing.T) {
	adapted := types.AdaptedContent{
		types.SlotSkills: {Text: "Backend: Go, PostgreSQL\nPlatform: Kubernetes", Adapted: true},
	}

	doc := Compose(testProfile(), testSignal(), nil, adapted, &types.CompanyFacts{}, types.KindCV)

	require.Len(t, doc.SkillGroups, 2)
	assert.Equal(t, types.SkillGroup{Category: "Backend", Items: []string{"Go", "PostgreSQL"}}, doc.SkillGroups[0])
	assert.Equal(t, types.SkillGroup{Category: "Platform", Items: []string{"Kubernetes"}}, doc.SkillGroups[1])
}

func TestCompose_CVSkillGroupsIgnoreMalformedAdaptedText(t *testing.T) {
	adapted := types.AdaptedContent{
		types.SlotSkills: {Text: "no category separator here", Adapted: true},
	}

	doc := Compose(testProfile(), testSignal(), nil, adapted, &types.CompanyFacts{}, types.KindCV)
	assert.Equal(t, testProfile().SkillGroups, doc.SkillGroups)
}

func TestCompose_Letter(t *testing.T) {
	ranked := []types.RankedExperience{rankedExperience("payments", "Backend Engineer", 0.9)}
	adapted := types.AdaptedContent{
		types.SlotLetterBody: {
			Text:    "I have followed Acme's work on payments infrastructure.\n\nMy background fits the role well.\n\nI would be glad to continue the conversation.",
			Adapted: true,
		},
	}

	doc := Compose(testProfile(), testSignal(), ranked, adapted, &types.CompanyFacts{Company: "Acme"}, types.KindCoverLetter)

	assert.Equal(t, 1, doc.PageBudget)
	require.NotNil(t, doc.Letter)
	assert.Equal(t, "Dear Acme team,", doc.Letter.Greeting)
	assert.Equal(t, "I have followed Acme's work on payments infrastructure.", doc.Letter.Opening)
	assert.Equal(t, "I would be glad to continue the conversation.", doc.Letter.Closing)
	require.Len(t, doc.Letter.Highlights, 1)
	assert.Contains(t, doc.Letter.Highlights[0], "Backend Engineer, PayCorp")
}

func TestCompose_LetterFallbackBody(t *testing.T) {
	ranked := []types.RankedExperience{rankedExperience("payments", "Backend Engineer", 0.9)}

	doc := Compose(testProfile(), testSignal(), ranked, types.AdaptedContent{}, &types.CompanyFacts{Company: "Acme", Overview: "Payments company"}, types.KindCoverLetter)

	require.NotNil(t, doc.Letter)
	assert.Contains(t, doc.Letter.Opening, testProfile().Summary.Short)
	assert.Contains(t, doc.Letter.Opening, "Acme")
	assert.Contains(t, doc.Letter.Closing, "opportunity to discuss")
}

func TestCompose_LetterSpanish(t *testing.T) {
	signal := testSignal()
	signal.Language = types.LanguageSpanish

	doc := Compose(testProfile(), signal, nil, types.AdaptedContent{}, &types.CompanyFacts{}, types.KindCoverLetter)

	require.NotNil(t, doc.Letter)
	assert.Equal(t, "Estimado equipo de Acme:", doc.Letter.Greeting)
	assert.Contains(t, doc.Letter.Closing, "entrevista")
}

func TestCompose_LetterBudgetTruncation(t *testing.T) {
	longBullet := strings.Repeat("led a cross-team effort that reshaped the platform ", 28)
	var ranked []types.RankedExperience
	for i := 0; i < 5; i++ {
		entry := rankedExperience(fmt.Sprintf("exp-%d", i), "Engineer", 1.0-float64(i)*0.1)
		entry.Experience.Achievements = []string{longBullet}
		ranked = append(ranked, entry)
	}

	doc := Compose(testProfile(), testSignal(), ranked, types.AdaptedContent{}, &types.CompanyFacts{}, types.KindCoverLetter)

	require.Len(t, doc.Letter.Highlights, 2, "one-page budget keeps only the two strongest highlights")
	assert.Contains(t, doc.Letter.Highlights[0], "Engineer, PayCorp")
	assert.LessOrEqual(t, doc.EstimatedLines, linesPerPage)
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, "2019-01 - 2023-06", period(&types.Experience{StartDate: "2019-01", EndDate: "2023-06"}))
	assert.Equal(t, "2021-03 - present", period(&types.Experience{StartDate: "2021-03"}))
	assert.Empty(t, period(&types.Experience{}))
}

func TestEstimateLines(t *testing.T) {
	assert.Zero(t, estimateLines(""))
	assert.Equal(t, 1, estimateLines("short"))
	assert.Equal(t, 2, estimateLines(strings.Repeat("a", charsPerLine+1)))
	assert.Equal(t, 2, estimateLines("one\ntwo"))
}

func TestParseBullets(t *testing.T) {
	bullets := parseBullets("- first\n• second\nthird\n\n")
	assert.Equal(t, []string{"first", "second", "third"}, bullets)
}
